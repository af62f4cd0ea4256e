// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"encoding/json"
	"time"
)

// TelemetryData is a struct type that holds all telemetry data of a
// traversal
type TelemetryData struct {
	// EntriesVisited is the number of entries that passed through the filter
	EntriesVisited int64

	// EntriesEmitted is the number of entries delivered to the consumer
	EntriesEmitted int64

	// ArchivesExtracted is the number of containers recursed into
	ArchivesExtracted int64

	// ArchivesSkipped is the number of containers that failed to open and
	// were treated as leaves
	ArchivesSkipped int64

	// TraversalErrors is the number of errors routed to the error handler
	TraversalErrors int64

	// LastTraversalError is the last error routed to the error handler
	LastTraversalError error

	// WalkDuration is the time the traversal took
	WalkDuration time.Duration
}

// String returns a string representation of [TelemetryData].
func (m TelemetryData) String() string {
	b, _ := json.Marshal(m)
	return string(b)
}

// MarshalJSON implements the [encoding/json.Marshaler] interface.
func (m TelemetryData) MarshalJSON() ([]byte, error) {
	var lastError string
	if m.LastTraversalError != nil {
		lastError = m.LastTraversalError.Error()
	}

	type Alias TelemetryData
	return json.Marshal(&struct {
		LastTraversalError string `json:"LastTraversalError"`
		*Alias
	}{
		LastTraversalError: lastError,
		Alias:              (*Alias)(&m),
	})
}

// TelemetryHook is a function type that performs operations on
// [TelemetryData] after a traversal has finished, which can be used to
// submit the data to a telemetry service, for example.
type TelemetryHook func(*TelemetryData)

// captureWalkDuration stores the time since start in the telemetry data
func captureWalkDuration(td *TelemetryData, start time.Time) {
	td.WalkDuration = time.Since(start)
}

// now is a function pointer to [time.Now], so tests can adjust it
var now = time.Now
