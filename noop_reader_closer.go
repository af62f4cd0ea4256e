// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import "io"

// noopReaderCloser is a struct that implements the io.ReadCloser interface with a no-op Close method.
//
// Sequential archives share one underlying stream across all of their
// entries; handing that stream out per entry would let a consumer (or the
// engine's post-consume cleanup) close it and break every subsequent entry.
type noopReaderCloser struct {
	io.Reader
}

// Close is a no-op method that satisfies the io.Closer interface.
func (n *noopReaderCloser) Close() error {
	return nil
}
