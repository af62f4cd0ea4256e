// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"
	"log/slog"
	"math"
	"time"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config holds all configuration options for a traversal. Options are
// adjusted using the option pattern style; the zero configuration reports
// regular files at unlimited depth and recurses into archives with the five
// built-in extractors.
type Config struct {
	// maxDepth is the number of directory levels to visit, counting archives
	// as directories. 0 means the root path only.
	maxDepth int

	// recurseIntoArchives decides whether archive contents are traversed. If
	// false, archives are reported as regular-file-like leaves.
	recurseIntoArchives bool

	// followLinks decides whether filesystem symlinks are followed. Symlinks
	// inside archives are never followed.
	followLinks bool

	// unixAttributes toggles reading UNIX metadata (owner, group,
	// permissions) for filesystem entries. Entries inside archives carry
	// whatever their format provides regardless.
	unixAttributes bool

	// dosAttributes toggles reading DOS attribute flags for filesystem
	// entries.
	dosAttributes bool

	// inclusions and exclusions accumulate; exclusion wins over inclusion.
	inclusions []PathMatcher
	exclusions []PathMatcher

	// fileTypes is the set of types to report; nil means the default set.
	// invertedFileTypes flips the set into "everything except".
	fileTypes         map[FileType]bool
	invertedFileTypes bool
	fileTypesChosen   bool

	// extractors replaces the default extractor set when non-nil.
	extractors []Extractor

	// logger stream for the traversal
	logger logger

	// rarTimeout bounds the external unrar invocation.
	rarTimeout time.Duration

	// telemetryHook is a function to consume telemetry data after a finished
	// traversal. Important: do not adjust this value after the walk started.
	telemetryHook TelemetryHook
}

const (
	defaultMaxDepth            = math.MaxInt // unlimited
	defaultRecurseIntoArchives = true        // treat archives as directories
	defaultFollowLinks         = false       // do not follow symlinks
	defaultUnixAttributes      = true        // read UNIX metadata
	defaultDosAttributes       = false       // skip DOS attribute flags
	defaultRarTimeout          = 30 * time.Second
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
)

// NewConfig creates a new Config with defaults, modified by the given
// options.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{
		maxDepth:            defaultMaxDepth,
		recurseIntoArchives: defaultRecurseIntoArchives,
		followLinks:         defaultFollowLinks,
		unixAttributes:      defaultUnixAttributes,
		dosAttributes:       defaultDosAttributes,
		logger:              defaultLogger,
		rarTimeout:          defaultRarTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxDepth returns the number of directory levels to visit, counting
// archives as directories. 0 corresponds to just the root path.
func (c *Config) MaxDepth() int {
	return c.maxDepth
}

// RecurseIntoArchives returns true if archive contents are traversed.
func (c *Config) RecurseIntoArchives() bool {
	return c.recurseIntoArchives
}

// FollowLinks returns true if filesystem symlinks are followed.
func (c *Config) FollowLinks() bool {
	return c.followLinks
}

// UnixAttributes returns true if UNIX metadata is read for filesystem
// entries.
func (c *Config) UnixAttributes() bool {
	return c.unixAttributes
}

// DosAttributes returns true if DOS attribute flags are read for filesystem
// entries.
func (c *Config) DosAttributes() bool {
	return c.dosAttributes
}

// Inclusions returns the configured inclusion matchers.
func (c *Config) Inclusions() []PathMatcher {
	return c.inclusions
}

// Exclusions returns the configured exclusion matchers.
func (c *Config) Exclusions() []PathMatcher {
	return c.exclusions
}

// RarTimeout returns the time bound for the external unrar invocation.
func (c *Config) RarTimeout() time.Duration {
	return c.rarTimeout
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return func(d *TelemetryData) {
			// noop
		}
	}
	return c.telemetryHook
}

// DefaultFileTypes returns the set of file types reported in the absence of
// any WithFileTypes, WithFileTypesExcept or WithAllFileTypes option.
func DefaultFileTypes() []FileType {
	return []FileType{FileTypeRegular}
}

// showFileType reports whether entries of the given type are delivered to
// the consumer.
func (c *Config) showFileType(t FileType) bool {
	if !c.fileTypesChosen {
		return t == FileTypeRegular
	}
	return c.fileTypes[t] != c.invertedFileTypes
}

func (c *Config) chooseFileTypes(inverted bool, types []FileType) {
	if c.fileTypesChosen && c.invertedFileTypes != inverted {
		panic("arcwalk: cannot mix WithFileTypes, WithFileTypesExcept and WithAllFileTypes")
	}
	if !c.fileTypesChosen {
		c.fileTypes = make(map[FileType]bool)
		c.invertedFileTypes = inverted
		c.fileTypesChosen = true
	}
	for _, t := range types {
		c.fileTypes[t] = true
	}
}

// WithMaxDepth limits the number of directory levels to visit, counting
// archive files as directories. Files nested more deeply are skipped. A
// value of 0 corresponds to just the root path.
func WithMaxDepth(d int) ConfigOption {
	return func(c *Config) {
		c.maxDepth = d
	}
}

// WithRecurseIntoArchives decides whether the contents of archive files are
// included (true by default). If false, archives and compressed files are
// reported as leaves; they keep the type [FileTypeArchive] or
// [FileTypeCompressed] for file-type filtering.
func WithRecurseIntoArchives(b bool) ConfigOption {
	return func(c *Config) {
		c.recurseIntoArchives = b
	}
}

// WithFollowLinks decides whether to follow symbolic links outside of
// archives (false by default). Symbolic links occurring within archive files
// are never followed, regardless of this setting.
func WithFollowLinks(b bool) ConfigOption {
	return func(c *Config) {
		c.followLinks = b
	}
}

// WithUnixAttributes decides whether to obtain UNIX-related attributes
// (owner, group, permissions) from filesystem entries (true by default).
// This does not affect files within archives, where the information is
// retrieved anyway if available.
func WithUnixAttributes(b bool) ConfigOption {
	return func(c *Config) {
		c.unixAttributes = b
	}
}

// WithDosAttributes decides whether to obtain DOS attribute flags from
// filesystem entries (false by default).
func WithDosAttributes(b bool) ConfigOption {
	return func(c *Config) {
		c.dosAttributes = b
	}
}

// WithInclude adds an inclusion glob pattern. With at least one inclusion
// configured, only matching entries are reported. Invalid patterns panic;
// patterns are validated eagerly.
func WithInclude(globPattern string) ConfigOption {
	m, err := Glob(globPattern)
	if err != nil {
		panic("arcwalk: " + err.Error())
	}
	return WithIncludeMatcher(m)
}

// WithIncludeMatcher adds an inclusion matcher.
func WithIncludeMatcher(m PathMatcher) ConfigOption {
	return func(c *Config) {
		c.inclusions = append(c.inclusions, m)
	}
}

// WithExclude adds an exclusion glob pattern. Entries matching an exclusion,
// or whose ancestors match one, are never reported nor recursed into.
// Invalid patterns panic; patterns are validated eagerly.
func WithExclude(globPattern string) ConfigOption {
	m, err := Glob(globPattern)
	if err != nil {
		panic("arcwalk: " + err.Error())
	}
	return WithExcludeMatcher(m)
}

// WithExcludeMatcher adds an exclusion matcher.
func WithExcludeMatcher(m PathMatcher) ConfigOption {
	return func(c *Config) {
		c.exclusions = append(c.exclusions, m)
	}
}

// WithFileTypes causes the walk to report only the given file types. This
// does not limit recursion; directories and archives are still descended
// into. Cannot be mixed with WithFileTypesExcept or WithAllFileTypes; doing
// so panics.
func WithFileTypes(types ...FileType) ConfigOption {
	return func(c *Config) {
		c.chooseFileTypes(false, types)
	}
}

// WithFileTypesExcept causes the walk to report all file types except the
// given ones. Cannot be mixed with WithFileTypes; doing so panics.
func WithFileTypesExcept(types ...FileType) ConfigOption {
	return func(c *Config) {
		c.chooseFileTypes(true, types)
	}
}

// WithAllFileTypes causes the walk to report all file types.
func WithAllFileTypes() ConfigOption {
	return func(c *Config) {
		c.chooseFileTypes(true, nil)
	}
}

// WithExtractors replaces the default extractor set.
func WithExtractors(extractors ...Extractor) ConfigOption {
	return func(c *Config) {
		c.extractors = append(make([]Extractor, 0, len(extractors)), extractors...)
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithRarTimeout bounds the wait for the external unrar tool (30 seconds by
// default).
func WithRarTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.rarTimeout = d
	}
}

// WithTelemetryHook sets a hook to consume telemetry data after a finished
// traversal.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
