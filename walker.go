// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

// Consumer receives each reported entry. The input supplier is valid only
// for the duration of the call and the stream it returns must not be closed;
// it is nil for filesystem directories. Returning a non-nil error aborts the
// traversal.
type Consumer func(displayPath Path, input InputSupplier, attr FileAttributes) error

// ErrorHandler receives each recoverable traversal error as it happens.
// Returning a non-nil error aborts the traversal; returning nil continues it
// at the next sibling.
type ErrorHandler func(displayPath Path, attr FileAttributes, msg string, cause error) error

// WalkerError is the error type raised by the default error handler. It
// wraps the underlying cause.
type WalkerError struct {
	Msg   string
	Cause error
}

func (e *WalkerError) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Cause.Error()
}

func (e *WalkerError) Unwrap() error {
	return e.Cause
}

// defaultErrorHandler aborts the traversal on the first error.
func defaultErrorHandler(displayPath Path, attr FileAttributes, msg string, cause error) error {
	return &WalkerError{Msg: msg, Cause: cause}
}

// Walker is the entry point into the library. A Walker is configured once
// and may be used for any number of traversals; each traversal is strictly
// synchronous and single-threaded, but independent traversals do not share
// state.
type Walker struct {
	config   *Config
	registry map[string]Extractor
}

// NewWalker creates a Walker with the given options. Option misuse (mixing
// inverted and non-inverted file-type selections, invalid glob patterns)
// panics immediately.
func NewWalker(opts ...ConfigOption) *Walker {
	return &Walker{config: NewConfig(opts...)}
}

// Config exposes the walker's configuration, mainly for custom extractors.
func (w *Walker) Config() *Config {
	return w.config
}

// extractorRegistry returns the extension map, building it lazily from the
// configured extractor set.
func (w *Walker) extractorRegistry() map[string]Extractor {
	if w.registry == nil {
		extractors := w.config.extractors
		if extractors == nil {
			extractors = DefaultExtractors()
		}
		w.registry = buildExtractorRegistry(extractors)
	}
	return w.registry
}

// Walk traverses the file tree beginning at root, delivering each entry
// (subject to inclusion, exclusion, depth and file-type criteria) to
// consume. Recoverable errors abort the traversal and are returned wrapped in
// a [*WalkerError]; an error returned by consume is returned unchanged.
//
// If root is a directory or a recognised container file, its contents are
// traversed; if it is a regular file, it is the sole result of the
// "traversal".
func (w *Walker) Walk(root string, consume Consumer) error {
	return w.WalkHandle(root, consume, defaultErrorHandler)
}

// WalkHandle is [Walker.Walk] with a custom error handler. The handler may
// record the error and return nil, in which case the traversal continues at
// the next sibling, or return an error to abort.
func (w *Walker) WalkHandle(root string, consume Consumer, onError ErrorHandler) error {
	if onError == nil {
		onError = defaultErrorHandler
	}
	op := newOperation(w, consume, onError)

	defer w.config.TelemetryHook()(op.td)
	defer captureWalkDuration(op.td, now())

	return op.walkRoot(root)
}

// MakeTree materialises the traversal rooted at root as a [FileTree].
// Recoverable errors are accumulated in the tree's error list rather than
// aborting; the returned error is non-nil only for fatal failures.
func (w *Walker) MakeTree(root string) (*FileTree, error) {
	tree := NewFileTree(root)
	err := w.WalkHandle(root,
		func(displayPath Path, input InputSupplier, attr FileAttributes) error {
			return tree.AddPath(displayPath, attr)
		},
		func(displayPath Path, attr FileAttributes, msg string, cause error) error {
			return tree.AddError(displayPath, msg, cause)
		})
	if err != nil {
		return nil, err
	}
	return tree, nil
}
