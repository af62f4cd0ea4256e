// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"errors"
	"io"
	"strings"
)

// InputSupplier is a zero-argument function returning a readable byte
// stream. Streams handed to consumers are valid only for the duration of the
// consumer invocation and must not be closed by the caller; the first read
// may return an I/O error.
type InputSupplier func() (io.Reader, error)

// ErrSkipArchive signals that a container could not be opened or read and
// should be treated as an ordinary leaf entry. Extractors return it (after
// routing the underlying failure through [Operation.HandleError]); the
// engine swallows it and continues at the next sibling.
var ErrSkipArchive = errors.New("skip archive")

// Extractor reads the contents of one container family and feeds each
// contained entry back into the traversal via [Operation.FilterFile] or
// [Operation.FilterEntry], so that nested containers recurse automatically.
type Extractor interface {
	// Extensions returns the file extensions (lowercase) this extractor
	// registers for.
	Extensions() []string

	// ModifiedType is the type an entry is reclassified to once the
	// extractor is assigned: [FileTypeArchive] or [FileTypeCompressed].
	ModifiedType() FileType

	// Extract enumerates the container's entries. ext is the extension as
	// typed (case preserved, some formats are case-sensitive); fsPath is the
	// container's location on disk, or "" if it arrived as a stream nested
	// in another container; displayPath is the container's display path;
	// input supplies the container's bytes; archiveAttr is the container's
	// own attribute bundle, for error reporting.
	//
	// Errors from the traversal (consumer aborts, error-handler aborts) must
	// be returned verbatim. Container-level failures are reported through
	// [Operation.HandleError] followed by [ErrSkipArchive].
	Extract(op *Operation, ext string, fsPath string, displayPath Path, input InputSupplier, archiveAttr FileAttributes) error
}

// DefaultExtractors returns the five built-in extractors.
func DefaultExtractors() []Extractor {
	return []Extractor{
		&RarExtractor{},
		&SevenZExtractor{},
		&SingleFileDecompressor{},
		&StreamArchiveExtractor{},
		&ZipExtractor{},
	}
}

// buildExtractorRegistry maps each lowercase extension to its extractor. An
// extractor may register several extensions.
func buildExtractorRegistry(extractors []Extractor) map[string]Extractor {
	registry := make(map[string]Extractor)
	for _, ex := range extractors {
		for _, ext := range ex.Extensions() {
			registry[strings.ToLower(ext)] = ex
		}
	}
	return registry
}
