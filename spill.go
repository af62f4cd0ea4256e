// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"
	"os"
)

// spillToFile gives random-access extractors (ZIP, 7Z, RAR) a file path to
// work with. When the container already lives on disk, fn is invoked on that
// path directly. When only a stream is available (the container is nested in
// another container), the stream is written to a uniquely-named temporary
// file, fn is invoked on it, and the file is removed on all exit paths.
//
// Failures materialising the stream are reported through the error handler
// and returned as [ErrSkipArchive]; errors from fn are returned verbatim.
func spillToFile(op *Operation, displayPath Path, archiveAttr FileAttributes, ext string, fsPath string, input InputSupplier, fn func(fsPath string) error) error {
	if fsPath != "" {
		return fn(fsPath)
	}

	src, err := input()
	if err != nil {
		return op.skipArchive(displayPath, archiveAttr, "cannot open nested archive stream", err)
	}
	defer func() {
		if closer, ok := src.(io.Closer); ok {
			closer.Close()
		}
	}()

	tmpFile, err := os.CreateTemp("", "arcwalk-*."+ext)
	if err != nil {
		return op.skipArchive(displayPath, archiveAttr, "cannot create temporary file", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := io.Copy(tmpFile, src); err != nil {
		tmpFile.Close()
		return op.skipArchive(displayPath, archiveAttr, "cannot copy nested archive to temporary file", err)
	}
	if err := tmpFile.Close(); err != nil {
		return op.skipArchive(displayPath, archiveAttr, "cannot finish temporary file", err)
	}

	return fn(tmpFile.Name())
}
