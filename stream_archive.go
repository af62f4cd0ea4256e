// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// StreamArchiveExtractor reads archive formats that store their entries
// sequentially in one byte stream: tar most importantly, but also ar, arj,
// cpio and dump. The non-tar formats tend not to be used for general-purpose
// archiving anymore; arj can only be read in stored (uncompressed) form.
//
// Compressed tars (tar.gz and friends) are first handled by
// [SingleFileDecompressor], which hands the uncompressed stream back to the
// traversal so that it ends up here.
type StreamArchiveExtractor struct{}

// Extensions returns the extensions handled by the stream-archive family.
func (x *StreamArchiveExtractor) Extensions() []string {
	return []string{"a", "ar", "arj", "cpio", "dump", "tar"}
}

// ModifiedType classifies matched entries as archives.
func (x *StreamArchiveExtractor) ModifiedType() FileType {
	return FileTypeArchive
}

// Extract enumerates the archive sequentially, feeding every entry back into
// the traversal filter.
func (x *StreamArchiveExtractor) Extract(op *Operation, ext string, fsPath string, displayPath Path, input InputSupplier, archiveAttr FileAttributes) error {
	log := op.Config().Logger()
	log.Debug("reading streamed archive", "displayPath", displayPath.String())

	src, err := input()
	if err != nil {
		return op.skipArchive(displayPath, archiveAttr, "could not open archive", err)
	}
	defer func() {
		if closer, ok := src.(io.Closer); ok {
			closer.Close()
		}
	}()

	buffered := bufio.NewReader(src)

	var walker streamWalker
	switch strings.ToLower(ext) {
	case "a", "ar":
		walker = newArWalker(buffered)
	case "arj":
		walker, err = newArjWalker(buffered)
	case "cpio":
		walker = newCpioWalker(buffered)
	case "dump":
		walker, err = newDumpWalker(buffered)
	case "tar":
		walker = newTarWalker(buffered)
	default:
		return fmt.Errorf("stream archive extractor cannot handle the file extension %q", ext)
	}
	if err != nil {
		return op.skipArchive(displayPath, archiveAttr, "could not extract archive", err)
	}
	log.Debug("streaming entries", "format", walker.Format())

	for {
		entry, err := walker.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return op.skipArchive(displayPath, archiveAttr, "could not extract archive", err)
		}

		entryInput := entry.Open
		if entry.Unreadable != nil {
			log.Warn("could not read entry from archive",
				"entry", entry.Path.String(), "archive", displayPath.String())
			cause := entry.Unreadable
			entryPath := entry.Path
			entryInput = func() (io.Reader, error) {
				return nil, fmt.Errorf("could not read archive entry '%s' from archive file '%s': %w",
					entryPath, displayPath, cause)
			}
		}

		if err := op.FilterFile(displayPath.ResolvePath(entry.Path), entryInput, entry.Attr); err != nil {
			return err
		}
	}
}
