// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"archive/zip"
	"io"
	"io/fs"
	"strings"
)

// creatorUnix is the "version made by" host value for UNIX, whose external
// attributes carry a full UNIX mode word in the upper 16 bits.
//
// For reference, the ZIP specification is available here:
// https://pkware.cachefly.net/webdocs/casestudies/APPNOTE.TXT
const creatorUnix = 3

// ZipExtractor reads ZIP archives. ZIP requires random access to the central
// directory, so nested ZIPs are spilled to a temporary file first.
type ZipExtractor struct{}

// Extensions returns the extensions handled by the ZIP extractor.
func (x *ZipExtractor) Extensions() []string {
	return []string{"zip"}
}

// ModifiedType classifies matched entries as archives.
func (x *ZipExtractor) ModifiedType() FileType {
	return FileTypeArchive
}

// Extract iterates the central directory, feeding every entry back into the
// traversal filter.
func (x *ZipExtractor) Extract(op *Operation, ext string, fsPath string, displayPath Path, input InputSupplier, archiveAttr FileAttributes) error {
	op.Config().Logger().Debug("reading zip archive", "displayPath", displayPath.String())

	return spillToFile(op, displayPath, archiveAttr, "zip", fsPath, input, func(p string) error {
		zr, err := zip.OpenReader(p)
		if err != nil {
			return op.skipArchive(displayPath, archiveAttr, "could not extract archive", err)
		}
		defer zr.Close()

		for _, f := range zr.File {
			entryPath := displayPath.ResolvePath(splitArchivePath(f.Name))

			attr := NewFileAttributes()
			SetAttr(attr, AttrInArchive, FormatZIP)
			SetAttr(attr, AttrSize, int64(f.UncompressedSize64))
			if !f.Modified.IsZero() {
				SetAttr(attr, AttrLastModifiedTime, f.Modified)
			}
			if f.Comment != "" {
				SetAttr(attr, AttrComment, f.Comment)
			}

			// If the entry was made on UNIX, the external attributes carry a
			// mode word that may itself contain a file type.
			var mode uint32
			if f.CreatorVersion>>8 == creatorUnix {
				mode = f.ExternalAttrs >> 16
				if mode != 0 {
					SetAttr(attr, AttrUnixPermissions, PermissionsForMode(mode))
				}
			}

			var fileType FileType
			switch {
			case strings.HasSuffix(f.Name, "/") || f.Mode().IsDir():
				fileType = FileTypeDirectory
			case f.Mode()&fs.ModeSymlink != 0:
				fileType = FileTypeSymlink
			case mode != 0:
				fileType = FileTypeForMode(mode)
			default:
				fileType = FileTypeRegular
			}
			attr.SetType(fileType)

			entry := f
			if err := op.FilterFile(entryPath, func() (io.Reader, error) {
				return entry.Open()
			}, attr); err != nil {
				return err
			}
		}
		return nil
	})
}
