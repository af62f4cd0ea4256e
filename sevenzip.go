// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"

	"github.com/bodgit/sevenzip"
)

// SevenZExtractor reads 7Z archives using bodgit/sevenzip, which requires
// random access; nested 7Z archives are spilled to a temporary file first.
//
// For reference, the 7Z specification is available here:
// https://py7zr.readthedocs.io/en/latest/archive_format.html
type SevenZExtractor struct{}

// Extensions returns the extensions handled by the 7Z extractor.
func (x *SevenZExtractor) Extensions() []string {
	return []string{"7z"}
}

// ModifiedType classifies matched entries as archives.
func (x *SevenZExtractor) ModifiedType() FileType {
	return FileTypeArchive
}

// Extract iterates the archive entries, feeding each back into the traversal
// filter.
func (x *SevenZExtractor) Extract(op *Operation, ext string, fsPath string, displayPath Path, input InputSupplier, archiveAttr FileAttributes) error {
	op.Config().Logger().Debug("reading 7z archive", "displayPath", displayPath.String())

	return spillToFile(op, displayPath, archiveAttr, "7z", fsPath, input, func(p string) error {
		zr, err := sevenzip.OpenReader(p)
		if err != nil {
			return op.skipArchive(displayPath, archiveAttr, "could not extract archive", err)
		}
		defer zr.Close()

		for _, f := range zr.File {
			entryPath := displayPath.ResolvePath(splitArchivePath(f.Name))

			attr := NewFileAttributes()
			SetAttr(attr, AttrInArchive, FormatSevenZ)
			info := f.FileInfo()
			SetAttr(attr, AttrSize, info.Size())
			if f.CRC32 != 0 {
				SetAttr(attr, AttrChecksum, int64(f.CRC32))
			}
			if !f.Created.IsZero() {
				SetAttr(attr, AttrCreationTime, f.Created)
			}
			if !f.Accessed.IsZero() {
				SetAttr(attr, AttrLastAccessTime, f.Accessed)
			}
			if !f.Modified.IsZero() {
				SetAttr(attr, AttrLastModifiedTime, f.Modified)
			}
			if f.Attributes != 0 {
				SetAttr(attr, AttrDos, DosAttributesForField(f.Attributes))
			}

			// The upper 16 bits of the Windows attribute word may carry a
			// UNIX mode when the archive was written on UNIX.
			mode := f.Attributes >> 16
			fileType := FileTypeRegular
			switch {
			case info.IsDir():
				fileType = FileTypeDirectory
			case mode != 0:
				fileType = FileTypeForMode(mode)
				SetAttr(attr, AttrUnixPermissions, PermissionsForMode(mode))
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
