// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"archive/tar"
	"io"
)

// tarStreamWalker is a streamWalker for tar archives.
//
// For reference, the TAR standard is available here:
// https://www.gnu.org/software/tar/manual/html_node/Standard.html
type tarStreamWalker struct {
	tr *tar.Reader
}

func newTarWalker(r io.Reader) streamWalker {
	return &tarStreamWalker{tr: tar.NewReader(r)}
}

// Format returns the archive format tag for tar files.
func (t *tarStreamWalker) Format() ArchiveFormat {
	return FormatTAR
}

// Next returns the next entry in the tar archive.
func (t *tarStreamWalker) Next() (*streamEntry, error) {
	hdr, err := t.tr.Next()
	if err != nil {
		return nil, err
	}

	attr := NewFileAttributes()
	SetAttr(attr, AttrInArchive, FormatTAR)
	SetAttr(attr, AttrLastModifiedTime, hdr.ModTime)
	SetAttr(attr, AttrSize, hdr.Size)
	SetAttr(attr, AttrUserID, int64(hdr.Uid))
	SetAttr(attr, AttrGroupID, int64(hdr.Gid))
	if hdr.Uname != "" {
		SetAttr(attr, AttrUserName, hdr.Uname)
	}
	if hdr.Gname != "" {
		SetAttr(attr, AttrGroupName, hdr.Gname)
	}
	if !hdr.AccessTime.IsZero() {
		SetAttr(attr, AttrLastAccessTime, hdr.AccessTime)
	}
	if !hdr.ChangeTime.IsZero() {
		SetAttr(attr, AttrCreationTime, hdr.ChangeTime)
	}
	SetAttr(attr, AttrUnixPermissions, PermissionsForMode(uint32(hdr.Mode)))

	fileType := FileTypeRegular
	switch hdr.Typeflag {
	case tar.TypeDir:
		fileType = FileTypeDirectory
	case tar.TypeSymlink:
		fileType = FileTypeSymlink
		SetAttr(attr, AttrLinkTarget, hdr.Linkname)
	case tar.TypeBlock:
		fileType = FileTypeBlockDev
	case tar.TypeChar:
		fileType = FileTypeCharDev
	case tar.TypeFifo:
		fileType = FileTypeFIFO
	case tar.TypeLink:
		fileType = FileTypeHardLink
		SetAttr(attr, AttrLinkTarget, hdr.Linkname)
	}
	attr.SetType(fileType)

	return &streamEntry{
		Path: splitArchivePath(hdr.Name),
		Attr: attr,
		Open: func() (io.Reader, error) {
			return &noopReaderCloser{t.tr}, nil
		},
	}, nil
}
