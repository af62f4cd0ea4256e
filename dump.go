// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"

	"github.com/hashicorp/go-arcwalk/internal/dump"
)

// dumpStreamWalker is a streamWalker for BSD dump archives. The dump entry
// type enum maps directly onto the uniform file types; notably a dump type
// 14 is always a whiteout, resolving the mode-nybble ambiguity with Solaris
// event ports.
type dumpStreamWalker struct {
	r *dump.Reader
}

var dumpTypeMap = map[dump.EntryType]FileType{
	dump.TypeFIFO:      FileTypeFIFO,
	dump.TypeCharDev:   FileTypeCharDev,
	dump.TypeDirectory: FileTypeDirectory,
	dump.TypeBlockDev:  FileTypeBlockDev,
	dump.TypeFile:      FileTypeRegular,
	dump.TypeLink:      FileTypeSymlink,
	dump.TypeSocket:    FileTypeSocket,
	dump.TypeWhiteout:  FileTypeWhiteout,
}

func newDumpWalker(r io.Reader) (streamWalker, error) {
	dr, err := dump.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &dumpStreamWalker{r: dr}, nil
}

// Format returns the archive format tag for dump files.
func (d *dumpStreamWalker) Format() ArchiveFormat {
	return FormatDUMP
}

// Next returns the next entry in the dump archive.
func (d *dumpStreamWalker) Next() (*streamEntry, error) {
	hdr, err := d.r.Next()
	if err != nil {
		return nil, err
	}

	attr := NewFileAttributes()
	SetAttr(attr, AttrInArchive, FormatDUMP)
	if !hdr.ModTime.IsZero() {
		SetAttr(attr, AttrLastModifiedTime, hdr.ModTime)
	}
	if !hdr.AccessTime.IsZero() {
		SetAttr(attr, AttrLastAccessTime, hdr.AccessTime)
	}
	if !hdr.CreationTime.IsZero() {
		SetAttr(attr, AttrCreationTime, hdr.CreationTime)
	}
	SetAttr(attr, AttrSize, hdr.Size)
	SetAttr(attr, AttrUserID, int64(hdr.UID))
	SetAttr(attr, AttrGroupID, int64(hdr.GID))
	SetAttr(attr, AttrUnixPermissions, PermissionsForMode(hdr.Mode))

	fileType, ok := dumpTypeMap[hdr.Type]
	if !ok {
		fileType = FileTypeUnknown
	}
	attr.SetType(fileType)

	return &streamEntry{
		Path: splitArchivePath(hdr.Name),
		Attr: attr,
		Open: func() (io.Reader, error) {
			return &noopReaderCloser{d.r}, nil
		},
	}, nil
}
