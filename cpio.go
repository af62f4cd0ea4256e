// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"

	"github.com/cavaliergopher/cpio"
)

// cpioStreamWalker is a streamWalker for cpio archives. The cpio mode field
// has bits representing the file type, including the HP/UX network special
// type that has no fs.FileMode equivalent, so classification works on the
// raw mode word.
type cpioStreamWalker struct {
	r *cpio.Reader
}

func newCpioWalker(r io.Reader) streamWalker {
	return &cpioStreamWalker{r: cpio.NewReader(r)}
}

// Format returns the archive format tag for cpio files.
func (c *cpioStreamWalker) Format() ArchiveFormat {
	return FormatCPIO
}

// Next returns the next entry in the cpio archive.
func (c *cpioStreamWalker) Next() (*streamEntry, error) {
	hdr, err := c.r.Next()
	if err != nil {
		return nil, err
	}

	attr := NewFileAttributes()
	SetAttr(attr, AttrInArchive, FormatCPIO)
	SetAttr(attr, AttrLastModifiedTime, hdr.ModTime)
	SetAttr(attr, AttrSize, hdr.Size)
	SetAttr(attr, AttrUserID, int64(hdr.Uid))
	SetAttr(attr, AttrGroupID, int64(hdr.Guid))

	mode := uint32(hdr.Mode)
	SetAttr(attr, AttrUnixPermissions, PermissionsForMode(mode))

	var fileType FileType
	switch mode & 0o170000 {
	case 0o100000:
		fileType = FileTypeRegular
	case 0o040000:
		fileType = FileTypeDirectory
	case 0o120000:
		fileType = FileTypeSymlink
	case 0o060000:
		fileType = FileTypeBlockDev
	case 0o020000:
		fileType = FileTypeCharDev
	case 0o110000:
		fileType = FileTypeNetwork
	case 0o010000:
		fileType = FileTypeFIFO
	case 0o140000:
		fileType = FileTypeSocket
	default:
		fileType = FileTypeUnknown
	}
	attr.SetType(fileType)

	if fileType == FileTypeSymlink && hdr.Linkname != "" {
		SetAttr(attr, AttrLinkTarget, hdr.Linkname)
	}

	return &streamEntry{
		Path: splitArchivePath(hdr.Name),
		Attr: attr,
		Open: func() (io.Reader, error) {
			return &noopReaderCloser{c.r}, nil
		},
	}, nil
}
