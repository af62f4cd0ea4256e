// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"
	"strings"

	"github.com/blakesmith/ar"
)

// arStreamWalker is a streamWalker for ar (Unix archiver) files, including
// the ".a" static-library spelling. The ar mode field carries the full UNIX
// mode word, so both permissions and file type come from it.
type arStreamWalker struct {
	r *ar.Reader
}

func newArWalker(r io.Reader) streamWalker {
	return &arStreamWalker{r: ar.NewReader(r)}
}

// Format returns the archive format tag for ar files.
func (a *arStreamWalker) Format() ArchiveFormat {
	return FormatAR
}

// Next returns the next entry in the ar archive.
func (a *arStreamWalker) Next() (*streamEntry, error) {
	hdr, err := a.r.Next()
	if err != nil {
		return nil, err
	}

	attr := NewFileAttributes()
	SetAttr(attr, AttrInArchive, FormatAR)
	SetAttr(attr, AttrLastModifiedTime, hdr.ModTime)
	SetAttr(attr, AttrSize, hdr.Size)
	SetAttr(attr, AttrUserID, int64(hdr.Uid))
	SetAttr(attr, AttrGroupID, int64(hdr.Gid))

	mode := uint32(hdr.Mode)
	SetAttr(attr, AttrUnixPermissions, PermissionsForMode(mode))
	attr.SetType(FileTypeForMode(mode))

	// GNU ar terminates member names with a slash.
	name := strings.TrimSuffix(strings.TrimSpace(hdr.Name), "/")

	return &streamEntry{
		Path: splitArchivePath(name),
		Attr: attr,
		Open: func() (io.Reader, error) {
			return &noopReaderCloser{a.r}, nil
		},
	}, nil
}
