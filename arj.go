// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"

	"github.com/hashicorp/go-arcwalk/internal/arj"
)

// arjStreamWalker is a streamWalker for ARJ archives. ARJ does not use the
// upper mode bits for the file type in the conventional UNIX fashion, so the
// type comes from the directory flag only, never from the mode word. Entries
// stored with a compression method are reported but unreadable.
type arjStreamWalker struct {
	r *arj.Reader
}

func newArjWalker(r io.Reader) (streamWalker, error) {
	ar, err := arj.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &arjStreamWalker{r: ar}, nil
}

// Format returns the archive format tag for ARJ files.
func (a *arjStreamWalker) Format() ArchiveFormat {
	return FormatARJ
}

// Next returns the next entry in the ARJ archive.
func (a *arjStreamWalker) Next() (*streamEntry, error) {
	var hdr *arj.Header
	for {
		var err error
		hdr, err = a.r.Next()
		if err != nil {
			return nil, err
		}
		// chapter and volume-label pseudo entries are not files
		if hdr.FileType != arj.TypeVolumeLabel && hdr.FileType != arj.TypeChapter {
			break
		}
	}

	attr := NewFileAttributes()
	SetAttr(attr, AttrInArchive, FormatARJ)
	hostOS := ArjHostOS(hdr.HostOS)
	SetAttr(attr, AttrArjHostOS, hostOS)
	if !hdr.Modified.IsZero() {
		SetAttr(attr, AttrLastModifiedTime, hdr.Modified)
	}
	SetAttr(attr, AttrSize, hdr.OriginalSize)

	if hostOS == ArjHostUnix || hostOS == ArjHostNext {
		SetAttr(attr, AttrUnixPermissions, PermissionsForMode(hdr.Mode))
	}

	if hdr.IsDir() {
		attr.SetType(FileTypeDirectory)
	} else {
		attr.SetType(FileTypeRegular)
	}

	entry := &streamEntry{
		Path: splitArchivePath(hdr.Name),
		Attr: attr,
		Open: func() (io.Reader, error) {
			return &noopReaderCloser{a.r}, nil
		},
	}
	if !hdr.Stored() && !hdr.IsDir() {
		entry.Unreadable = arj.ErrMethodUnsupported
	}
	return entry, nil
}
