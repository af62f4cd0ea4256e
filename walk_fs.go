// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// AttrExtractor builds the attribute bundle for a filesystem entry. The
// default extractor reads size, times and type, plus UNIX and DOS metadata
// when configured; extractors that materialise container contents on disk
// install their own variant to stamp container provenance.
type AttrExtractor func(fsPath string, displayPath Path, info fs.FileInfo) (FileAttributes, error)

// walkRoot starts the traversal. A directory (or a container, once the
// filter assigns it an extractor) has its contents traversed; a regular file
// is the sole result.
func (op *Operation) walkRoot(root string) error {
	op.rootDepth = len(splitFSPath(root))
	return op.walk(root, splitFSPath(root), op.extractAttr, true)
}

// WalkTree traverses a filesystem subtree located at fsPath, reporting
// entries under displayPath. It is used by extractors that materialise
// container contents on disk; the subtree root itself is not re-reported,
// since the container entry has already been filtered.
func (op *Operation) WalkTree(fsPath string, displayPath Path, attrFn AttrExtractor) error {
	return op.walk(fsPath, displayPath, attrFn, false)
}

func (op *Operation) walk(fsPath string, displayPath Path, attrFn AttrExtractor, reportRoot bool) error {
	info, err := op.statEntry(fsPath)
	if err != nil {
		return op.HandleError(displayPath, NewFileAttributes(),
			fmt.Sprintf("cannot visit '%s'", displayPath), err)
	}
	return op.visit(fsPath, displayPath, info, attrFn, reportRoot)
}

// visit reports a single filesystem node and, for directories, descends into
// its children in host-provided order.
func (op *Operation) visit(fsPath string, displayPath Path, info fs.FileInfo, attrFn AttrExtractor, report bool) error {
	if !info.IsDir() {
		attr, err := attrFn(fsPath, displayPath, info)
		if err != nil {
			return err
		}
		return op.FilterEntry(fsPath, displayPath, displayPath, op.fileSupplier(fsPath), attr)
	}

	if report {
		// Exclusions apply to directory paths; a match prunes the subtree.
		for _, m := range op.config.Exclusions() {
			if m.Matches(displayPath) {
				op.excludedSubPaths[displayPath.String()] = true
				return nil
			}
		}
		op.nonExcludedSubPaths[displayPath.String()] = true

		attr, err := attrFn(fsPath, displayPath, info)
		if err != nil {
			return err
		}
		if err := op.FilterEntry(fsPath, displayPath, displayPath, nil, attr); err != nil {
			return err
		}
	}

	// Children of entries at the depth limit would be dropped by the filter
	// anyway; skip the directory read.
	if len(displayPath)-op.rootDepth >= op.config.MaxDepth() {
		return nil
	}

	entries, err := os.ReadDir(fsPath)
	if err != nil {
		return op.HandleError(displayPath, NewFileAttributes(),
			fmt.Sprintf("cannot read directory '%s'", displayPath), err)
	}
	for _, entry := range entries {
		childFS := filepath.Join(fsPath, entry.Name())
		childDisplay := displayPath.Resolve(entry.Name())

		childInfo, err := op.statEntry(childFS)
		if err != nil {
			if err := op.HandleError(childDisplay, NewFileAttributes(),
				fmt.Sprintf("cannot visit '%s'", childDisplay), err); err != nil {
				return err
			}
			continue
		}
		if err := op.visit(childFS, childDisplay, childInfo, attrFn, true); err != nil {
			return err
		}
	}
	return nil
}

// statEntry stats a filesystem path, following symlinks only when
// configured. A dangling symlink under follow-links degrades to the link
// itself.
func (op *Operation) statEntry(fsPath string) (fs.FileInfo, error) {
	info, err := os.Lstat(fsPath)
	if err != nil {
		return nil, err
	}
	if info.Mode()&fs.ModeSymlink != 0 && op.config.FollowLinks() {
		if target, err := os.Stat(fsPath); err == nil {
			return target, nil
		}
	}
	return info, nil
}

// fileSupplier opens the file lazily; the engine closes whatever the
// supplier opened after the consumer returns.
func (op *Operation) fileSupplier(fsPath string) InputSupplier {
	return func() (io.Reader, error) {
		return os.Open(fsPath)
	}
}

// extractAttr is the default AttrExtractor for on-disk entries.
func (op *Operation) extractAttr(fsPath string, displayPath Path, info fs.FileInfo) (FileAttributes, error) {
	attr := NewFileAttributes()
	SetAttr(attr, AttrLastModifiedTime, info.ModTime())
	SetAttr(attr, AttrSize, info.Size())

	mode := info.Mode()
	var fileType FileType
	switch {
	case mode.IsDir():
		fileType = FileTypeDirectory
	case mode.IsRegular():
		fileType = FileTypeRegular
	case mode&fs.ModeSymlink != 0:
		fileType = FileTypeSymlink
	case mode&fs.ModeCharDevice != 0:
		fileType = FileTypeCharDev
	case mode&fs.ModeDevice != 0:
		fileType = FileTypeBlockDev
	case mode&fs.ModeNamedPipe != 0:
		fileType = FileTypeFIFO
	case mode&fs.ModeSocket != 0:
		fileType = FileTypeSocket
	default:
		fileType = FileTypeUnknown
	}
	attr.SetType(fileType)

	if op.config.UnixAttributes() {
		if err := op.readUnixAttributes(fsPath, attr); err != nil {
			if hErr := op.HandleError(displayPath, attr,
				fmt.Sprintf("could not read UNIX file attributes from '%s'", displayPath), err); hErr != nil {
				return attr, hErr
			}
		}
	}
	if op.config.DosAttributes() {
		op.readDosAttributes(fsPath, attr)
	}

	return attr, nil
}
