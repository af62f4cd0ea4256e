// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// RarExtractor reads RAR archives by invoking the external "unrar" tool.
// This fails if the tool is not installed on the host path.
//
// The RAR format is proprietary and not well supported by libraries,
// particularly in its RAR5 revision, so the archive is materialised to disk,
// extracted with paths into a fresh temporary directory, and the directory
// is traversed as if it were a subtree of the original archive. The
// temporary directory is removed on all exit paths.
type RarExtractor struct{}

// Extensions returns the extensions handled by the RAR extractor.
func (x *RarExtractor) Extensions() []string {
	return []string{"rar"}
}

// ModifiedType classifies matched entries as archives.
func (x *RarExtractor) ModifiedType() FileType {
	return FileTypeArchive
}

// Extract runs "unrar x" against the archive and walks the result.
func (x *RarExtractor) Extract(op *Operation, ext string, fsPath string, displayPath Path, input InputSupplier, archiveAttr FileAttributes) error {
	log := op.Config().Logger()
	log.Debug("reading rar archive", "displayPath", displayPath.String())

	return spillToFile(op, displayPath, archiveAttr, "rar", fsPath, input, func(p string) error {
		tmpDir, err := os.MkdirTemp("", "arcwalk-rar-")
		if err != nil {
			return op.skipArchive(displayPath, archiveAttr, "could not extract archive", err)
		}
		defer os.RemoveAll(tmpDir)

		absPath, err := filepath.Abs(p)
		if err != nil {
			return op.skipArchive(displayPath, archiveAttr, "could not extract archive", err)
		}

		log.Debug("running unrar", "archive", absPath, "dir", tmpDir)
		var output bytes.Buffer
		cmd := exec.Command("unrar", "x", absPath)
		cmd.Dir = tmpDir
		cmd.Stdout = &output
		cmd.Stderr = &output
		if err := cmd.Start(); err != nil {
			return op.skipArchive(displayPath, archiveAttr, "could not extract archive", err)
		}

		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()

		timer := time.NewTimer(op.Config().RarTimeout())
		defer timer.Stop()
		select {
		case err := <-done:
			log.Debug("unrar finished", "output", output.String())
			if err != nil {
				return op.skipArchive(displayPath, archiveAttr, "could not extract archive", err)
			}
		case <-timer.C:
			cmd.Process.Kill()
			<-done
			return op.skipArchive(displayPath, archiveAttr, "could not extract archive",
				fmt.Errorf("unrar command timed out"))
		}

		return op.WalkTree(tmpDir, displayPath, x.attrExtractor(op))
	})
}

// attrExtractor stamps extracted entries with RAR provenance on top of the
// default filesystem attribute extraction.
func (x *RarExtractor) attrExtractor(op *Operation) AttrExtractor {
	return func(fsPath string, displayPath Path, info fs.FileInfo) (FileAttributes, error) {
		attr, err := op.extractAttr(fsPath, displayPath, info)
		if err != nil {
			return attr, err
		}
		SetAttr(attr, AttrInArchive, FormatRAR)
		return attr, nil
	}
}
