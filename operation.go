// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Operation carries the state of one traversal: the configuration snapshot,
// the callbacks, the exclusion memoisation sets and the telemetry record.
// Operations are handed to extractors, which feed contained entries back in
// through [Operation.FilterFile]; the recursion is bounded by container
// nesting depth.
//
// An outline of the recursive calls involved:
//
//	walkRoot()
//	|
//	+-- FilterEntry()
//	    |
//	    +-- Extractor.Extract()
//	    |   [various implementations]
//	    |   |
//	    |   |-- FilterFile()
//	    |   |   |
//	    |   |   ... [recurse]
//	    |   |or
//	    |   +-- WalkTree()
//	    |       |
//	    |       ... [recurse]
//	    |
//	    +-- consume()
type Operation struct {
	walker  *Walker
	config  *Config
	consume Consumer
	onError ErrorHandler

	// The filesystem walker prunes excluded directories as it goes, but
	// archive entries arrive flat, so exclusion verdicts for path prefixes
	// are memoised both ways to avoid repeated matcher work on siblings.
	excludedSubPaths    map[string]bool
	nonExcludedSubPaths map[string]bool

	rootDepth int
	td        *TelemetryData
}

func newOperation(w *Walker, consume Consumer, onError ErrorHandler) *Operation {
	return &Operation{
		walker:              w,
		config:              w.config,
		consume:             consume,
		onError:             onError,
		excludedSubPaths:    make(map[string]bool),
		nonExcludedSubPaths: make(map[string]bool),
		td:                  &TelemetryData{},
	}
}

// Config exposes the traversal's configuration to extractors.
func (op *Operation) Config() *Config {
	return op.config
}

// HandleError routes a recoverable failure to the installed error handler.
// A non-nil return aborts the traversal and must be propagated by the
// caller; errors raised by the handler itself are never swallowed.
func (op *Operation) HandleError(displayPath Path, attr FileAttributes, msg string, cause error) error {
	op.config.Logger().Error(msg, "path", displayPath.String(), "error", cause)
	op.td.TraversalErrors++
	op.td.LastTraversalError = cause
	return op.onError(displayPath, attr, msg, cause)
}

// skipArchive reports a container-level failure and returns the skip signal,
// unless the error handler aborts.
func (op *Operation) skipArchive(displayPath Path, attr FileAttributes, msg string, cause error) error {
	full := fmt.Sprintf("%s '%s'", msg, displayPath)
	if cause != nil {
		full = fmt.Sprintf("%s: %v", full, cause)
	}
	if err := op.HandleError(displayPath, attr, full, cause); err != nil {
		return err
	}
	return ErrSkipArchive
}

// FilterFile is the re-entry point for extractors: entries inside containers
// have no filesystem path of their own, and identical match and display
// paths.
func (op *Operation) FilterFile(displayPath Path, input InputSupplier, attr FileAttributes) error {
	return op.FilterEntry("", displayPath, displayPath, input, attr)
}

// FilterEntry inspects one entry and decides whether to report it, apply an
// extractor to it, or drop it.
//
// fsPath is the entry's physical location for random-access purposes, or ""
// if it is stored inside a container. matchPath represents the entry's true
// nature, used for pattern matching and extractor selection. displayPath is
// how the entry is presented to the consumer; it usually equals matchPath,
// but a decompressor reports the original compressed name while matching on
// the decompressed one.
func (op *Operation) FilterEntry(fsPath string, matchPath, displayPath Path, input InputSupplier, attr FileAttributes) error {
	cfg := op.config
	log := cfg.Logger()
	log.Debug("filtering entry",
		"fsPath", fsPath, "matchPath", matchPath.String(), "displayPath", displayPath.String())
	op.td.EntriesVisited++

	if len(displayPath)-op.rootDepth > cfg.MaxDepth() {
		log.Debug("entry exceeds max depth", "displayPath", displayPath.String(), "maxDepth", cfg.MaxDepth())
		return nil
	}

	// Check whether any prefix of the match path has been excluded. The
	// filesystem walker already prunes excluded directories, but containers
	// do not really store their entries hierarchically, so each prefix needs
	// checking here for consistent exclude-directory semantics.
	for prefixSize := 1; prefixSize <= len(matchPath); prefixSize++ {
		subPath := matchPath.Sub(0, prefixSize)
		key := subPath.String()
		if op.nonExcludedSubPaths[key] {
			continue
		}
		excluded := op.excludedSubPaths[key]
		if !excluded {
			for _, m := range cfg.Exclusions() {
				if m.Matches(subPath) {
					excluded = true
					op.excludedSubPaths[key] = true
					break
				}
			}
		}
		if excluded {
			log.Debug("excluding entry", "matchPath", matchPath.String(), "excludedPrefix", key)
			return nil
		}
		op.nonExcludedSubPaths[key] = true
	}

	fileType := attr.Type()
	var extractor Extractor
	var ext string

	if fileType == FileTypeRegular {
		name := matchPath.Base()
		if idx := strings.LastIndexByte(name, '.'); idx != -1 {
			// Keep the extension as typed: the registry lookup is
			// case-insensitive, but some formats (Z with "taZ") are not and
			// the extractor needs the original spelling.
			ext = name[idx+1:]
			if ex, ok := op.walker.extractorRegistry()[strings.ToLower(ext)]; ok {
				// Container files are not "regular files" for our purposes;
				// reclassify to the extractor's modified type.
				extractor = ex
				fileType = ex.ModifiedType()
				attr.SetType(fileType)
			}
		}
	}

	if cfg.showFileType(fileType) {
		emit := len(cfg.Inclusions()) == 0
		for _, m := range cfg.Inclusions() {
			if m.Matches(matchPath) {
				emit = true
				break
			}
		}
		if emit {
			if err := op.deliver(displayPath, input, attr); err != nil {
				return err
			}
		} else {
			log.Debug("no inclusion matched", "matchPath", matchPath.String())
		}
	} else {
		log.Debug("excluding entry by type", "displayPath", displayPath.String(), "type", fileType)
	}

	if extractor != nil && cfg.RecurseIntoArchives() {
		// Containers are recursed into even when not themselves reported,
		// consistent with directories.
		op.td.ArchivesExtracted++
		if err := extractor.Extract(op, ext, fsPath, displayPath, input, attr); err != nil {
			if errors.Is(err, ErrSkipArchive) {
				// Extraction failed; the entry has been treated as a leaf.
				op.td.ArchivesSkipped++
				log.Debug("skipping archive extraction", "displayPath", displayPath.String())
				return nil
			}
			return err
		}
	}
	return nil
}

// deliver hands one entry to the consumer and closes whatever stream the
// supplier opened once the consumer returns. Consumers never close streams
// themselves; for sequential archives the underlying stream is shared across
// entries and protected by a close-ignoring wrapper.
func (op *Operation) deliver(displayPath Path, input InputSupplier, attr FileAttributes) error {
	op.td.EntriesEmitted++

	if input == nil {
		return op.consume(displayPath, nil, attr)
	}

	var opened io.Reader
	supplier := func() (io.Reader, error) {
		r, err := input()
		if err != nil {
			return nil, err
		}
		opened = r
		return r, nil
	}
	err := op.consume(displayPath, supplier, attr)
	if closer, ok := opened.(io.Closer); ok {
		closer.Close()
	}
	return err
}
