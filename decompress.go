// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

// formatAutodetect marks extensions whose framing is ambiguous (lz4 block vs
// framed, the snappy variants, lzop) and is resolved by sniffing the magic
// bytes of the stream.
const formatAutodetect ArchiveFormat = "*"

// sniffHeaderSize covers the longest codec magic (framed snappy, 10 bytes).
const sniffHeaderSize = 16

// decompressExtensions maps each recognised extension to its codec, looked
// up with the original spelling first: "taz" is gzip while "taZ" is Z.
var decompressExtensions = map[string]ArchiveFormat{
	// shorthands for ".tar.*"
	"tb2":  FormatBzip2,
	"tbz":  FormatBzip2,
	"tbz2": FormatBzip2,
	"tz2":  FormatBzip2,
	"taz":  FormatGzip,
	"tgz":  FormatGzip,
	"tlz":  FormatLZMA,
	"txz":  FormatXZ,
	"tz":   FormatZ,
	"taZ":  FormatZ, // "taz" and "taZ" are different!
	"tzst": FormatZstd,

	"br":   FormatBrotli,
	"bz2":  FormatBzip2,
	"gz":   FormatGzip,
	"lzma": FormatLZMA,
	"xz":   FormatXZ,
	"z":    FormatZ,
	"zst":  FormatZstd,

	// Both framed and block forms exist, so these need auto-detection.
	"lz4": formatAutodetect,

	// snappy can't make its mind up on the appropriate file extension;
	// snzip lists the following.
	"snappy": formatAutodetect,
	"snz":    formatAutodetect,
	"sz":     formatAutodetect,

	// deflate does not typically appear standalone, but a zlib stream is
	// easy to recognise
	"deflate": formatAutodetect,

	"lz":  FormatLzip,
	"lzo": formatAutodetect,
}

// combinedTarExtensions are the decompressExtensions that imply an inner
// ".tar" payload.
var combinedTarExtensions = map[string]bool{
	"tb2": true, "tbz": true, "tbz2": true, "tz2": true,
	"taz": true, "tgz": true, "tlz": true, "txz": true,
	"tz": true, "tzst": true,
}

// rawSnappyExtensions fall back to the block (raw) snappy form when the
// framed magic is absent.
var rawSnappyExtensions = map[string]bool{
	"snappy": true, "snz": true, "sz": true,
}

// codecMetadata carries the optional inner metadata a codec may provide;
// only gzip and the LZ77-family block codecs have any.
type codecMetadata struct {
	name    string
	comment string
	modTime time.Time
	hostFS  *GzipHostFS
	size    *int64
}

// matchesMagicBytes checks if the bytes in data at the given offset match
// any of the provided magic byte sequences.
func matchesMagicBytes(data []byte, offset int, magicBytes [][]byte) bool {
	for _, magic := range magicBytes {
		if len(data) >= offset+len(magic) && bytes.Equal(magic, data[offset:offset+len(magic)]) {
			return true
		}
	}
	return false
}

// magic bytes for codecs that have no decoder wired; recognised for
// diagnostics only
var (
	magicBytesZ    = [][]byte{{0x1f, 0x9d}}
	magicBytesLzop = [][]byte{{0x89, 0x4c, 0x5a, 0x4f, 0x00, 0x0d, 0x0a, 0x1a, 0x0a}}
)

func isZ(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesZ)
}

func isLzop(data []byte) bool {
	return matchesMagicBytes(data, 0, magicBytesLzop)
}

// sniffCodec identifies a compression codec from the stream's magic bytes.
func sniffCodec(header []byte) (ArchiveFormat, bool) {
	switch {
	case isGZip(header):
		return FormatGzip, true
	case isBzip2(header):
		return FormatBzip2, true
	case isXz(header):
		return FormatXZ, true
	case isZstd(header):
		return FormatZstd, true
	case isLZ4(header):
		return FormatLZ4Framed, true
	case isSnappyFramed(header):
		return FormatSnappyFramed, true
	case isLzip(header):
		return FormatLzip, true
	case isZlib(header):
		return FormatZlib, true
	case isZ(header):
		return FormatZ, true
	case isLzop(header):
		return FormatLzop, true
	case isLZMA(header):
		return FormatLZMA, true
	}
	return "", false
}

// openCodec instantiates the decompressing reader for the resolved codec.
func openCodec(format ArchiveFormat, lowerExt string, src *headerReader) (io.Reader, ArchiveFormat, *codecMetadata, error) {
	if format == formatAutodetect {
		detected, ok := sniffCodec(src.PeekHeader())
		switch {
		case ok:
			format = detected
		case rawSnappyExtensions[lowerExt]:
			// raw snappy has no magic; trust the extension
			format = FormatSnappyRaw
		default:
			return nil, "", nil, fmt.Errorf("cannot detect compression codec")
		}
	}

	switch format {
	case FormatBrotli:
		r := decompressBrotliStream(src)
		return r, format, nil, nil
	case FormatBzip2:
		r, err := decompressBzip2Stream(src)
		return r, format, nil, err
	case FormatGzip:
		return decompressGZipStream(src)
	case FormatLZMA:
		r, err := decompressLzmaStream(src)
		return r, format, nil, err
	case FormatXZ:
		r, err := decompressXzStream(src)
		return r, format, nil, err
	case FormatZstd:
		r, err := decompressZstdStream(src)
		return r, format, nil, err
	case FormatLZ4Framed:
		return decompressLZ4Stream(src), format, nil, nil
	case FormatSnappyFramed:
		return decompressSnappyStream(src), format, nil, nil
	case FormatSnappyRaw:
		return decompressSnappyBlock(src)
	case FormatLzip:
		r, err := decompressLzipStream(src)
		return r, format, nil, err
	case FormatZlib:
		r, err := decompressZlibStream(src)
		return r, format, nil, err
	default:
		return nil, "", nil, fmt.Errorf("no decoder available for %s streams", format)
	}
}

// SingleFileDecompressor produces the uncompressed form of a compressed
// file. It handles compression formats such as gzip, bzip2, etc., which wrap
// individual files, often ".tar" files under extensions like ".tar.gz" or
// ".tgz". Multi-file archive formats employ their own compression and are
// not handled here.
type SingleFileDecompressor struct{}

// Extensions returns the extensions handled by the decompressor.
func (d *SingleFileDecompressor) Extensions() []string {
	exts := make([]string, 0, len(decompressExtensions))
	for ext := range decompressExtensions {
		exts = append(exts, strings.ToLower(ext))
	}
	return exts
}

// ModifiedType classifies matched entries as compressed files.
func (d *SingleFileDecompressor) ModifiedType() FileType {
	return FileTypeCompressed
}

// Extract feeds the virtual uncompressed entry back into the traversal
// filter. The uncompressed entry inherits the compressed file's metadata,
// except that the compression format is recorded, the type reverts to a
// regular file, and the size is dropped (it is mostly unknowable without
// buffering the whole content; the LZ77 block codecs are the exception).
func (d *SingleFileDecompressor) Extract(op *Operation, ext string, fsPath string, displayPath Path, input InputSupplier, attr FileAttributes) error {
	op.Config().Logger().Debug("decompressing file", "displayPath", displayPath.String())

	format, ok := decompressExtensions[ext]
	if !ok {
		format, ok = decompressExtensions[strings.ToLower(ext)]
		if !ok {
			return fmt.Errorf("single file decompressor cannot handle the file extension %q", ext)
		}
	}
	lowerExt := strings.ToLower(ext)

	src, err := input()
	if err != nil {
		return op.skipArchive(displayPath, attr, "could not decompress file", err)
	}
	defer func() {
		if closer, ok := src.(io.Closer); ok {
			closer.Close()
		}
	}()

	hr, err := newHeaderReader(src, sniffHeaderSize)
	if err != nil {
		return op.skipArchive(displayPath, attr, "could not decompress file", err)
	}

	stream, actual, meta, err := openCodec(format, lowerExt, hr)
	if err != nil {
		return op.skipArchive(displayPath, attr, "could not decompress file", err)
	}
	defer func() {
		if closer, ok := stream.(io.Closer); ok {
			closer.Close()
		}
	}()

	uncompressed := attr.Copy()
	SetAttr(uncompressed, AttrInArchive, actual)
	uncompressed.SetType(FileTypeRegular)
	DelAttr(uncompressed, AttrSize)

	entryName := ""
	if meta != nil {
		entryName = meta.name
		if meta.size != nil {
			SetAttr(uncompressed, AttrSize, *meta.size)
		}
		if !meta.modTime.IsZero() {
			SetAttr(uncompressed, AttrLastModifiedTime, meta.modTime)
		}
		if meta.hostFS != nil {
			SetAttr(uncompressed, AttrGzipHostFS, *meta.hostFS)
		}
		if meta.comment != "" {
			SetAttr(uncompressed, AttrComment, meta.comment)
		}
	}

	var matchPath, uncompressedDisplay Path
	if entryName == "" {
		// No explicit filename within the compressed file; deduce it from
		// the original name.
		base := displayPath.Base()
		if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
			entryName = base[:idx]
		} else {
			entryName = base
		}
		if combinedTarExtensions[lowerExt] {
			// the shorthand hides a ".tar"; restore it so the archive chain
			// picks the payload up
			entryName += ".tar"
			matchPath = displayPath.Resolve(entryName)
			uncompressedDisplay = displayPath
		} else {
			matchPath = displayPath.Resolve(entryName)
			uncompressedDisplay = matchPath
		}
	} else {
		matchPath = displayPath.Resolve(entryName)
		uncompressedDisplay = matchPath
	}

	return op.FilterEntry("", matchPath, uncompressedDisplay, func() (io.Reader, error) {
		return &noopReaderCloser{stream}, nil
	}, uncompressed)
}
