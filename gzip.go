// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"compress/gzip"
	"io"
)

// magicBytesGZip are the magic bytes for gzip compressed files.
var magicBytesGZip = [][]byte{
	{0x1f, 0x8b},
}

// gzipHostUnknown is the OS code for "unknown" in the gzip header.
const gzipHostUnknown = 255

// isGZip checks if the header matches the magic bytes for gzip compressed files.
func isGZip(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesGZip)
}

// decompressGZipStream returns an io.Reader that decompresses src with the
// gzip algorithm, along with the optional metadata the gzip header carries:
// the original filename, a comment, the modification time at seconds
// granularity, and the host filesystem code.
//
// See http://www.zlib.org/rfc-gzip.html
func decompressGZipStream(src io.Reader) (io.Reader, ArchiveFormat, *codecMetadata, error) {
	gz, err := gzip.NewReader(src)
	if err != nil {
		return nil, "", nil, err
	}

	meta := &codecMetadata{
		name:    gz.Header.Name,
		comment: gz.Header.Comment,
	}
	if !gz.Header.ModTime.IsZero() {
		meta.modTime = gz.Header.ModTime
	}
	if gz.Header.OS != gzipHostUnknown {
		hostFS := GzipHostFS(gz.Header.OS)
		meta.hostFS = &hostFS
	}

	return gz, FormatGzip, meta, nil
}
