// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"bytes"
	"io"

	gsnappy "github.com/golang/snappy"
	"github.com/klauspost/compress/snappy"
)

// magicBytesSnappyFramed are the magic bytes of the snappy framing format's
// stream identifier chunk.
var magicBytesSnappyFramed = [][]byte{
	{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59},
}

// isSnappyFramed checks if the header matches the magic bytes for framed snappy streams.
func isSnappyFramed(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesSnappyFramed)
}

// decompressSnappyStream returns an io.Reader that decompresses src with the framed snappy format.
func decompressSnappyStream(src io.Reader) io.Reader {
	return snappy.NewReader(src)
}

// decompressSnappyBlock decodes the raw (block) snappy format, which has no
// framing and must be decoded as a whole. Its leading varint is the decoded
// length, so this is one of the few codecs that can report the uncompressed
// size up front.
func decompressSnappyBlock(src io.Reader) (io.Reader, ArchiveFormat, *codecMetadata, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", nil, err
	}
	n, err := gsnappy.DecodedLen(data)
	if err != nil {
		return nil, "", nil, err
	}
	decoded, err := gsnappy.Decode(nil, data)
	if err != nil {
		return nil, "", nil, err
	}
	size := int64(n)
	return bytes.NewReader(decoded), FormatSnappyRaw, &codecMetadata{size: &size}, nil
}
