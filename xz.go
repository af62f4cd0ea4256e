// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// magicBytesXz are the magic bytes for xz compressed files.
var magicBytesXz = [][]byte{
	{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
}

// magicBytesLZMA are the magic bytes for legacy lzma-alone files. The format
// has no real magic; the conventional properties byte plus dictionary-size
// prefix is the best available signature.
var magicBytesLZMA = [][]byte{
	{0x5d, 0x00, 0x00},
}

// isXz checks if the header matches the magic bytes for xz compressed files.
func isXz(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesXz)
}

// isLZMA checks if the header looks like an lzma-alone stream.
func isLZMA(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesLZMA)
}

// decompressXzStream returns an io.Reader that decompresses src with the xz algorithm.
func decompressXzStream(src io.Reader) (io.Reader, error) {
	return xz.NewReader(src)
}

// decompressLzmaStream returns an io.Reader that decompresses src with the lzma algorithm.
func decompressLzmaStream(src io.Reader) (io.Reader, error) {
	return lzma.NewReader(src)
}
