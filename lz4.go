// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// magicBytesLZ4 are the magic bytes for lz4 frames, modern and legacy.
var magicBytesLZ4 = [][]byte{
	{0x04, 0x22, 0x4d, 0x18},
	{0x02, 0x21, 0x4c, 0x18},
}

// isLZ4 checks if the header matches the magic bytes for lz4 frames.
func isLZ4(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesLZ4)
}

// decompressLZ4Stream returns an io.Reader that decompresses src with the lz4 algorithm.
func decompressLZ4Stream(src io.Reader) io.Reader {
	return lz4.NewReader(src)
}
