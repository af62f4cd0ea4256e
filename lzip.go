// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"

	lzip "github.com/sorairolake/lzip-go"
)

// magicBytesLzip are the magic bytes for lzip compressed files.
var magicBytesLzip = [][]byte{
	{0x4c, 0x5a, 0x49, 0x50},
}

// isLzip checks if the header matches the magic bytes for lzip compressed files.
func isLzip(header []byte) bool {
	return matchesMagicBytes(header, 0, magicBytesLzip)
}

// decompressLzipStream returns an io.Reader that decompresses src with the lzip algorithm.
func decompressLzipStream(src io.Reader) (io.Reader, error) {
	return lzip.NewReader(src)
}
