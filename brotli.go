// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"io"

	"github.com/andybalholm/brotli"
)

// Brotli streams carry no magic bytes, so the codec is only ever selected by
// its explicit file extension, never by sniffing.

// decompressBrotliStream returns an io.Reader that decompresses src with the brotli algorithm.
func decompressBrotliStream(src io.Reader) io.Reader {
	return brotli.NewReader(src)
}
