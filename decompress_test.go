// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"bytes"
	"compress/gzip"
	"testing"
)

func TestSniffCodec(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   ArchiveFormat
		wantOK bool
	}{
		{
			name:   "gzip",
			header: []byte{0x1f, 0x8b, 0x08, 0x00},
			want:   FormatGzip,
			wantOK: true,
		},
		{
			name:   "bzip2",
			header: []byte{'B', 'Z', 'h', '9'},
			want:   FormatBzip2,
			wantOK: true,
		},
		{
			name:   "xz",
			header: []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
			want:   FormatXZ,
			wantOK: true,
		},
		{
			name:   "zstd",
			header: []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00},
			want:   FormatZstd,
			wantOK: true,
		},
		{
			name:   "lz4 framed",
			header: []byte{0x04, 0x22, 0x4d, 0x18},
			want:   FormatLZ4Framed,
			wantOK: true,
		},
		{
			name:   "snappy framed",
			header: []byte{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50, 0x70, 0x59},
			want:   FormatSnappyFramed,
			wantOK: true,
		},
		{
			name:   "lzip",
			header: []byte{'L', 'Z', 'I', 'P', 0x01},
			want:   FormatLzip,
			wantOK: true,
		},
		{
			name:   "zlib",
			header: []byte{0x78, 0x9c},
			want:   FormatZlib,
			wantOK: true,
		},
		{
			name:   "compress Z",
			header: []byte{0x1f, 0x9d, 0x90},
			want:   FormatZ,
			wantOK: true,
		},
		{
			name:   "lzop",
			header: []byte{0x89, 0x4c, 0x5a, 0x4f, 0x00, 0x0d, 0x0a, 0x1a, 0x0a},
			want:   FormatLzop,
			wantOK: true,
		},
		{
			name:   "unknown",
			header: []byte{0x00, 0x01, 0x02, 0x03},
			wantOK: false,
		},
		{
			name:   "empty",
			header: nil,
			wantOK: false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := sniffCodec(test.header)
			if ok != test.wantOK {
				t.Fatalf("sniffCodec() ok = %v, want %v", ok, test.wantOK)
			}
			if ok && got != test.want {
				t.Errorf("sniffCodec() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestMatchesMagicBytes(t *testing.T) {
	magic := [][]byte{{0x50, 0x4b, 0x03, 0x04}}
	if !matchesMagicBytes([]byte{0x50, 0x4b, 0x03, 0x04, 0x00}, 0, magic) {
		t.Error("exact prefix did not match")
	}
	if matchesMagicBytes([]byte{0x50, 0x4b}, 0, magic) {
		t.Error("short data matched")
	}
	if !matchesMagicBytes([]byte{0x00, 0x50, 0x4b, 0x03, 0x04}, 1, magic) {
		t.Error("offset match failed")
	}
}

func TestDecompressExtensionsCaseSensitivity(t *testing.T) {
	// "taz" and "taZ" are different formats; lookup is exact-case first.
	if decompressExtensions["taz"] != FormatGzip {
		t.Error("taz should map to gzip")
	}
	if decompressExtensions["taZ"] != FormatZ {
		t.Error("taZ should map to Z")
	}
}

func TestOpenCodecAutodetect(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write([]byte("payload"))
	gw.Close()

	hr, err := newHeaderReader(&buf, sniffHeaderSize)
	if err != nil {
		t.Fatal(err)
	}
	_, format, _, err := openCodec(formatAutodetect, "lz4", hr)
	if err != nil {
		t.Fatalf("openCodec returned error: %v", err)
	}
	if format != FormatGzip {
		t.Errorf("detected format = %v, want gzip", format)
	}
}

func TestOpenCodecUnsupported(t *testing.T) {
	hr, err := newHeaderReader(bytes.NewReader([]byte{0x1f, 0x9d, 0x90, 0x00}), sniffHeaderSize)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := openCodec(FormatZ, "z", hr); err == nil {
		t.Error("Z stream decoded unexpectedly")
	}
}
