// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package arj reads the entry headers of ARJ archives.
//
// There is no maintained ARJ reader in the Go ecosystem, so this package
// implements just enough of the format to enumerate entries with their
// metadata and to stream stored (method 0) payloads. Compressed payloads
// are skipped on iteration and fail on read.
//
// For reference, the ARJ format is documented in
// https://github.com/FarGroup/FarManager/blob/master/plugins/multiarc/arc.doc/arj.txt
package arj

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

const (
	headerMagic        = 0xea60
	maxBasicHeaderSize = 2600
	minFirstHeaderSize = 30
)

var (
	// ErrInvalidHeader is returned when the stream does not look like an
	// ARJ archive, or a header is structurally broken.
	ErrInvalidHeader = errors.New("arj: invalid header")

	// ErrMethodUnsupported is returned when reading the payload of an entry
	// stored with a compression method other than 0 (stored).
	ErrMethodUnsupported = errors.New("arj: compression method not supported")
)

// File types stored in the file_type header field.
const (
	TypeBinary      = 0
	TypeText        = 1
	TypeMainHeader  = 2
	TypeDirectory   = 3
	TypeVolumeLabel = 4
	TypeChapter     = 5
)

// Header describes one entry (local file header) of an ARJ archive.
type Header struct {
	// Name is the entry's path, with "/" separators when the filename was
	// translated by the archiver.
	Name string

	// HostOS is the operating system code the entry was archived under.
	HostOS int

	// Flags is the arj_flags byte.
	Flags byte

	// Method is the compression method; 0 means stored.
	Method int

	// FileType is one of the Type* constants.
	FileType int

	// Modified is the entry's modification time, from the DOS-format
	// timestamp.
	Modified time.Time

	// CompressedSize and OriginalSize are the payload sizes in bytes.
	CompressedSize int64
	OriginalSize   int64

	// CRC32 is the checksum of the original (uncompressed) data.
	CRC32 uint32

	// Mode is the host-dependent file access mode field. For UNIX host
	// systems it carries UNIX mode bits.
	Mode uint32
}

// IsDir reports whether the entry is a directory.
func (h *Header) IsDir() bool {
	return h.FileType == TypeDirectory
}

// Stored reports whether the entry's payload can be streamed directly.
func (h *Header) Stored() bool {
	return h.Method == 0
}

// Reader provides sequential access to the entries of an ARJ archive.
type Reader struct {
	r         io.Reader
	cur       *Header
	remaining int64
	err       error
}

// NewReader parses the archive main header and prepares entry iteration.
func NewReader(r io.Reader) (*Reader, error) {
	ar := &Reader{r: r}
	// The archive main header shares the local header layout but is not
	// followed by a payload; its size fields mean something else.
	if _, err := ar.readHeader(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: missing main header", ErrInvalidHeader)
		}
		return nil, err
	}
	return ar, nil
}

// Next advances to the next entry, skipping any unread payload of the
// current one. It returns io.EOF after the end-of-archive marker.
func (a *Reader) Next() (*Header, error) {
	if a.err != nil {
		return nil, a.err
	}
	if a.remaining > 0 {
		if _, err := io.CopyN(io.Discard, a.r, a.remaining); err != nil {
			a.err = err
			return nil, err
		}
		a.remaining = 0
	}
	hdr, err := a.readHeader()
	if err != nil {
		a.err = err
		return nil, err
	}
	a.cur = hdr
	a.remaining = hdr.CompressedSize
	return hdr, nil
}

// Read reads the current entry's payload. Only stored entries are readable.
func (a *Reader) Read(p []byte) (int, error) {
	if a.cur == nil {
		return 0, io.EOF
	}
	if !a.cur.Stored() {
		return 0, ErrMethodUnsupported
	}
	if a.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > a.remaining {
		p = p[:a.remaining]
	}
	n, err := a.r.Read(p)
	a.remaining -= int64(n)
	if err == io.EOF && a.remaining > 0 {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

func (a *Reader) readHeader() (*Header, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(a.r, prefix[:]); err != nil {
		// A truncated archive without the end marker still ends iteration.
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	if binary.LittleEndian.Uint16(prefix[0:2]) != headerMagic {
		return nil, ErrInvalidHeader
	}
	size := binary.LittleEndian.Uint16(prefix[2:4])
	if size == 0 {
		// end-of-archive marker
		return nil, io.EOF
	}
	if size > maxBasicHeaderSize {
		return nil, ErrInvalidHeader
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(a.r, buf); err != nil {
		return nil, fmt.Errorf("arj: truncated header: %w", err)
	}

	first := int(buf[0])
	if first < minFirstHeaderSize || first > len(buf) {
		return nil, ErrInvalidHeader
	}

	h := &Header{
		HostOS:         int(buf[3]),
		Flags:          buf[4],
		Method:         int(buf[5]),
		FileType:       int(buf[6]),
		Modified:       dosTime(binary.LittleEndian.Uint32(buf[8:12])),
		CompressedSize: int64(binary.LittleEndian.Uint32(buf[12:16])),
		OriginalSize:   int64(binary.LittleEndian.Uint32(buf[16:20])),
		CRC32:          binary.LittleEndian.Uint32(buf[20:24]),
		Mode:           uint32(binary.LittleEndian.Uint16(buf[26:28])),
	}

	name := buf[first:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	h.Name = string(name)

	// basic header CRC, unverified
	var crc [4]byte
	if _, err := io.ReadFull(a.r, crc[:]); err != nil {
		return nil, fmt.Errorf("arj: truncated header: %w", err)
	}

	// extended headers are "not currently used" per the format text, but
	// tolerate them
	for {
		var extSize [2]byte
		if _, err := io.ReadFull(a.r, extSize[:]); err != nil {
			return nil, fmt.Errorf("arj: truncated header: %w", err)
		}
		n := binary.LittleEndian.Uint16(extSize[:])
		if n == 0 {
			break
		}
		if _, err := io.CopyN(io.Discard, a.r, int64(n)+4); err != nil {
			return nil, fmt.Errorf("arj: truncated extended header: %w", err)
		}
	}

	return h, nil
}

// dosTime decodes the packed MS-DOS date/time format.
func dosTime(v uint32) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Date(
		int(v>>25)+1980,
		time.Month(v>>21&0x0f),
		int(v>>16&0x1f),
		int(v>>11&0x1f),
		int(v>>5&0x3f),
		int(v&0x1f)*2,
		0,
		time.UTC,
	)
}
