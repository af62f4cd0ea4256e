// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package dump reads BSD dump(8) archives in the new-filesystem format.
//
// There is no dump reader in the Go ecosystem, so this package implements
// enough of the tape format to enumerate inodes with their metadata, resolve
// entry paths from the directory records (which dump writes before any file
// records), and stream file data including holes. Little-endian archives
// only; compressed dumps are not supported.
package dump

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	blockSize = 1024
	nfsMagic  = 60012
	rootIno   = 2

	// dirents never span a 512-byte directory block
	dirBlockSize = 512
)

// Segment record types.
const (
	tsTape  = 1
	tsInode = 2
	tsBits  = 3
	tsAddr  = 4
	tsEnd   = 5
	tsClri  = 6
)

// EntryType is the file type nybble of a dump inode's mode word. 14 is a
// whiteout, which on Solaris would be an event port; dump archives always
// mean whiteout.
type EntryType int

const (
	TypeFIFO      EntryType = 1
	TypeCharDev   EntryType = 2
	TypeDirectory EntryType = 4
	TypeBlockDev  EntryType = 6
	TypeFile      EntryType = 8
	TypeLink      EntryType = 10
	TypeSocket    EntryType = 12
	TypeWhiteout  EntryType = 14
	TypeUnknown   EntryType = 15
)

// ErrInvalidFormat is returned when the stream is not a little-endian
// new-format dump archive.
var ErrInvalidFormat = errors.New("dump: invalid or unsupported archive format")

// Header describes one inode entry of a dump archive.
type Header struct {
	// Name is the entry's path relative to the dumped filesystem root, with
	// "/" separators. Empty for the root directory itself and for inodes
	// whose name could not be resolved from the directory records.
	Name string

	// Ino is the inode number.
	Ino uint32

	// Type is the entry's type, from the mode nybble.
	Type EntryType

	// Mode is the 16-bit mode word (type nybble plus permissions).
	Mode uint32

	UID uint32
	GID uint32

	// Size is the entry's data size in bytes.
	Size int64

	ModTime      time.Time
	AccessTime   time.Time
	CreationTime time.Time
}

type dirent struct {
	parent uint32
	name   string
}

type segment struct {
	typ   int
	ino   uint32
	count int
	addr  []byte

	mode  uint32
	size  int64
	atime time.Time
	mtime time.Time
	ctime time.Time
	uid   uint32
	gid   uint32
}

func (s *segment) entryType() EntryType {
	return EntryType((s.mode >> 12) & 0x0f)
}

// Reader provides sequential access to the entries of a dump archive.
// Directory entries are returned first (as dump writes them), then files in
// archive order.
type Reader struct {
	r     io.Reader
	err   error
	names map[uint32]dirent

	scanned bool
	queue   []*Header
	qpos    int
	peeked  *segment

	// current data entry state
	cur       *Header
	remaining int64
	segAddr   []byte
	segIdx    int
	blockBuf  [blockSize]byte
	blockPos  int
	blockLen  int
}

// NewReader checks the volume label record and prepares entry iteration.
func NewReader(r io.Reader) (*Reader, error) {
	d := &Reader{r: r, names: make(map[uint32]dirent)}
	seg, err := d.readSegment()
	if err != nil {
		if err == io.EOF {
			return nil, ErrInvalidFormat
		}
		return nil, err
	}
	if seg.typ != tsTape {
		return nil, ErrInvalidFormat
	}
	return d, nil
}

// Next advances to the next entry, skipping any unread data of the current
// one. It returns io.EOF at the end record.
func (d *Reader) Next() (*Header, error) {
	if d.err != nil {
		return nil, d.err
	}
	if !d.scanned {
		if err := d.scanDirectories(); err != nil {
			d.err = err
			return nil, err
		}
	}

	if d.qpos < len(d.queue) {
		h := d.queue[d.qpos]
		d.qpos++
		d.cur = nil
		return h, nil
	}

	if err := d.drainCurrent(); err != nil && err != io.EOF {
		d.err = err
		return nil, err
	}

	for {
		seg, err := d.nextSegment()
		if err != nil {
			d.err = err
			return nil, err
		}
		switch seg.typ {
		case tsEnd:
			d.err = io.EOF
			return nil, io.EOF
		case tsClri, tsBits:
			if err := d.skipBlocks(seg); err != nil {
				d.err = err
				return nil, err
			}
		case tsAddr:
			// stray continuation; its blocks are hole-flagged
			if err := d.skipSegmentData(seg); err != nil {
				d.err = err
				return nil, err
			}
		case tsInode:
			h := headerFromSegment(seg)
			name, ok := d.path(seg.ino)
			if !ok {
				// no directory record named this inode; drop it
				if err := d.skipSegmentData(seg); err != nil {
					d.err = err
					return nil, err
				}
				continue
			}
			h.Name = name
			d.cur = h
			d.remaining = h.Size
			d.segAddr = seg.addr
			d.segIdx = 0
			d.blockPos = 0
			d.blockLen = 0
			return h, nil
		default:
			d.err = ErrInvalidFormat
			return nil, d.err
		}
	}
}

// Read reads the current entry's data, presenting holes as zeros.
func (d *Reader) Read(p []byte) (int, error) {
	if d.cur == nil || d.remaining <= 0 {
		return 0, io.EOF
	}
	if d.blockPos >= d.blockLen {
		if err := d.nextDataBlock(); err != nil {
			if err == io.EOF && d.remaining > 0 {
				d.remaining = 0
				return 0, io.EOF
			}
			return 0, err
		}
	}
	avail := int64(d.blockLen - d.blockPos)
	if avail > d.remaining {
		avail = d.remaining
	}
	if int64(len(p)) > avail {
		p = p[:avail]
	}
	n := copy(p, d.blockBuf[d.blockPos:d.blockPos+len(p)])
	d.blockPos += n
	d.remaining -= int64(n)
	return n, nil
}

func headerFromSegment(seg *segment) *Header {
	return &Header{
		Ino:          seg.ino,
		Type:         seg.entryType(),
		Mode:         seg.mode,
		UID:          seg.uid,
		GID:          seg.gid,
		Size:         seg.size,
		ModTime:      seg.mtime,
		AccessTime:   seg.atime,
		CreationTime: seg.ctime,
	}
}

// scanDirectories consumes the directory records at the front of the
// archive, building the inode name map, and stashes their headers for
// iteration.
func (d *Reader) scanDirectories() error {
	d.scanned = true
	for {
		seg, err := d.nextSegment()
		if err != nil {
			return err
		}
		switch seg.typ {
		case tsTape:
			continue
		case tsClri, tsBits:
			if err := d.skipBlocks(seg); err != nil {
				return err
			}
		case tsEnd:
			d.peeked = seg
			d.resolveQueue()
			return nil
		case tsInode:
			if seg.entryType() != TypeDirectory {
				d.peeked = seg
				d.resolveQueue()
				return nil
			}
			if err := d.readDirectory(seg); err != nil {
				return err
			}
			d.queue = append(d.queue, headerFromSegment(seg))
		default:
			return ErrInvalidFormat
		}
	}
}

// readDirectory parses the dirents of one directory inode, including any
// continuation segments.
func (d *Reader) readDirectory(seg *segment) error {
	dirIno := seg.ino
	remaining := seg.size
	addr := seg.addr
	for {
		for _, flag := range addr {
			if remaining <= 0 {
				// flagged blocks still need consuming
				if flag != 0 {
					if _, err := io.ReadFull(d.r, d.blockBuf[:]); err != nil {
						return fmt.Errorf("dump: truncated directory data: %w", err)
					}
				}
				continue
			}
			if flag == 0 {
				remaining -= blockSize
				continue
			}
			if _, err := io.ReadFull(d.r, d.blockBuf[:]); err != nil {
				return fmt.Errorf("dump: truncated directory data: %w", err)
			}
			d.parseDirents(dirIno, d.blockBuf[:])
			remaining -= blockSize
		}

		seg, err := d.nextSegment()
		if err != nil {
			return err
		}
		if seg.typ != tsAddr || seg.ino != dirIno {
			d.peeked = seg
			return nil
		}
		addr = seg.addr
	}
}

// parseDirents walks the new-format struct direct entries of one block.
func (d *Reader) parseDirents(dirIno uint32, block []byte) {
	for chunk := 0; chunk+dirBlockSize <= len(block); chunk += dirBlockSize {
		b := block[chunk : chunk+dirBlockSize]
		off := 0
		for off+8 <= dirBlockSize {
			ino := binary.LittleEndian.Uint32(b[off:])
			reclen := int(binary.LittleEndian.Uint16(b[off+4:]))
			namlen := int(b[off+7])
			if reclen == 0 || off+reclen > dirBlockSize {
				break
			}
			if ino != 0 && namlen > 0 && off+8+namlen <= dirBlockSize {
				name := string(b[off+8 : off+8+namlen])
				if name != "." && name != ".." {
					d.names[ino] = dirent{parent: dirIno, name: name}
				}
			}
			off += reclen
		}
	}
}

func (d *Reader) resolveQueue() {
	resolved := d.queue[:0]
	for _, h := range d.queue {
		name, ok := d.path(h.Ino)
		if !ok || name == "" {
			// the root directory and unresolved inodes are not reported
			continue
		}
		h.Name = name
		resolved = append(resolved, h)
	}
	d.queue = resolved
}

// path resolves an inode's full path from the directory records.
func (d *Reader) path(ino uint32) (string, bool) {
	if ino == rootIno {
		return "", true
	}
	var parts []string
	cur := ino
	for depth := 0; depth < 1024; depth++ {
		de, ok := d.names[cur]
		if !ok {
			return "", false
		}
		parts = append(parts, de.name)
		if de.parent == rootIno {
			for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
				parts[i], parts[j] = parts[j], parts[i]
			}
			return strings.Join(parts, "/"), true
		}
		cur = de.parent
	}
	return "", false
}

func (d *Reader) nextSegment() (*segment, error) {
	if d.peeked != nil {
		seg := d.peeked
		d.peeked = nil
		return seg, nil
	}
	return d.readSegment()
}

func (d *Reader) readSegment() (*segment, error) {
	var buf [blockSize]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	if binary.LittleEndian.Uint32(buf[24:]) != nfsMagic {
		return nil, ErrInvalidFormat
	}

	count := int(int32(binary.LittleEndian.Uint32(buf[160:])))
	if count < 0 || count > dirBlockSize || 164+count > blockSize {
		return nil, ErrInvalidFormat
	}

	seg := &segment{
		typ:   int(int32(binary.LittleEndian.Uint32(buf[0:]))),
		ino:   binary.LittleEndian.Uint32(buf[20:]),
		count: count,
		addr:  append([]byte(nil), buf[164:164+count]...),
		mode:  uint32(binary.LittleEndian.Uint16(buf[32:])),
		size:  int64(binary.LittleEndian.Uint64(buf[40:])),
		atime: dumpTime(buf[48:]),
		mtime: dumpTime(buf[56:]),
		ctime: dumpTime(buf[64:]),
		uid:   binary.LittleEndian.Uint32(buf[144:]),
		gid:   binary.LittleEndian.Uint32(buf[148:]),
	}
	return seg, nil
}

func dumpTime(b []byte) time.Time {
	sec := int64(int32(binary.LittleEndian.Uint32(b)))
	usec := int64(int32(binary.LittleEndian.Uint32(b[4:])))
	if sec == 0 && usec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, usec*1000)
}

// nextDataBlock loads the next data block of the current entry, fetching
// continuation segments as needed. Holes read as zeros.
func (d *Reader) nextDataBlock() error {
	for {
		if d.segIdx < len(d.segAddr) {
			flag := d.segAddr[d.segIdx]
			d.segIdx++
			if flag != 0 {
				if _, err := io.ReadFull(d.r, d.blockBuf[:]); err != nil {
					return fmt.Errorf("dump: truncated file data: %w", err)
				}
			} else {
				for i := range d.blockBuf {
					d.blockBuf[i] = 0
				}
			}
			d.blockPos = 0
			d.blockLen = blockSize
			return nil
		}

		seg, err := d.nextSegment()
		if err != nil {
			return err
		}
		if seg.typ != tsAddr || (d.cur != nil && seg.ino != d.cur.Ino) {
			d.peeked = seg
			return io.EOF
		}
		d.segAddr = seg.addr
		d.segIdx = 0
	}
}

// drainCurrent consumes the unread flagged blocks of the current entry's
// segment so the stream is positioned at the next record.
func (d *Reader) drainCurrent() error {
	if d.cur == nil {
		return nil
	}
	for d.segIdx < len(d.segAddr) {
		flag := d.segAddr[d.segIdx]
		d.segIdx++
		if flag != 0 {
			if _, err := io.ReadFull(d.r, d.blockBuf[:]); err != nil {
				return fmt.Errorf("dump: truncated file data: %w", err)
			}
		}
	}
	d.cur = nil
	d.blockPos = 0
	d.blockLen = 0
	return nil
}

// skipBlocks consumes the data blocks of a map segment, where every block is
// physically present.
func (d *Reader) skipBlocks(seg *segment) error {
	for i := 0; i < seg.count; i++ {
		if _, err := io.ReadFull(d.r, d.blockBuf[:]); err != nil {
			return fmt.Errorf("dump: truncated map data: %w", err)
		}
	}
	return nil
}

// skipSegmentData consumes the flagged data blocks of an inode segment.
func (d *Reader) skipSegmentData(seg *segment) error {
	for _, flag := range seg.addr {
		if flag != 0 {
			if _, err := io.ReadFull(d.r, d.blockBuf[:]); err != nil {
				return fmt.Errorf("dump: truncated file data: %w", err)
			}
		}
	}
	return nil
}
