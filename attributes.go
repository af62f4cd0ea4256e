// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Attr is a typed attribute descriptor. Instances are expected to be package
// constants representing kinds of file attributes, not attributes of specific
// files. The type parameter fixes the value type stored under the descriptor.
type Attr[T any] struct {
	name string
}

// NewAttr creates an attribute descriptor with the given display name. New
// descriptors may be introduced by callers; the attribute set is open.
func NewAttr[T any](name string) Attr[T] {
	return Attr[T]{name: name}
}

// String returns the descriptor's display name.
func (a Attr[T]) String() string {
	return a.name
}

// The recognised attribute descriptors. All are optional for any given entry,
// except that every classified entry carries AttrType.
var (
	// AttrType is the entry's file type, e.g. [FileTypeRegular].
	AttrType = NewAttr[FileType]("file type")

	// AttrCreationTime is the entry's creation time.
	AttrCreationTime = NewAttr[time.Time]("creation time")

	// AttrLastAccessTime is the entry's last access time.
	AttrLastAccessTime = NewAttr[time.Time]("last access time")

	// AttrLastModifiedTime is the entry's last modification time.
	AttrLastModifiedTime = NewAttr[time.Time]("last modified time")

	// AttrSize is the entry's size in bytes (uncompressed, where applicable).
	AttrSize = NewAttr[int64]("size")

	// AttrUserName is the username of the entry's owner, in UNIX
	// archives/filesystems.
	AttrUserName = NewAttr[string]("user name")

	// AttrGroupName is the name of the entry's group, in UNIX
	// archives/filesystems.
	AttrGroupName = NewAttr[string]("group name")

	// AttrUserID is the numeric ID of the entry's owner.
	AttrUserID = NewAttr[int64]("user ID")

	// AttrGroupID is the numeric ID of the entry's group.
	AttrGroupID = NewAttr[int64]("group ID")

	// AttrUnixPermissions holds the entry's UNIX permission flags (read,
	// write, execute, set-ID and sticky).
	AttrUnixPermissions = NewAttr[UnixPermissions]("UNIX permissions")

	// AttrDos holds the entry's DOS/Windows attribute flags: read-only,
	// hidden, system and archive.
	AttrDos = NewAttr[DosAttributes]("DOS attributes")

	// AttrInArchive is the format of the container in which the entry is
	// stored. Its presence or absence indicates whether the entry came from
	// inside a container at all.
	AttrInArchive = NewAttr[ArchiveFormat]("archive")

	// AttrArjHostOS is the host operating system under which an ARJ archive
	// entry was created.
	AttrArjHostOS = NewAttr[ArjHostOS]("ARJ host OS")

	// AttrGzipHostFS is the host filesystem on which a GZIP file was created.
	AttrGzipHostFS = NewAttr[GzipHostFS]("GZIP host FS")

	// AttrChecksum is an archive-stored checksum. The algorithm depends on
	// the archive format.
	AttrChecksum = NewAttr[int64]("checksum")

	// AttrComment is a free-form comment associated with an entry,
	// particularly in ZIP archives.
	AttrComment = NewAttr[string]("comment")

	// AttrLinkTarget is the target path of a symbolic or hard link stored in
	// an archive.
	AttrLinkTarget = NewAttr[string]("link target")
)

// FileAttributes is a bundle of per-entry metadata, keyed by typed attribute
// descriptors. The anticipated general case involves different archive
// formats with a heterogeneous mix of attribute kinds, so the bundle is a
// dynamically extendable map rather than a fixed struct.
//
// A FileAttributes value shares its underlying map when assigned; use [FileAttributes.Copy]
// for an independent bundle.
type FileAttributes struct {
	attrs map[any]any
}

// NewFileAttributes returns an empty attribute bundle.
func NewFileAttributes() FileAttributes {
	return FileAttributes{attrs: make(map[any]any)}
}

// SetAttr stores value under the descriptor, replacing any previous value.
func SetAttr[T any](fa FileAttributes, attr Attr[T], value T) {
	fa.attrs[attr] = value
}

// DelAttr removes the descriptor's value, if present. Removing an attribute
// and never having set it are indistinguishable.
func DelAttr[T any](fa FileAttributes, attr Attr[T]) {
	delete(fa.attrs, attr)
}

// GetAttr retrieves the value stored under the descriptor. The second return
// value reports whether the attribute is present.
func GetAttr[T any](fa FileAttributes, attr Attr[T]) (T, bool) {
	v, ok := fa.attrs[attr]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// GetAttrDefault retrieves the value stored under the descriptor, or the
// result of calling defaultFn if the attribute is absent.
func GetAttrDefault[T any](fa FileAttributes, attr Attr[T], defaultFn func() T) T {
	if v, ok := GetAttr(fa, attr); ok {
		return v
	}
	return defaultFn()
}

// Has reports whether the given descriptor has a value in the bundle.
func (fa FileAttributes) Has(attr any) bool {
	_, ok := fa.attrs[attr]
	return ok
}

// Copy returns an independent bundle with the same attribute-value pairs.
func (fa FileAttributes) Copy() FileAttributes {
	c := NewFileAttributes()
	for k, v := range fa.attrs {
		c.attrs[k] = v
	}
	return c
}

// ForEach calls fn for every attribute-value pair in the bundle, in
// unspecified order.
func (fa FileAttributes) ForEach(fn func(attr, value any)) {
	for k, v := range fa.attrs {
		fn(k, v)
	}
}

// Type returns the entry's file type, or the empty string if the entry has
// not been classified yet.
func (fa FileAttributes) Type() FileType {
	t, _ := GetAttr(fa, AttrType)
	return t
}

// SetType records the entry's file type.
func (fa FileAttributes) SetType(t FileType) {
	SetAttr(fa, AttrType, t)
}

// IsType reports whether the entry's file type is one of the given types.
func (fa FileAttributes) IsType(types ...FileType) bool {
	actual := fa.Type()
	for _, t := range types {
		if t == actual {
			return true
		}
	}
	return false
}

// InArchive reports whether the entry originated inside a container.
func (fa FileAttributes) InArchive() bool {
	return fa.Has(AttrInArchive)
}

// Equal reports structural equality over the underlying attribute map.
func (fa FileAttributes) Equal(other FileAttributes) bool {
	return reflect.DeepEqual(fa.attrs, other.attrs)
}

// String renders the bundle as "{name: value, ...}" with attribute names in
// sorted order, for logs and test failures.
func (fa FileAttributes) String() string {
	type pair struct {
		name  string
		value any
	}
	pairs := make([]pair, 0, len(fa.attrs))
	for k, v := range fa.attrs {
		pairs = append(pairs, pair{fmt.Sprint(k), v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].name < pairs[j].name })

	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", p.name, p.value)
	}
	sb.WriteByte('}')
	return sb.String()
}
