// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"path/filepath"
	"strings"
)

// Path is an ordered sequence of path components. Display paths may
// concatenate filesystem and in-archive segments, e.g.
// "sub/pkg.tar.gz/pkg.tar/inner/file"; components never contain separators.
type Path []string

// splitFSPath splits a filesystem path into components, discarding the root
// component of absolute paths so that component counts match relative depth
// arithmetic.
func splitFSPath(p string) Path {
	return splitArchivePath(filepath.ToSlash(p))
}

// splitArchivePath splits an in-archive entry name on "/", which the archive
// formats agree on as the directory separator. Empty components (leading,
// trailing or doubled slashes) are dropped.
func splitArchivePath(name string) Path {
	parts := strings.Split(name, "/")
	out := make(Path, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}

// Resolve returns a new path with the given components appended.
func (p Path) Resolve(components ...string) Path {
	out := make(Path, 0, len(p)+len(components))
	out = append(out, p...)
	out = append(out, components...)
	return out
}

// ResolvePath returns a new path with another path's components appended.
func (p Path) ResolvePath(other Path) Path {
	return p.Resolve(other...)
}

// Sub returns the subpath covering components [i, j).
func (p Path) Sub(i, j int) Path {
	return p[i:j]
}

// Base returns the final component, or "" for an empty path.
func (p Path) Base() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// RelativeTo returns the components of p that follow base. If p does not
// start with base's components, p is returned unchanged.
func (p Path) RelativeTo(base Path) Path {
	if len(p) < len(base) {
		return p
	}
	for i := range base {
		if p[i] != base[i] {
			return p
		}
	}
	return p[len(base):]
}

// String joins the components with "/". Filesystem and in-archive segments
// render uniformly; the matcher, not the rendering, owns separator
// abstraction.
func (p Path) String() string {
	return strings.Join(p, "/")
}
