// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk

import (
	"fmt"
	"path"
)

// PathMatcher decides whether a path participates in an inclusion or
// exclusion rule.
type PathMatcher interface {
	Matches(p Path) bool
	String() string
}

// Glob compiles a glob pattern into a PathMatcher that applies at any depth:
// the pattern matches if it matches the whole path, or any tail of the path
// starting at a component boundary (the "**/pattern" reading). Patterns are
// matched with [path.Match] semantics; "*" does not cross component
// boundaries.
func Glob(pattern string) (PathMatcher, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return globMatcher(pattern), nil
}

type globMatcher string

func (g globMatcher) Matches(p Path) bool {
	for i := range p {
		ok, err := path.Match(string(g), path.Join(p[i:]...))
		if err == nil && ok {
			return true
		}
	}
	return false
}

func (g globMatcher) String() string {
	return "glob:{**/,}" + string(g)
}
