// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk_test

import (
	"testing"

	arcwalk "github.com/hashicorp/go-arcwalk"
)

func TestGlobMatchesAtAnyDepth(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    arcwalk.Path
		want    bool
	}{
		{
			name:    "basename at depth",
			pattern: "*.py",
			path:    arcwalk.Path{"tmp", "work", "d1", "6.py"},
			want:    true,
		},
		{
			name:    "whole path",
			pattern: "*.py",
			path:    arcwalk.Path{"6.py"},
			want:    true,
		},
		{
			name:    "prefix digit",
			pattern: "1*",
			path:    arcwalk.Path{"work", "d5", "12.j"},
			want:    true,
		},
		{
			name:    "star does not cross separators",
			pattern: "1*",
			path:    arcwalk.Path{"work", "21.j"},
			want:    false,
		},
		{
			name:    "directory pattern",
			pattern: "d*",
			path:    arcwalk.Path{"tmp", "work", "d3"},
			want:    true,
		},
		{
			name:    "multi component pattern",
			pattern: "d1/*.py",
			path:    arcwalk.Path{"work", "d1", "6.py"},
			want:    true,
		},
		{
			name:    "multi component pattern at wrong depth",
			pattern: "d1/*.py",
			path:    arcwalk.Path{"work", "d2", "6.py"},
			want:    false,
		},
		{
			name:    "no match",
			pattern: "*.txt",
			path:    arcwalk.Path{"work", "6.py"},
			want:    false,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m, err := arcwalk.Glob(test.pattern)
			if err != nil {
				t.Fatalf("Glob(%q) returned error: %v", test.pattern, err)
			}
			if got := m.Matches(test.path); got != test.want {
				t.Errorf("Glob(%q).Matches(%v) = %v, want %v", test.pattern, test.path, got, test.want)
			}
		})
	}
}

func TestGlobInvalidPattern(t *testing.T) {
	if _, err := arcwalk.Glob("[unclosed"); err == nil {
		t.Error("Glob accepted an invalid pattern")
	}
}

func TestPathString(t *testing.T) {
	p := arcwalk.Path{"sub", "pkg.tar.gz", "pkg.tar", "inner", "file"}
	if got := p.String(); got != "sub/pkg.tar.gz/pkg.tar/inner/file" {
		t.Errorf("Path.String() = %q", got)
	}
	if got := p.Base(); got != "file" {
		t.Errorf("Path.Base() = %q", got)
	}
}

func TestPathRelativeTo(t *testing.T) {
	root := arcwalk.Path{"tmp", "work"}
	p := arcwalk.Path{"tmp", "work", "d1", "f"}
	if got := p.RelativeTo(root).String(); got != "d1/f" {
		t.Errorf("RelativeTo = %q, want %q", got, "d1/f")
	}
	if got := root.RelativeTo(root).String(); got != "" {
		t.Errorf("RelativeTo self = %q, want empty", got)
	}
}
