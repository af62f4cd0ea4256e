// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk_test

import (
	"errors"
	"fmt"
	"testing"

	arcwalk "github.com/hashicorp/go-arcwalk"
)

func TestFileTreeAddPath(t *testing.T) {
	tree := arcwalk.NewFileTree("/data/root")

	attr := arcwalk.NewFileAttributes()
	attr.SetType(arcwalk.FileTypeRegular)

	leaf := arcwalk.Path{"data", "root", "a", "b", "file"}
	if err := tree.AddPath(leaf, attr); err != nil {
		t.Fatalf("AddPath returned error: %v", err)
	}

	node := tree.Node(leaf)
	if node == nil {
		t.Fatal("leaf node not found")
	}
	if node.Name() != "file" {
		t.Errorf("leaf name = %q", node.Name())
	}
	if _, ok := node.Attr(); !ok {
		t.Error("leaf has no attributes")
	}

	// intermediate nodes are placeholders
	a := tree.Root().Child("a")
	if a == nil {
		t.Fatal("intermediate node 'a' missing")
	}
	if _, ok := a.Attr(); ok {
		t.Error("placeholder node has attributes")
	}

	// a later report of the intermediate directory completes the placeholder
	dirAttr := arcwalk.NewFileAttributes()
	dirAttr.SetType(arcwalk.FileTypeDirectory)
	if err := tree.AddPath(arcwalk.Path{"data", "root", "a"}, dirAttr); err != nil {
		t.Fatalf("completing placeholder returned error: %v", err)
	}
	if got, ok := a.Attr(); !ok || got.Type() != arcwalk.FileTypeDirectory {
		t.Error("placeholder completion did not stick")
	}
}

func TestFileTreeDuplicatePath(t *testing.T) {
	tree := arcwalk.NewFileTree("/data/root")
	attr := arcwalk.NewFileAttributes()

	p := arcwalk.Path{"data", "root", "x"}
	if err := tree.AddPath(p, attr); err != nil {
		t.Fatalf("first AddPath returned error: %v", err)
	}
	if err := tree.AddPath(p, attr); err == nil {
		t.Fatal("duplicate AddPath did not error")
	}
}

func TestFileTreeChildOrder(t *testing.T) {
	tree := arcwalk.NewFileTree("/r")
	for _, name := range []string{"c", "a", "b"} {
		if err := tree.AddPath(arcwalk.Path{"r", name}, arcwalk.NewFileAttributes()); err != nil {
			t.Fatalf("AddPath(%q) returned error: %v", name, err)
		}
	}
	var got []string
	for _, child := range tree.Root().Children() {
		got = append(got, child.Name())
	}
	want := []string{"c", "a", "b"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("children order = %v, want %v", got, want)
	}
}

func TestFileTreeAddError(t *testing.T) {
	tree := arcwalk.NewFileTree("/r")
	cause := errors.New("boom")

	if err := tree.AddError(arcwalk.Path{"r", "x"}, "cannot read", cause); err != nil {
		t.Fatalf("AddError returned fatal error: %v", err)
	}
	if !tree.ErrorsFound() {
		t.Fatal("ErrorsFound() = false after AddError")
	}
	recs := tree.Errors()
	if len(recs) != 1 || recs[0].Message != "cannot read" || !errors.Is(recs[0].Cause, cause) {
		t.Errorf("unexpected error record: %+v", recs)
	}
}

func TestFileTreeOwnErrorIsFatal(t *testing.T) {
	tree := arcwalk.NewFileTree("/r")
	p := arcwalk.Path{"r", "x"}
	if err := tree.AddPath(p, arcwalk.NewFileAttributes()); err != nil {
		t.Fatal(err)
	}
	dup := tree.AddPath(p, arcwalk.NewFileAttributes())
	if dup == nil {
		t.Fatal("expected duplicate error")
	}

	// The builder observing its own failure must not absorb it.
	if err := tree.AddError(p, "wrapped", fmt.Errorf("handler saw: %w", dup)); err == nil {
		t.Error("tree absorbed its own error")
	}
}
