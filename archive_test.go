// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package arcwalk_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/dsnet/compress/bzip2"

	arcwalk "github.com/hashicorp/go-arcwalk"
)

type tarEntry struct {
	name     string
	typeflag byte
	content  string
	mode     int64
	linkname string
}

func buildTar(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, e := range entries {
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{
			Name:     e.name,
			Typeflag: e.typeflag,
			Mode:     mode,
			Size:     int64(len(e.content)),
			ModTime:  time.Unix(1700000000, 0),
			Linkname: e.linkname,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header %q: %v", e.name, err)
		}
		if len(e.content) > 0 {
			if _, err := tw.Write([]byte(e.content)); err != nil {
				t.Fatalf("writing tar content %q: %v", e.name, err)
			}
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func gzipCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func bzip2Compress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	bw, err := bzip2.NewWriter(&buf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

type zipEntry struct {
	name    string
	content string
}

func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("creating zip entry %q: %v", e.name, err)
		}
		if _, err := w.Write([]byte(e.content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// empty7z builds a structurally valid, empty 7z archive: the signature
// header with a zero-length next header.
func empty7z() []byte {
	out := make([]byte, 32)
	copy(out, []byte{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c, 0x00, 0x04})
	// bytes 12..31 are the zeroed next-header offset/size/crc
	binary.LittleEndian.PutUint32(out[8:], crc32.ChecksumIEEE(out[12:32]))
	return out
}

// recordingHandler accumulates errors and lets the traversal continue.
func recordingHandler(errs *[]string) arcwalk.ErrorHandler {
	return func(displayPath arcwalk.Path, attr arcwalk.FileAttributes, msg string, cause error) error {
		*errs = append(*errs, msg)
		return nil
	}
}

func TestNestedArchiveDepthGrid(t *testing.T) {
	innerTbz2 := bzip2Compress(t, buildTar(t, []tarEntry{
		{name: "tbz2-f1", typeflag: tar.TypeReg, content: "deep"},
	}))

	nestZip := buildZip(t, []zipEntry{
		{name: "zip-f1", content: "zip file one"},
		{name: "nest-tbz2.tbz2", content: string(innerTbz2)},
		{name: "zip-d1/", content: ""},
	})

	nestTgz := gzipCompress(t, buildTar(t, []tarEntry{
		{name: "tgz-f1", typeflag: tar.TypeReg, content: "tgz file one"},
		{name: "nest-zip.zip", typeflag: tar.TypeReg, content: string(nestZip)},
		{name: "tgz-d1/", typeflag: tar.TypeDir},
		{name: "tgz-d1/tgz-f2", typeflag: tar.TypeReg, content: "tgz file two"},
		{name: "tgz-d1/nest-7z.7z", typeflag: tar.TypeReg, content: string(empty7z())},
	}))

	root := filepath.Join(t.TempDir(), "nest-tgz.tgz")
	if err := os.WriteFile(root, nestTgz, 0o644); err != nil {
		t.Fatal(err)
	}

	rootPath := fsPathComponents(root)
	w := arcwalk.NewWalker(
		arcwalk.WithMaxDepth(2),
		arcwalk.WithFileTypes(arcwalk.FileTypeRegular, arcwalk.FileTypeArchive, arcwalk.FileTypeDirectory),
	)

	var errs []string
	var got []string
	err := w.WalkHandle(root, func(displayPath arcwalk.Path, input arcwalk.InputSupplier, attr arcwalk.FileAttributes) error {
		got = append(got, displayPath.RelativeTo(rootPath).String())
		return nil
	}, recordingHandler(&errs))
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	want := []string{
		"",
		"tgz-f1",
		"nest-zip.zip",
		"nest-zip.zip/zip-f1",
		"nest-zip.zip/nest-tbz2.tbz2",
		"nest-zip.zip/zip-d1",
		"tgz-d1",
		"tgz-d1/tgz-f2",
		"tgz-d1/nest-7z.7z",
	}
	sort.Strings(got)
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("emitted set:\n  got  %v\n  want %v\n  (errors: %v)", got, want, errs)
	}
}

func TestFileTypeClassification(t *testing.T) {
	archiveTgz := gzipCompress(t, buildTar(t, []tarEntry{
		{name: "payload", typeflag: tar.TypeReg, content: "inside"},
	}))

	tarData := buildTar(t, []tarEntry{
		{name: "regfile", typeflag: tar.TypeReg, content: "plain"},
		{name: "blockdev", typeflag: tar.TypeBlock},
		{name: "chardev", typeflag: tar.TypeChar},
		{name: "pipe", typeflag: tar.TypeFifo},
		{name: "somedir/", typeflag: tar.TypeDir},
		{name: "alink", typeflag: tar.TypeSymlink, linkname: "regfile"},
		{name: "archive.tgz", typeflag: tar.TypeReg, content: string(archiveTgz)},
	})

	root := filepath.Join(t.TempDir(), "test-filetypes.tar")
	if err := os.WriteFile(root, tarData, 0o644); err != nil {
		t.Fatal(err)
	}
	rootPath := fsPathComponents(root)

	collect := func(types ...arcwalk.FileType) map[string]arcwalk.FileType {
		t.Helper()
		got := make(map[string]arcwalk.FileType)
		w := arcwalk.NewWalker(arcwalk.WithFileTypes(types...))
		err := w.Walk(root, func(displayPath arcwalk.Path, input arcwalk.InputSupplier, attr arcwalk.FileAttributes) error {
			got[displayPath.RelativeTo(rootPath).String()] = attr.Type()
			return nil
		})
		if err != nil {
			t.Fatalf("Walk returned error: %v", err)
		}
		return got
	}

	blockOnly := collect(arcwalk.FileTypeBlockDev)
	if len(blockOnly) != 1 || blockOnly["blockdev"] != arcwalk.FileTypeBlockDev {
		t.Errorf("block-device filter emitted %v", blockOnly)
	}

	archives := collect(arcwalk.FileTypeArchive)
	if len(archives) != 2 ||
		archives[""] != arcwalk.FileTypeArchive ||
		archives["archive.tgz"] != arcwalk.FileTypeArchive {
		t.Errorf("archive filter emitted %v", archives)
	}
}

func TestPermissionRoundTrip(t *testing.T) {
	tarData := buildTar(t, []tarEntry{
		{name: "sst.rwx.rwx.rw_", typeflag: tar.TypeReg, mode: 0o7776, content: "x"},
	})
	root := filepath.Join(t.TempDir(), "test-permissions.tar")
	if err := os.WriteFile(root, tarData, 0o644); err != nil {
		t.Fatal(err)
	}

	var perms string
	err := arcwalk.NewWalker().Walk(root, func(displayPath arcwalk.Path, input arcwalk.InputSupplier, attr arcwalk.FileAttributes) error {
		if p, ok := arcwalk.GetAttr(attr, arcwalk.AttrUnixPermissions); ok {
			perms = p.String()
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if perms != "rwsrwsrwT" {
		t.Errorf("permission string = %q, want %q", perms, "rwsrwsrwT")
	}
}

func TestNestedStreamArchivePath(t *testing.T) {
	innerTarGz := gzipCompress(t, buildTar(t, []tarEntry{
		{name: "inner/", typeflag: tar.TypeDir},
		{name: "inner/file", typeflag: tar.TypeReg, content: "nested content"},
	}))
	outerZip := buildZip(t, []zipEntry{
		{name: "outer.tar.gz", content: string(innerTarGz)},
	})

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "outer.zip"), outerZip, 0o644); err != nil {
		t.Fatal(err)
	}
	rootPath := fsPathComponents(root)

	var paths []string
	var formats []arcwalk.ArchiveFormat
	var contents []string
	err := arcwalk.NewWalker().Walk(root, func(displayPath arcwalk.Path, input arcwalk.InputSupplier, attr arcwalk.FileAttributes) error {
		paths = append(paths, displayPath.RelativeTo(rootPath).String())
		if f, ok := arcwalk.GetAttr(attr, arcwalk.AttrInArchive); ok {
			formats = append(formats, f)
		}
		r, err := input()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		contents = append(contents, string(data))
		return nil
	})
	if err != nil {
		t.Fatalf("Walk returned error: %v", err)
	}

	if len(paths) != 1 || paths[0] != "outer.zip/outer.tar.gz/outer.tar/inner/file" {
		t.Fatalf("emitted paths = %v", paths)
	}
	if len(formats) != 1 || formats[0] != arcwalk.FormatTAR {
		t.Errorf("IN_ARCHIVE = %v, want TAR", formats)
	}
	if len(contents) != 1 || contents[0] != "nested content" {
		t.Errorf("content = %q", contents)
	}
}

func TestRecurseIntoArchivesDisabled(t *testing.T) {
	tarData := buildTar(t, []tarEntry{
		{name: "afile", typeflag: tar.TypeReg, content: "x"},
	})
	root := filepath.Join(t.TempDir(), "plain.tar")
	if err := os.WriteFile(root, tarData, 0o644); err != nil {
		t.Fatal(err)
	}
	rootPath := fsPathComponents(root)

	w := arcwalk.NewWalker(
		arcwalk.WithRecurseIntoArchives(false),
		arcwalk.WithAllFileTypes(),
	)
	got := collectPathsHandle(t, w, root, rootPath)
	if len(got) != 1 || got[0] != "" {
		t.Errorf("emitted %v, want only the archive itself", got)
	}
}

func collectPathsHandle(t *testing.T, w *arcwalk.Walker, root string, rootPath arcwalk.Path) []string {
	t.Helper()
	var got []string
	err := w.Walk(root, func(displayPath arcwalk.Path, input arcwalk.InputSupplier, attr arcwalk.FileAttributes) error {
		got = append(got, displayPath.RelativeTo(rootPath).String())
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(got)
	return got
}

func TestGzipHeaderMetadata(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Header.Name = "renamed.txt"
	gw.Header.Comment = "a note"
	gw.Header.ModTime = time.Unix(1600000000, 0)
	if _, err := gw.Write([]byte("payload")); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	root := filepath.Join(t.TempDir(), "original.gz")
	if err := os.WriteFile(root, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	rootPath := fsPathComponents(root)

	var seen []string
	err := arcwalk.NewWalker().Walk(root, func(displayPath arcwalk.Path, input arcwalk.InputSupplier, attr arcwalk.FileAttributes) error {
		seen = append(seen, displayPath.RelativeTo(rootPath).String())
		if c, ok := arcwalk.GetAttr(attr, arcwalk.AttrComment); !ok || c != "a note" {
			t.Errorf("comment attribute = %q, %v", c, ok)
		}
		if m, ok := arcwalk.GetAttr(attr, arcwalk.AttrLastModifiedTime); !ok || !m.Equal(time.Unix(1600000000, 0)) {
			t.Errorf("modified time = %v, %v", m, ok)
		}
		if f, _ := arcwalk.GetAttr(attr, arcwalk.AttrInArchive); f != arcwalk.FormatGzip {
			t.Errorf("IN_ARCHIVE = %v", f)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 || seen[0] != "renamed.txt" {
		t.Errorf("emitted %v, want the gzip-internal filename", seen)
	}
}

func TestTarAttributesInsideArchive(t *testing.T) {
	tarData := buildTar(t, []tarEntry{
		{name: "owned", typeflag: tar.TypeReg, content: "x", mode: 0o640},
	})
	root := filepath.Join(t.TempDir(), "attrs.tar")
	if err := os.WriteFile(root, tarData, 0o644); err != nil {
		t.Fatal(err)
	}

	err := arcwalk.NewWalker().Walk(root, func(displayPath arcwalk.Path, input arcwalk.InputSupplier, attr arcwalk.FileAttributes) error {
		if !attr.InArchive() {
			t.Error("tar entry lacks container provenance")
		}
		if f, _ := arcwalk.GetAttr(attr, arcwalk.AttrInArchive); f != arcwalk.FormatTAR {
			t.Errorf("IN_ARCHIVE = %v", f)
		}
		if p, ok := arcwalk.GetAttr(attr, arcwalk.AttrUnixPermissions); !ok || p.String() != "rw-r-----" {
			t.Errorf("permissions = %v, %v", p, ok)
		}
		if m, ok := arcwalk.GetAttr(attr, arcwalk.AttrLastModifiedTime); !ok || !m.Equal(time.Unix(1700000000, 0)) {
			t.Errorf("modified = %v, %v", m, ok)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
