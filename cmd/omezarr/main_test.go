package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/janelia-flyem/omezarr/export"
	"github.com/janelia-flyem/omezarr/storage"
)

func writeFixture(t *testing.T, name string) string {
	t.Helper()
	docs := map[string]string{
		".zattrs": `{
			"multiscales": [{"version": "0.4", "name": "img", "axes": ["c", "y", "x"], "datasets": [{"path": "0"}, {"path": "1"}]}],
			"omero": {"channels": [{"label": "a"}, {"label": "b"}]}
		}`,
		"0/.zarray":      `{"zarr_format": 2, "shape": [2, 64, 64], "chunks": [1, 64, 64], "dtype": "|u1"}`,
		"1/.zarray":      `{"zarr_format": 2, "shape": [2, 32, 32], "chunks": [1, 32, 32], "dtype": "|u1"}`,
		"labels/.zattrs": `{"labels": ["seg"]}`,
		"labels/seg/.zattrs": `{
			"multiscales": [{"version": "0.4", "axes": ["y", "x"], "datasets": [{"path": "0"}]}],
			"image-label": {"properties": [{"label-value": 3, "kind": "x"}]}
		}`,
		"labels/seg/0/.zarray": `{"zarr_format": 2, "shape": [64, 64], "chunks": [64, 64], "dtype": "<u8"}`,
	}
	bucket := storage.MemBucket(name)
	for key, value := range docs {
		if err := bucket.WriteAll(context.Background(), key, []byte(value), nil); err != nil {
			t.Fatalf("can't write fixture %q: %v", key, err)
		}
	}
	return "mem://" + name
}

func TestLayersCommand(t *testing.T) {
	ref := writeFixture(t, "cmd-layers")
	var out bytes.Buffer
	if err := DoCommand(context.Background(), &out, []string{"layers", ref}); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 layers, got:\n%s", out.String())
	}
	if !strings.Contains(lines[1], "image") || !strings.Contains(lines[1], "8.2 kB") {
		t.Errorf("bad image line: %q", lines[1])
	}
	if !strings.Contains(lines[2], "labels") || !strings.Contains(lines[2], "seg") {
		t.Errorf("bad labels line: %q", lines[2])
	}
}

func TestExportCommand(t *testing.T) {
	ref := writeFixture(t, "cmd-export")
	var out bytes.Buffer
	dest := "mem://cmd-export-out/run1"
	if err := DoCommand(context.Background(), &out, []string{"export", ref, dest}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "with 2 layers") {
		t.Errorf("unexpected export output: %s", out.String())
	}
	found, err := storage.MemBucket("cmd-export-out").Exists(context.Background(), "run1/"+export.ManifestKey)
	if err != nil || !found {
		t.Errorf("expected manifest in export bucket: %v", err)
	}
}

func TestBadCommands(t *testing.T) {
	tests := [][]string{
		nil,
		{"layers"},
		{"export", "only-source"},
		{"frobnicate"},
		{"layers", t.TempDir()},
	}
	for _, args := range tests {
		if err := DoCommand(context.Background(), &bytes.Buffer{}, args); err == nil {
			t.Errorf("expected error for command %v", args)
		}
	}
}

func TestAboutCommand(t *testing.T) {
	var out bytes.Buffer
	if err := DoCommand(context.Background(), &out, []string{"about"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "s3") {
		t.Errorf("expected storage schemes in about output: %s", out.String())
	}
}
