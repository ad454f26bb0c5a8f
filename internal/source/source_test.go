package source

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestAcquireDirectoryPassthrough(t *testing.T) {
	dir := t.TempDir()
	scratch := t.TempDir()

	got, err := Acquire(dir, scratch)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != dir {
		t.Errorf("Acquire = %q, want the directory itself %q", got, dir)
	}
}

func TestAcquireMissingSource(t *testing.T) {
	if _, err := Acquire(filepath.Join(t.TempDir(), "nope"), t.TempDir()); err == nil {
		t.Error("expected an error for a missing source")
	}
}

func writeZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "src.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	return path
}

func TestAcquireExtractsArchive(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"bin/app.exe":     "MZ",
		"data/readme.txt": "hello",
	})
	scratch := t.TempDir()

	got, err := Acquire(archive, scratch)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got != filepath.Join(scratch, "src") {
		t.Errorf("extraction dir = %q", got)
	}

	content, err := os.ReadFile(filepath.Join(got, "data", "readme.txt"))
	if err != nil {
		t.Fatalf("reading extracted file: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("extracted content = %q, want hello", content)
	}
	if _, err := os.Stat(filepath.Join(got, "bin", "app.exe")); err != nil {
		t.Errorf("missing extracted bin/app.exe: %v", err)
	}
}

func TestAcquireRejectsEscapingEntries(t *testing.T) {
	archive := writeZip(t, map[string]string{
		"../evil.txt": "x",
	})

	if _, err := Acquire(archive, t.TempDir()); err == nil {
		t.Error("path-escaping archive entry should be rejected")
	}
}
