package archive

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func entryNames(t *testing.T, archivePath string) []string {
	t.Helper()
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer func() { _ = zr.Close() }()

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func TestBuild_BaseNamesOnly(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "b - second.mp3", "bbb"),
		writeFile(t, dir, "a - first.mp3", "aaa"),
	}
	dest := filepath.Join(t.TempDir(), "bundle.zip")

	if err := NewBuilder().Build(files, dest); err != nil {
		t.Fatalf("build: %v", err)
	}

	names := entryNames(t, dest)
	if len(names) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(names))
	}
	// Sorted input order, base names only.
	if names[0] != "a - first.mp3" || names[1] != "b - second.mp3" {
		t.Errorf("unexpected entries: %v", names)
	}
}

func TestBuild_DuplicateBaseNames(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	files := []string{
		writeFile(t, dirA, "song.mp3", "one"),
		writeFile(t, dirB, "song.mp3", "two"),
	}
	dest := filepath.Join(t.TempDir(), "bundle.zip")

	if err := NewBuilder().Build(files, dest); err != nil {
		t.Fatalf("build: %v", err)
	}

	names := entryNames(t, dest)
	seen := make(map[string]bool)
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate entry name %q", n)
		}
		seen[n] = true
	}
}

func TestBuild_VanishedInput(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "here.mp3", "data")
	gone := filepath.Join(dir, "gone.mp3")
	dest := filepath.Join(t.TempDir(), "bundle.zip")

	if err := NewBuilder().Build([]string{existing, gone}, dest); err == nil {
		t.Fatal("expected error for vanished input file")
	}
}

func TestBuild_NoFiles(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "bundle.zip")
	if err := NewBuilder().Build(nil, dest); err == nil {
		t.Fatal("expected error for empty file list")
	}
}

func TestBuild_BadDest(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "song.mp3", "data")

	dest := filepath.Join(dir, "missing-subdir", "bundle.zip")
	if err := NewBuilder().Build([]string{file}, dest); err == nil {
		t.Fatal("expected error for uncreatable destination")
	}
}
