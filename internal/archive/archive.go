// Package archive bundles fetched files into a single zip.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build writes one zip archive at destPath containing the given files.
// Only base names are kept inside the archive so the scratch directory
// layout never leaks into the bundle. A vanished input file fails the whole
// build; that is a race with cleanup, not something to skip silently.
func (b *Builder) Build(files []string, destPath string) error {
	if len(files) == 0 {
		return fmt.Errorf("no files to archive")
	}

	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", destPath, err)
	}
	defer func() { _ = out.Close() }()

	zw := zip.NewWriter(out)
	used := make(map[string]int)

	for _, file := range sorted {
		if err := addFile(zw, file, used); err != nil {
			_ = zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive %s: %w", destPath, err)
	}
	return out.Close()
}

func addFile(zw *zip.Writer, file string, used map[string]int) error {
	in, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("read input %s: %w", file, err)
	}
	defer func() { _ = in.Close() }()

	w, err := zw.Create(entryName(filepath.Base(file), used))
	if err != nil {
		return fmt.Errorf("add %s: %w", file, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}

// entryName de-duplicates base names by suffixing a counter before the
// extension: "song.mp3", "song (1).mp3", ...
func entryName(base string, used map[string]int) string {
	n := used[base]
	used[base] = n + 1
	if n == 0 {
		return base
	}
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(base, ext), n, ext)
}
