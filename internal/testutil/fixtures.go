// Package testutil holds helpers shared by package tests.
package testutil

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/zip"
)

// GetFixturePath returns the absolute path to a fixture file in the "testdata" directory relative to the project's root.
func GetFixturePath(t *testing.T, fixturePath string) string {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("..", "..", "testdata", fixturePath))
	if err != nil {
		t.Fatalf("Failed to get absolute path to testdata/%s: %v", fixturePath, err)
	}

	return absPath
}

// WriteFeed writes each named table into a fresh temporary directory and
// returns the directory.
func WriteFeed(t *testing.T, tables map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range tables {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

// WriteZipFeed packs the named tables into a GTFS archive in a fresh
// temporary directory and returns the archive path. Entries are written in
// name order under an optional folder prefix such as "gtfs/".
func WriteZipFeed(t *testing.T, folder string, tables map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "feed.zip")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}

	w := zip.NewWriter(out)
	for _, name := range slices.Sorted(maps.Keys(tables)) {
		entry, err := w.Create(folder + name)
		if err != nil {
			t.Fatalf("Failed to add %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(tables[name])); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish archive: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}

	return path
}

// ZipFixture packs every table of a fixture directory into an archive.
func ZipFixture(t *testing.T, fixturePath string) string {
	t.Helper()

	dir := GetFixturePath(t, fixturePath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to list testdata/%s: %v", fixturePath, err)
	}

	tables := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			t.Fatalf("Failed to read %s: %v", entry.Name(), err)
		}
		tables[entry.Name()] = string(content)
	}

	return WriteZipFeed(t, "", tables)
}
