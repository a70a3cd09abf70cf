// Package testutil contains file system helpers shared by the render tests.
package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

const (
	testDirPermissions  = 0o750
	testFilePermissions = 0o600
)

// SourceAndTarget creates an empty source directory and returns it together
// with a sibling target path that does not exist yet.
func SourceAndTarget(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	if err := os.Mkdir(src, testDirPermissions); err != nil {
		t.Fatalf("create source dir: %v", err)
	}
	return src, filepath.Join(root, "out")
}

// WriteFiles writes name → content pairs into dir.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), testFilePermissions); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// ListDir returns the sorted entry names of dir, or nil when dir does not exist.
func ListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		t.Fatalf("list %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// ReadFile returns the content of path as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	// #nosec G304 -- test helper, paths are controlled by test code
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// Snapshot maps every regular file name in dir to its content.
func Snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	for _, name := range ListDir(t, dir) {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			out[name] = ReadFile(t, path)
		}
	}
	return out
}
