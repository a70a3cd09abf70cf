package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// FileAssertions provides chainable assertions on the files of one directory.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a new file assertions helper.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{
		t:       t,
		baseDir: baseDir,
	}
}

// AssertFileExists validates that a file exists.
func (fa *FileAssertions) AssertFileExists(name string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, name)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	}
	return fa
}

// AssertFileNotExists validates that a file does not exist.
func (fa *FileAssertions) AssertFileNotExists(name string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, name)
	if _, err := os.Stat(fullPath); err == nil {
		fa.t.Errorf("Expected file to not exist: %s", fullPath)
	}
	return fa
}

// AssertFileContains validates that a file contains expected content.
func (fa *FileAssertions) AssertFileContains(name, expected string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, name)

	// #nosec G304 - test helper, paths are controlled by test code
	content, err := os.ReadFile(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", fullPath, err)
		return fa
	}
	if !strings.Contains(string(content), expected) {
		fa.t.Errorf("Expected file %s to contain %q\nActual content:\n%s", name, expected, string(content))
	}
	return fa
}

// AssertFileEquals validates the exact content of a file.
func (fa *FileAssertions) AssertFileEquals(name, expected string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, name)

	// #nosec G304 - test helper, paths are controlled by test code
	content, err := os.ReadFile(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to read file %s: %v", fullPath, err)
		return fa
	}
	if string(content) != expected {
		fa.t.Errorf("File %s:\nwant %q\n got %q", name, expected, string(content))
	}
	return fa
}

// AssertEntries validates that the directory holds exactly the given names.
func (fa *FileAssertions) AssertEntries(names ...string) *FileAssertions {
	fa.t.Helper()
	got := ListDir(fa.t, fa.baseDir)
	want := slices.Clone(names)
	slices.Sort(want)
	if len(want) == 0 && len(got) == 0 {
		return fa
	}
	if !slices.Equal(got, want) {
		fa.t.Errorf("Directory %s:\nwant %v\n got %v", fa.baseDir, want, got)
	}
	return fa
}
