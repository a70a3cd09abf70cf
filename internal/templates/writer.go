package templates

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteRenderedFile writes data to targetDir/name, creating targetDir when
// missing. Existing output is replaced so repeated runs converge on the
// same tree. name must stay inside targetDir.
func WriteRenderedFile(targetDir, name string, data []byte) (string, error) {
	if targetDir == "" {
		return "", errors.New("target directory is required")
	}
	if name == "" {
		return "", errors.New("output name is required")
	}

	cleanRel := filepath.Clean(name)
	if filepath.IsAbs(cleanRel) || cleanRel == ".." || strings.HasPrefix(cleanRel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output path must be relative to target: %s", name)
	}

	fullPath := filepath.Join(targetDir, cleanRel)
	rel, err := filepath.Rel(targetDir, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("output path escapes target directory: %s", name)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	// #nosec G306 -- rendered pages are meant to be world readable.
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write output file: %w", err)
	}
	return fullPath, nil
}
