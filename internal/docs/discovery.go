// Package docs discovers and classifies the source files of a site.
//
// A source directory is listed non-recursively. Every entry is classified as
// a template (rendered directly), a markup source (converted to an
// intermediate HTML template first) or excluded. Names starting with an
// underscore are partials: never rendered on their own but still loadable by
// name from other templates.
package docs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	derrors "git.home.luguber.info/inful/sitegen/internal/docs/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// TemplateExt is the extension of directly rendered templates and of every output file.
const TemplateExt = ".html"

// Kind classifies a source directory entry.
type Kind int

const (
	KindExcluded Kind = iota
	KindTemplate
	KindMarkup
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindMarkup:
		return "markup"
	default:
		return "excluded"
	}
}

// SourceFile is an eligible entry of the source directory.
type SourceFile struct {
	Name      string // File name within the source directory
	Path      string // Absolute (or source-dir joined) path
	Extension string // Extension including the dot, as matched
	Kind      Kind
}

// Base returns the file name without extension.
func (f SourceFile) Base() string {
	return strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
}

// HTMLName returns the name of the template the file renders through, which
// is also the output file name.
func (f SourceFile) HTMLName() string {
	return f.Base() + TemplateExt
}

// Discovery classifies source directory entries.
type Discovery struct {
	markupExts []string
}

// NewDiscovery creates a discovery that treats markupExts (e.g. ".rst") as
// markup sources in addition to ".html" templates.
func NewDiscovery(markupExts []string) *Discovery {
	return &Discovery{markupExts: slices.Clone(markupExts)}
}

// Classify returns the kind of a directory entry by name. Extensions match
// case-sensitively, so "NOTES.HTML" is excluded.
func (d *Discovery) Classify(name string, isDir bool) Kind {
	if isDir || strings.HasPrefix(name, "_") {
		return KindExcluded
	}
	ext := filepath.Ext(name)
	switch {
	case ext == TemplateExt:
		return KindTemplate
	case slices.Contains(d.markupExts, ext):
		return KindMarkup
	default:
		return KindExcluded
	}
}

// Discover lists sourceDir and returns the eligible files sorted by name.
func (d *Discovery) Discover(sourceDir string) ([]SourceFile, error) {
	info, err := os.Stat(sourceDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", derrors.ErrSourceDirNotFound, sourceDir)
		}
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrSourceDirReadFailed, sourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", derrors.ErrSourceNotDir, sourceDir)
	}

	// os.ReadDir sorts by file name.
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrSourceDirReadFailed, sourceDir, err)
	}

	files := make([]SourceFile, 0, len(entries))
	for _, entry := range entries {
		kind := d.Classify(entry.Name(), entry.IsDir())
		if kind == KindExcluded {
			slog.Debug("Skipping source entry", logfields.File(entry.Name()))
			continue
		}
		files = append(files, SourceFile{
			Name:      entry.Name(),
			Path:      filepath.Join(sourceDir, entry.Name()),
			Extension: filepath.Ext(entry.Name()),
			Kind:      kind,
		})
	}
	return files, nil
}

// CheckIntermediates verifies that no markup source would write its
// intermediate HTML over a file that already exists in sourceDir.
func CheckIntermediates(sourceDir string, files []SourceFile) error {
	claimed := make(map[string]string)
	for _, f := range files {
		if f.Kind != KindMarkup {
			continue
		}
		if other, ok := claimed[f.HTMLName()]; ok {
			return fmt.Errorf("%w: %s (from %s and %s)", derrors.ErrIntermediateExists, f.HTMLName(), other, f.Name)
		}
		claimed[f.HTMLName()] = f.Name

		target := filepath.Join(sourceDir, f.HTMLName())
		_, err := os.Lstat(target)
		if err == nil {
			return fmt.Errorf("%w: %s (from %s)", derrors.ErrIntermediateExists, target, f.Name)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", derrors.ErrSourceDirReadFailed, target, err)
		}
	}
	return nil
}

// GroupByKind counts files per kind, used for run summaries.
func GroupByKind(files []SourceFile) map[Kind]int {
	counts := make(map[Kind]int)
	for _, f := range files {
		counts[f.Kind]++
	}
	return counts
}
