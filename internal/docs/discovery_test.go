package docs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/sitegen/internal/docs/errors"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
}

func TestClassify(t *testing.T) {
	d := NewDiscovery([]string{".rst"})

	tests := []struct {
		name  string
		isDir bool
		want  Kind
	}{
		{"index.html", false, KindTemplate},
		{"INDEX.HTML", false, KindExcluded},
		{"X.HTML", false, KindExcluded},
		{"Y.RST", false, KindExcluded},
		{"page.Html", false, KindExcluded},
		{"news.rst", false, KindMarkup},
		{"_layout.html", false, KindExcluded},
		{"_notes.rst", false, KindExcluded},
		{"readme.md", false, KindExcluded},
		{"style.css", false, KindExcluded},
		{"Makefile", false, KindExcluded},
		{"img.html", true, KindExcluded},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, d.Classify(tc.name, tc.isDir))
		})
	}
}

func TestClassify_ExtraMarkup(t *testing.T) {
	d := NewDiscovery([]string{".rst", ".md"})
	require.Equal(t, KindMarkup, d.Classify("readme.md", false))
	require.Equal(t, KindExcluded, d.Classify("README.MD", false))
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"index.html":    "index",
		"about.rst":     "About\n=====\n",
		"_layout.html":  "layout",
		"_partial.html": "partial",
		"logo.png":      "png",
		"notes.txt":     "txt",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.html"), 0o750))

	files, err := NewDiscovery([]string{".rst"}).Discover(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	require.Equal(t, "about.rst", files[0].Name)
	require.Equal(t, KindMarkup, files[0].Kind)
	require.Equal(t, "about", files[0].Base())
	require.Equal(t, "about.html", files[0].HTMLName())
	require.Equal(t, filepath.Join(dir, "about.rst"), files[0].Path)

	require.Equal(t, "index.html", files[1].Name)
	require.Equal(t, KindTemplate, files[1].Kind)

	counts := GroupByKind(files)
	require.Equal(t, 1, counts[KindMarkup])
	require.Equal(t, 1, counts[KindTemplate])
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := NewDiscovery(nil).Discover(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	require.True(t, errors.Is(err, derrors.ErrSourceDirNotFound))
}

func TestDiscover_NotADir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"file.html": "x"})

	_, err := NewDiscovery(nil).Discover(filepath.Join(dir, "file.html"))
	require.ErrorIs(t, err, derrors.ErrSourceNotDir)
}

func TestCheckIntermediates(t *testing.T) {
	t.Run("no collision", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"a.rst": "A", "b.html": "B"})
		files, err := NewDiscovery([]string{".rst"}).Discover(dir)
		require.NoError(t, err)
		require.NoError(t, CheckIntermediates(dir, files))
	})

	t.Run("existing html sibling", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"foo.rst": "Foo", "foo.html": "checked in"})
		files, err := NewDiscovery([]string{".rst"}).Discover(dir)
		require.NoError(t, err)
		require.ErrorIs(t, CheckIntermediates(dir, files), derrors.ErrIntermediateExists)
	})

	t.Run("two markup sources with one stem", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"foo.rst": "Foo", "foo.md": "# Foo"})
		files, err := NewDiscovery([]string{".rst", ".md"}).Discover(dir)
		require.NoError(t, err)
		require.ErrorIs(t, CheckIntermediates(dir, files), derrors.ErrIntermediateExists)
	})
}

func TestKindString(t *testing.T) {
	require.Equal(t, "template", KindTemplate.String())
	require.Equal(t, "markup", KindMarkup.String())
	require.Equal(t, "excluded", KindExcluded.String())
}
