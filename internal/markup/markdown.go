package markup

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown converts CommonMark (plus GFM tables and strikethrough). The
// title and heading rules are the same as for reStructuredText, except that
// a `title` in a leading YAML frontmatter block replaces title promotion.
type Markdown struct {
	HeadingLevel int
	md           goldmark.Markdown
}

// NewMarkdown creates a Markdown converter.
func NewMarkdown(headingLevel int) *Markdown {
	return &Markdown{
		HeadingLevel: headingLevel,
		md:           goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)),
	}
}

// Convert renders src to HTML and splits off the document title.
func (m *Markdown) Convert(src []byte) (*Document, error) {
	src, err := normalizeSource(src)
	if err != nil {
		return nil, err
	}

	meta, src, err := splitFrontmatter(src)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := m.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	level := m.HeadingLevel
	if level < 1 {
		level = 2
	}
	if meta.Title == "" {
		return extractDocument(buf.Bytes(), level)
	}

	doc, err := splitDocument(buf.Bytes(), level, false)
	if err != nil {
		return nil, err
	}
	doc.Title = collapseSpace(meta.Title)
	return doc, nil
}
