// Package markup converts lightweight markup sources into HTML fragments and
// wraps them in a template that extends the site layout.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrInvalidSource marks input the converters refuse to parse.
var ErrInvalidSource = errors.New("invalid markup source")

// Document is the result of converting one markup source.
type Document struct {
	Title string // Plain-text document title; empty when the source has none
	Body  string // HTML fragment without the title heading
}

// Converter turns markup source bytes into a Document.
type Converter interface {
	Convert(src []byte) (*Document, error)
}

// ForExtension returns the converter for a markup file extension.
func ForExtension(ext string, headingLevel int) (Converter, error) {
	switch strings.ToLower(ext) {
	case ".rst":
		return NewRST(headingLevel), nil
	case ".md", ".markdown":
		return NewMarkdown(headingLevel), nil
	default:
		return nil, fmt.Errorf("no markup converter for extension %q", ext)
	}
}

// ConvertFile reads inPath, converts it and writes the wrapper template to w.
func ConvertFile(conv Converter, inPath string, w io.Writer, layout string) (*Document, error) {
	// #nosec G304 -- inPath comes from the discovered source directory listing.
	src, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("read markup source: %w", err)
	}

	doc, err := conv.Convert(src)
	if err != nil {
		return nil, err
	}

	if err := WriteTemplate(w, doc, layout); err != nil {
		return nil, err
	}
	return doc, nil
}

// WriteTemplate writes doc as a template extending layout, filling the
// `title` and `main` blocks. The body is inserted verbatim; the title is
// HTML-escaped plain text.
func WriteTemplate(w io.Writer, doc *Document, layout string) error {
	if layout == "" || strings.ContainsAny(layout, "\"\\\n") {
		return fmt.Errorf("invalid layout name %q", layout)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "{%% extends \"%s\" %%}\n", layout)
	fmt.Fprintf(&buf, "{%% block title %%}%s{%% endblock %%}\n", html.EscapeString(doc.Title))
	fmt.Fprintf(&buf, "{%% block main %%}%s{%% endblock %%}\n", doc.Body)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write intermediate template: %w", err)
	}
	return nil
}

// normalizeSource rejects binary input and normalizes line endings.
func normalizeSource(src []byte) ([]byte, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrInvalidSource)
	}
	if i := bytes.IndexByte(src, 0); i >= 0 {
		return nil, fmt.Errorf("%w: NUL byte at offset %d", ErrInvalidSource, i)
	}
	src = bytes.TrimPrefix(src, []byte("\xef\xbb\xbf"))
	src = bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	return src, nil
}
