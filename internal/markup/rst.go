package markup

import (
	"bufio"
	"bytes"
	"fmt"

	gorst "github.com/hhatto/gorst"
)

// RST converts reStructuredText. HeadingLevel mirrors docutils'
// initial_header_level: the first section level below the title is rendered
// as <h{HeadingLevel}>.
type RST struct {
	HeadingLevel int
}

// NewRST creates a reStructuredText converter.
func NewRST(headingLevel int) *RST {
	return &RST{HeadingLevel: headingLevel}
}

// Convert renders src to HTML and splits off the document title.
func (r *RST) Convert(src []byte) (*Document, error) {
	src, err := normalizeSource(src)
	if err != nil {
		return nil, err
	}

	p := gorst.NewParser(nil)
	var b bytes.Buffer
	w := bufio.NewWriter(&b)
	p.ReStructuredText(bytes.NewReader(src), gorst.ToHTML(w))
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("render reStructuredText: %w", err)
	}

	return extractDocument(b.Bytes(), r.level())
}

func (r *RST) level() int {
	if r.HeadingLevel < 1 {
		return 2
	}
	return r.HeadingLevel
}
