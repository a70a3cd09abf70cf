package markup

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var headingAtoms = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

// headingLevel returns 1..6 for h1..h6 element nodes and 0 otherwise.
func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	for i, a := range headingAtoms {
		if n.DataAtom == a {
			return i + 1
		}
	}
	return 0
}

// extractDocument splits a converted HTML fragment into title and body.
//
// A heading is promoted to the document title when it is the first element
// of the fragment and the only heading at the top-most level present. The
// remaining headings are shifted so that the top-most remaining level is
// rendered as <h{initialLevel}>.
func extractDocument(fragment []byte, initialLevel int) (*Document, error) {
	return splitDocument(fragment, initialLevel, true)
}

// splitDocument is extractDocument with title promotion optional. With
// promote false every heading stays in the body.
func splitDocument(fragment []byte, initialLevel int, promote bool) (*Document, error) {
	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(bytes.NewReader(fragment), parent)
	if err != nil {
		return nil, fmt.Errorf("parse converted fragment: %w", err)
	}

	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		root.AppendChild(n)
	}

	var headings []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if headingLevel(n) > 0 {
			headings = append(headings, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	doc := &Document{}
	if title := promotableTitle(root, headings); promote && title != nil {
		doc.Title = collapseSpace(textContent(title))
		root.RemoveChild(title)
		headings = headings[1:]
	}

	shiftHeadings(headings, initialLevel)

	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return nil, fmt.Errorf("render converted fragment: %w", err)
		}
	}
	doc.Body = strings.TrimSpace(buf.String())
	return doc, nil
}

func promotableTitle(root *html.Node, headings []*html.Node) *html.Node {
	if len(headings) == 0 {
		return nil
	}
	first := firstElement(root)
	if first == nil || first != headings[0] {
		return nil
	}

	top := minLevel(headings)
	if headingLevel(first) != top {
		return nil
	}
	for _, h := range headings[1:] {
		if headingLevel(h) == top {
			return nil
		}
	}
	return first
}

func firstElement(root *html.Node) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			return c
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return nil
			}
		}
	}
	return nil
}

func minLevel(headings []*html.Node) int {
	top := 7
	for _, h := range headings {
		if l := headingLevel(h); l < top {
			top = l
		}
	}
	return top
}

func shiftHeadings(headings []*html.Node, initialLevel int) {
	if len(headings) == 0 {
		return
	}
	shift := initialLevel - minLevel(headings)
	for _, h := range headings {
		l := headingLevel(h) + shift
		if l < 1 {
			l = 1
		}
		if l > 6 {
			l = 6
		}
		h.DataAtom = headingAtoms[l-1]
		h.Data = h.DataAtom.String()
	}
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
