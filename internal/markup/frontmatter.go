package markup

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// frontmatter holds the YAML keys a Markdown source may set. Unknown keys
// are ignored.
type frontmatter struct {
	Title string `yaml:"title"`
}

var (
	frontmatterOpen  = []byte("---\n")
	frontmatterClose = []byte("\n---\n")
)

// splitFrontmatter separates a `---` delimited YAML block at the very start
// of src from the body. src must already be normalized to LF line endings.
// Without a leading delimiter the whole input is the body.
func splitFrontmatter(src []byte) (frontmatter, []byte, error) {
	var meta frontmatter
	if !bytes.HasPrefix(src, frontmatterOpen) {
		return meta, src, nil
	}

	rest := src[len(frontmatterOpen):]
	if bytes.HasPrefix(rest, frontmatterOpen) {
		return meta, rest[len(frontmatterOpen):], nil
	}

	idx := bytes.Index(rest, frontmatterClose)
	var raw, body []byte
	switch {
	case idx >= 0:
		raw, body = rest[:idx+1], rest[idx+len(frontmatterClose):]
	case bytes.HasSuffix(rest, frontmatterClose[:len(frontmatterClose)-1]):
		// closing delimiter on the last line without a trailing newline
		raw, body = rest[:len(rest)-len("---")], nil
	default:
		return meta, nil, fmt.Errorf("%w: frontmatter closing delimiter is missing", ErrInvalidSource)
	}

	if err := yaml.Unmarshal(raw, &meta); err != nil {
		return meta, nil, fmt.Errorf("%w: frontmatter: %w", ErrInvalidSource, err)
	}
	return meta, body, nil
}
