package templates

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Encode converts rendered text to the named encoding. Characters the
// encoding cannot represent become numeric character references.
func Encode(text, encodingName string) ([]byte, error) {
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", encodingName, err)
	}

	out, err := encoding.HTMLEscapeUnsupported(enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode as %s: %w", encodingName, err)
	}
	return out, nil
}
