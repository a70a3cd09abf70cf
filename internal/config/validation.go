package config

import (
	"fmt"
	"net/url"
	"slices"

	"golang.org/x/text/encoding/htmlindex"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// SupportedMarkupExtensions are the extensions a markup converter exists for.
var SupportedMarkupExtensions = []string{".rst", ".md", ".markdown"}

// Validate checks a defaulted configuration for values the renderer cannot honor.
func Validate(cfg *Config) error {
	if !cfg.Feed.Disabled {
		u, err := url.Parse(cfg.Feed.URI)
		if err != nil {
			return serrors.ValidationFailed("feed.uri", err.Error())
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return serrors.ValidationFailed("feed.uri", fmt.Sprintf("unsupported URL scheme: %q", u.Scheme))
		}
	}

	if cfg.Render.HeadingLevel < 1 || cfg.Render.HeadingLevel > 6 {
		return serrors.ValidationFailed("render.heading_level", fmt.Sprintf("must be between 1 and 6, got %d", cfg.Render.HeadingLevel))
	}

	if _, err := htmlindex.Get(cfg.Render.Encoding); err != nil {
		return serrors.ValidationFailed("render.encoding", fmt.Sprintf("unknown encoding %q", cfg.Render.Encoding))
	}

	for _, ext := range cfg.Render.MarkupExtensions {
		if !slices.Contains(SupportedMarkupExtensions, ext) {
			return serrors.ValidationFailed("render.markup_extensions", fmt.Sprintf("no converter for %q", ext))
		}
	}

	if cfg.Watch.Interval < 0 {
		return serrors.ValidationFailed("watch.interval", "must not be negative")
	}
	return nil
}
