package config

import (
	"strings"
	"time"
)

// Defaults for the observed behavior of the original build script.
const (
	DefaultFeedURI       = "http://blog.incubaid.com/category/arakoon/feed/"
	DefaultFeedTimeout   = 10 * time.Second
	DefaultFeedMaxBytes  = 5 * 1024 * 1024
	DefaultEncoding      = "utf-8"
	DefaultHeadingLevel  = 2
	DefaultLayout        = "_base.html"
	DefaultContextKey    = "feed"
	DefaultWatchDebounce = 500 * time.Millisecond
)

// DefaultMarkupExtensions lists the markup sources recognized out of the box.
var DefaultMarkupExtensions = []string{".rst"}

func applyDefaults(cfg *Config) {
	if cfg.Feed.URI == "" && !cfg.Feed.Disabled {
		cfg.Feed.URI = DefaultFeedURI
	}
	if cfg.Feed.Timeout <= 0 {
		cfg.Feed.Timeout = DefaultFeedTimeout
	}
	if cfg.Feed.MaxBytes <= 0 {
		cfg.Feed.MaxBytes = DefaultFeedMaxBytes
	}

	if strings.TrimSpace(cfg.Render.Encoding) == "" {
		cfg.Render.Encoding = DefaultEncoding
	}
	if cfg.Render.HeadingLevel == 0 {
		cfg.Render.HeadingLevel = DefaultHeadingLevel
	}
	if cfg.Render.Layout == "" {
		cfg.Render.Layout = DefaultLayout
	}
	if cfg.Render.ContextKey == "" {
		cfg.Render.ContextKey = DefaultContextKey
	}
	if len(cfg.Render.MarkupExtensions) == 0 {
		cfg.Render.MarkupExtensions = append([]string(nil), DefaultMarkupExtensions...)
	}
	for i, ext := range cfg.Render.MarkupExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Render.MarkupExtensions[i] = ext
	}

	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
}
