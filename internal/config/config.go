package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
)

// Config represents the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Feed    FeedConfig    `yaml:"feed"`
	Render  RenderConfig  `yaml:"render"`
	Watch   WatchConfig   `yaml:"watch,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// SiteConfig locates the source and target directories. Empty values are
// resolved by the CLI relative to the executable.
type SiteConfig struct {
	SourceDir string `yaml:"source_dir,omitempty"`
	TargetDir string `yaml:"target_dir,omitempty"`
}

// FeedConfig controls the single feed fetch performed per run.
type FeedConfig struct {
	URI      string        `yaml:"uri"`
	Disabled bool          `yaml:"disabled,omitempty"`
	Timeout  time.Duration `yaml:"timeout,omitempty"`
	MaxBytes int64         `yaml:"max_bytes,omitempty"`
}

// RenderConfig holds the options the renderer and markup converter honor.
type RenderConfig struct {
	Encoding         string   `yaml:"encoding"`
	HeadingLevel     int      `yaml:"heading_level"`
	Layout           string   `yaml:"layout"`
	ContextKey       string   `yaml:"context_key,omitempty"`
	MarkupExtensions []string `yaml:"markup_extensions,omitempty"`
}

// WatchConfig configures `sitegen watch`.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	Interval time.Duration `yaml:"interval,omitempty"` // periodic re-render; 0 disables
}

// MetricsConfig configures the optional Prometheus textfile dump.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// LoggingConfig configures log verbosity.
type LoggingConfig struct {
	Level LogLevel `yaml:"level,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from the specified file. An empty path yields
// the defaults (after .env loading and environment overrides).
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if configPath == "" {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, serrors.ConfigNotFound(configPath)
	}

	// #nosec G304 -- configPath is supplied by the operator.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, serrors.ConfigInvalid(configPath, fmt.Errorf("read config file: %w", err))
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, serrors.ConfigInvalid(configPath, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration, expanding environment variables first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
