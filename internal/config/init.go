package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Site: SiteConfig{
			SourceDir: "./src",
			TargetDir: ".",
		},
		Feed: FeedConfig{
			URI:     DefaultFeedURI,
			Timeout: DefaultFeedTimeout,
		},
		Render: RenderConfig{
			Encoding:         DefaultEncoding,
			HeadingLevel:     DefaultHeadingLevel,
			Layout:           DefaultLayout,
			MarkupExtensions: DefaultMarkupExtensions,
		},
		Watch: WatchConfig{
			Debounce: DefaultWatchDebounce,
			Interval: 30 * time.Minute,
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
