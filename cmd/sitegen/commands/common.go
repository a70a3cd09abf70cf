// Package commands implements the sitegen command line.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/config"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/feed"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// DefaultConfigFile is used by `init` when no --config is given.
const DefaultConfigFile = "sitegen.yaml"

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render RenderCmd `cmd:"" default:"withargs" help:"Render the site once (default command)"`
	Watch  WatchCmd  `cmd:"" help:"Render, then re-render on source changes and on an interval"`
	Init   InitCmd   `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once. SITEGEN_LOG_LEVEL
// applies until a configuration file says otherwise.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	setupLogging(config.NormalizeLogLevel(os.Getenv(config.EnvLogLevel)), c.Verbose)
	return nil
}

func setupLogging(level config.LogLevel, verbose bool) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level.SlogLevel(verbose)}))
	slog.SetDefault(logger)
	return logger
}

// ExitCode reports err through the CLI error adapter and returns the
// process exit status.
func ExitCode(err error, verbose bool) int {
	return serrors.NewCLIErrorAdapter(verbose, slog.Default()).HandleError(err)
}

// loadConfig loads the optional configuration file and re-applies the log
// level it configures.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if g != nil {
		g.Logger = setupLogging(cfg.Logging.Level, root.Verbose)
	}
	return cfg, nil
}

// executablePath is replaced in tests.
var executablePath = os.Executable

// DirFlags are shared by the commands that render.
type DirFlags struct {
	Source  string `short:"s" help:"Source directory (default: config site.source_dir, else the executable's directory)"`
	Target  string `short:"t" help:"Target directory (default: config site.target_dir, else the parent of the source directory)"`
	Offline bool   `help:"Do not fetch the feed; templates see an empty feed"`
}

// ResolveRequest determines the source and target directories.
// Priority: CLI flag > config > location of the executable.
func ResolveRequest(flags DirFlags, cfg *config.Config) (build.Request, error) {
	source := flags.Source
	if source == "" {
		source = cfg.Site.SourceDir
	}
	if source == "" {
		exe, err := executablePath()
		if err != nil {
			return build.Request{}, serrors.Wrap(err, serrors.CategoryRuntime, serrors.SeverityFatal, "cannot locate executable")
		}
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		source = filepath.Dir(exe)
	}
	source, err := filepath.Abs(source)
	if err != nil {
		return build.Request{}, serrors.Wrap(err, serrors.CategoryValidation, serrors.SeverityFatal, "invalid source directory")
	}

	target := flags.Target
	if target == "" {
		target = cfg.Site.TargetDir
	}
	if target == "" {
		target = filepath.Dir(source)
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return build.Request{}, serrors.Wrap(err, serrors.CategoryValidation, serrors.SeverityFatal, "invalid target directory")
	}

	return build.Request{SourceDir: source, TargetDir: target}, nil
}

// newService wires the render service for cfg. The returned registry is
// nil unless a metrics textfile is configured.
func newService(cfg *config.Config, offline bool) (*build.DefaultService, *prom.Registry) {
	svc := build.NewService(cfg)
	if offline {
		slog.Warn("Offline mode: feed will not be fetched", logfields.URL(cfg.Feed.URI))
		svc.WithFetcher(feed.Static{})
	}

	if cfg.Metrics.Textfile == "" {
		return svc, nil
	}
	reg := prom.NewRegistry()
	svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
	return svc, reg
}

func writeMetrics(cfg *config.Config, reg *prom.Registry) {
	if reg == nil {
		return
	}
	if err := metrics.WriteTextfile(cfg.Metrics.Textfile, reg); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(cfg.Metrics.Textfile), logfields.Error(err))
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func summary(res *build.Result) string {
	return fmt.Sprintf("Rendered %d page(s) (%d template, %d markup) into %s in %s",
		res.FilesRendered(), res.TemplatesRendered, res.MarkupRendered, res.TargetDir, res.Duration.Round(time.Millisecond))
}
