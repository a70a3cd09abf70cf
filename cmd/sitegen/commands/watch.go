package commands

import (
	"time"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	DirFlags `embed:""`
	Interval time.Duration `help:"Re-render on this interval to refresh the feed (0 disables; default: config watch.interval)"`
	Debounce time.Duration `help:"Quiet period after a change before re-rendering (default: config watch.debounce)"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	req, err := ResolveRequest(w.DirFlags, cfg)
	if err != nil {
		return err
	}

	opts := watch.Options{
		Request:  req,
		Debounce: cfg.Watch.Debounce,
		Interval: cfg.Watch.Interval,
	}
	if w.Interval > 0 {
		opts.Interval = w.Interval
	}
	if w.Debounce > 0 {
		opts.Debounce = w.Debounce
	}

	svc, reg := newService(cfg, w.Offline)
	opts.OnResult = func(*build.Result, error) { writeMetrics(cfg, reg) }

	watcher, err := watch.New(svc, opts)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return watcher.Run(ctx)
}
