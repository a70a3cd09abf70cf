// Package watch keeps a rendered site current: it renders once, re-renders
// when the source directory changes and, optionally, on a fixed interval so
// the feed stays fresh.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

const defaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	Request build.Request

	// Debounce is the quiet window after the last change before rendering.
	Debounce time.Duration

	// Interval re-renders periodically when > 0.
	Interval time.Duration

	// OnResult is called after every render, successful or not.
	OnResult func(*build.Result, error)
}

// Watcher serializes renders triggered by file changes and the interval job.
type Watcher struct {
	svc  build.Service
	opts Options

	// renderMu is held for the duration of a render and guards the own-file
	// sets of the last two renders.
	renderMu     sync.Mutex
	ownFiles     map[string]struct{}
	prevOwnFiles map[string]struct{}

	readyOnce sync.Once
	ready     chan struct{}
}

// New creates a watcher for svc.
func New(svc build.Service, opts Options) (*Watcher, error) {
	if svc == nil {
		return nil, errors.New("watch: render service is required")
	}
	if opts.Request.SourceDir == "" {
		return nil, errors.New("watch: source directory is required")
	}
	abs, err := filepath.Abs(opts.Request.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve source directory: %w", err)
	}
	opts.Request.SourceDir = abs
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	return &Watcher{
		svc:          svc,
		opts:         opts,
		ownFiles:     map[string]struct{}{},
		prevOwnFiles: map[string]struct{}{},
		ready:        make(chan struct{}),
	}, nil
}

// Ready is closed once the initial render is done and the source directory
// is being watched.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// RenderNow runs one render, waiting for any render in progress to finish.
func (w *Watcher) RenderNow(ctx context.Context, reason string) (*build.Result, error) {
	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	slog.Info("Rendering site", slog.String("reason", reason), logfields.Path(w.opts.Request.SourceDir))
	res, err := w.svc.Run(ctx, w.opts.Request)
	if res != nil {
		w.rememberOwnFiles(res)
	}
	if err != nil {
		slog.Error("Render failed", slog.String("reason", reason), logfields.Error(err))
	}
	if w.opts.OnResult != nil {
		w.opts.OnResult(res, err)
	}
	return res, err
}

// Run renders once and then keeps watching until ctx is cancelled. Failed
// renders are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		_ = fw.Close()
	}()

	if err := fw.Add(w.opts.Request.SourceDir); err != nil {
		return fmt.Errorf("failed to watch source directory %s: %w", w.opts.Request.SourceDir, err)
	}

	_, _ = w.RenderNow(ctx, "startup")

	if w.opts.Interval > 0 {
		stop, err := w.startScheduler(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	slog.Info("Watching source directory",
		logfields.Path(w.opts.Request.SourceDir),
		slog.Duration("debounce", w.opts.Debounce),
		slog.Duration("interval", w.opts.Interval))
	w.readyOnce.Do(func() { close(w.ready) })

	return w.loop(ctx, fw)
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher) error {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var timerC <-chan time.Time
	var lastChange string

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("Source change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
			lastChange = filepath.Base(event.Name)
			if timerC != nil && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.opts.Debounce)
			timerC = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", logfields.Error(err))

		case <-timerC:
			timerC = nil
			_, _ = w.RenderNow(ctx, "change: "+lastChange)
		}
	}
}

// relevant reports whether event should trigger a render. Events caused by
// the renderer itself are dropped. Taking the render lock makes sure the
// files of an in-flight render are known before deciding.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}

	w.renderMu.Lock()
	defer w.renderMu.Unlock()

	name := filepath.Clean(event.Name)
	_, own := w.ownFiles[name]
	_, ownBefore := w.prevOwnFiles[name]
	return !own && !ownBefore
}

// rememberOwnFiles records the files a render wrote. Callers hold renderMu.
func (w *Watcher) rememberOwnFiles(res *build.Result) {
	files := make(map[string]struct{}, len(res.Intermediates)+len(res.Outputs))
	for _, name := range res.Intermediates {
		files[filepath.Join(w.opts.Request.SourceDir, name)] = struct{}{}
	}
	for _, out := range res.Outputs {
		if abs, err := filepath.Abs(out); err == nil {
			files[abs] = struct{}{}
		}
	}
	w.prevOwnFiles = w.ownFiles
	w.ownFiles = files
}

// startScheduler registers the periodic render and returns its shutdown func.
func (w *Watcher) startScheduler(ctx context.Context) (func(), error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(w.opts.Interval),
		gocron.NewTask(func() {
			_, _ = w.RenderNow(ctx, "interval")
		}),
		gocron.WithName("periodic-render"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create periodic render job: %w", err)
	}

	s.Start()
	return func() {
		if err := s.Shutdown(); err != nil {
			slog.Warn("Scheduler shutdown failed", logfields.Error(err))
		}
	}, nil
}
