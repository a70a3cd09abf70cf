package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/build"
	"git.home.luguber.info/inful/sitegen/internal/feed"
	"git.home.luguber.info/inful/sitegen/internal/markup"
	"git.home.luguber.info/inful/sitegen/internal/testutil"
)

// fakeService counts renders and, like the real pipeline, creates and
// removes an intermediate file in the source directory on every run.
type fakeService struct {
	intermediate string
	delay        time.Duration

	runs     atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
}

func (f *fakeService) Run(_ context.Context, req build.Request) (*build.Result, error) {
	if f.inFlight.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inFlight.Add(-1)
	f.runs.Add(1)

	res := &build.Result{Status: build.StatusSuccess, SourceDir: req.SourceDir}
	if f.intermediate != "" {
		path := filepath.Join(req.SourceDir, f.intermediate)
		if err := os.WriteFile(path, []byte("generated"), 0o600); err != nil {
			return nil, err
		}
		res.Intermediates = append(res.Intermediates, f.intermediate)
		defer func() { _ = os.Remove(path) }()
	}
	time.Sleep(f.delay)
	return res, nil
}

func startWatcher(t *testing.T, svc build.Service, opts Options) (*Watcher, context.CancelFunc, <-chan error) {
	t.Helper()
	w, err := New(svc, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("timed out waiting for watcher ready")
	}
	return w, cancel, done
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, Options{Request: build.Request{SourceDir: t.TempDir()}})
	require.Error(t, err)

	_, err = New(&fakeService{}, Options{})
	require.Error(t, err)

	w, err := New(&fakeService{}, Options{Request: build.Request{SourceDir: "."}})
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(w.opts.Request.SourceDir))
	require.Equal(t, defaultDebounce, w.opts.Debounce)
}

func TestRun_InitialRenderAndStop(t *testing.T) {
	svc := &fakeService{}
	var results atomic.Int32
	_, cancel, done := startWatcher(t, svc, Options{
		Request:  build.Request{SourceDir: t.TempDir(), TargetDir: t.TempDir()},
		Debounce: 20 * time.Millisecond,
		OnResult: func(*build.Result, error) { results.Add(1) },
	})

	require.Equal(t, int32(1), svc.runs.Load())
	require.Equal(t, int32(1), results.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_ChangeBurstCoalesces(t *testing.T) {
	src := t.TempDir()
	svc := &fakeService{}
	_, cancel, _ := startWatcher(t, svc, Options{
		Request:  build.Request{SourceDir: src, TargetDir: t.TempDir()},
		Debounce: 100 * time.Millisecond,
	})
	defer cancel()

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte{byte('a' + i)}, 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return svc.runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)

	// no further render for the same burst
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(2), svc.runs.Load())
}

func TestRun_IgnoresOwnIntermediates(t *testing.T) {
	svc := &fakeService{intermediate: "news.html"}
	_, cancel, _ := startWatcher(t, svc, Options{
		Request:  build.Request{SourceDir: t.TempDir(), TargetDir: t.TempDir()},
		Debounce: 20 * time.Millisecond,
	})
	defer cancel()

	time.Sleep(300 * time.Millisecond)
	require.Equal(t, int32(1), svc.runs.Load())
}

func TestRun_IntervalRenders(t *testing.T) {
	svc := &fakeService{}
	_, cancel, _ := startWatcher(t, svc, Options{
		Request:  build.Request{SourceDir: t.TempDir(), TargetDir: t.TempDir()},
		Debounce: 20 * time.Millisecond,
		Interval: 50 * time.Millisecond,
	})
	defer cancel()

	require.Eventually(t, func() bool { return svc.runs.Load() >= 3 }, 3*time.Second, 10*time.Millisecond)
}

func TestRenderNow_Serialized(t *testing.T) {
	svc := &fakeService{delay: 20 * time.Millisecond}
	w, err := New(svc, Options{Request: build.Request{SourceDir: t.TempDir(), TargetDir: t.TempDir()}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = w.RenderNow(t.Context(), "test")
		}()
	}
	wg.Wait()

	require.Equal(t, int32(4), svc.runs.Load())
	require.False(t, svc.overlap.Load())
}

func TestRun_MissingSourceDir(t *testing.T) {
	w, err := New(&fakeService{}, Options{Request: build.Request{SourceDir: filepath.Join(t.TempDir(), "missing")}})
	require.NoError(t, err)
	require.Error(t, w.Run(t.Context()))
}

type countingService struct {
	build.Service
	runs atomic.Int32
}

func (c *countingService) Run(ctx context.Context, req build.Request) (*build.Result, error) {
	c.runs.Add(1)
	return c.Service.Run(ctx, req)
}

type failingConverter struct{}

func (failingConverter) Convert([]byte) (*markup.Document, error) {
	return nil, errors.New("cannot convert")
}

func TestRun_FailedConversionDoesNotRetrigger(t *testing.T) {
	src, target := testutil.SourceAndTarget(t)
	testutil.WriteFiles(t, src, map[string]string{"bad.rst": "anything"})

	svc := &countingService{Service: build.NewService(nil).
		WithFetcher(feed.Static{}).
		WithConverterFactory(func(string, int) (markup.Converter, error) { return failingConverter{}, nil })}

	var failures atomic.Int32
	_, cancel, _ := startWatcher(t, svc, Options{
		Request:  build.Request{SourceDir: src, TargetDir: target},
		Debounce: 50 * time.Millisecond,
		OnResult: func(_ *build.Result, err error) {
			if err != nil {
				failures.Add(1)
			}
		},
	})
	defer cancel()

	time.Sleep(500 * time.Millisecond)
	require.Equal(t, int32(1), svc.runs.Load())
	require.Equal(t, int32(1), failures.Load())
	require.Equal(t, []string{"bad.rst"}, testutil.ListDir(t, src))
}
