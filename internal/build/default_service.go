package build

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/docs"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/feed"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/markup"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/observability"
	"git.home.luguber.info/inful/sitegen/internal/templates"
	"git.home.luguber.info/inful/sitegen/internal/workspace"
)

const (
	stageFetch    = "fetch"
	stageDiscover = "discover"
	stageRender   = "render"
)

// ConverterFactory returns the markup converter for a source extension.
type ConverterFactory func(ext string, headingLevel int) (markup.Converter, error)

// EngineFactory creates a template engine rooted at the source directory.
// It is called once per run so template caches never outlive a run.
type EngineFactory func(sourceDir string) (templates.Engine, error)

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	cfg              *config.Config
	fetcher          feed.Fetcher
	converterFactory ConverterFactory
	engineFactory    EngineFactory
	recorder         metrics.Recorder
	newBuildID       func() string
}

// NewService creates a DefaultService for cfg with the HTTP feed fetcher,
// the built-in markup converters and the pongo2 engine. A nil cfg means
// config.Default().
func NewService(cfg *config.Config) *DefaultService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &DefaultService{
		cfg:              cfg,
		fetcher:          feed.NewHTTPFetcher(cfg.Feed.Timeout, cfg.Feed.MaxBytes),
		converterFactory: markup.ForExtension,
		engineFactory: func(dir string) (templates.Engine, error) {
			return templates.NewPongo2Engine(dir)
		},
		recorder:   metrics.NoopRecorder{},
		newBuildID: uuid.NewString,
	}
}

// WithFetcher replaces the feed fetcher (offline mode, tests).
func (s *DefaultService) WithFetcher(f feed.Fetcher) *DefaultService {
	s.fetcher = f
	return s
}

// WithConverterFactory replaces the markup converter lookup.
func (s *DefaultService) WithConverterFactory(f ConverterFactory) *DefaultService {
	s.converterFactory = f
	return s
}

// WithEngineFactory replaces the template engine.
func (s *DefaultService) WithEngineFactory(f EngineFactory) *DefaultService {
	s.engineFactory = f
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// Config returns the configuration the service renders with.
func (s *DefaultService) Config() *config.Config {
	return s.cfg
}

// Run executes the complete render pipeline.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	startTime := time.Now()
	result := &Result{
		BuildID:   s.newBuildID(),
		SourceDir: req.SourceDir,
		TargetDir: req.TargetDir,
		StartTime: startTime,
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	finish := func(status Status, err error) (*Result, error) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		s.recorder.ObserveBuildDuration(result.Duration)
		switch status {
		case StatusSuccess:
			s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
			observability.InfoContext(ctx, "Render complete",
				logfields.Count(result.FilesRendered()),
				logfields.DurationMS(float64(result.Duration.Milliseconds())))
		case StatusCancelled:
			s.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
			observability.InfoContext(ctx, "Render cancelled", logfields.Error(err))
		default:
			// callers report the error itself
			s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
			observability.DebugContext(ctx, "Render failed", logfields.Error(err))
		}
		return result, err
	}

	if req.SourceDir == "" {
		return finish(StatusFailed, serrors.ValidationFailed("source_dir", "source directory is required"))
	}
	if req.TargetDir == "" {
		return finish(StatusFailed, serrors.ValidationFailed("target_dir", "target directory is required"))
	}

	// Stage 1: fetch the feed once for the whole run
	ctx, span := observability.StartStage(ctx, stageFetch)
	base, err := s.baseContext(ctx, result)
	if err != nil {
		span.End(err)
		s.recorder.IncStageResult(stageFetch, metrics.ResultFatal)
		return finish(statusFor(ctx), err)
	}
	s.recorder.ObserveStageDuration(stageFetch, span.End(nil))

	// Stage 2: list the source directory and check intermediates up front
	ctx, span = observability.StartStage(ctx, stageDiscover)
	files, err := docs.NewDiscovery(s.cfg.Render.MarkupExtensions).Discover(req.SourceDir)
	if err == nil {
		err = docs.CheckIntermediates(req.SourceDir, files)
	}
	if err != nil {
		span.End(err)
		s.recorder.IncStageResult(stageDiscover, metrics.ResultFatal)
		return finish(StatusFailed, classifyDiscoveryError(req.SourceDir, err))
	}
	counts := docs.GroupByKind(files)
	observability.InfoContext(ctx, "Discovered source files",
		logfields.Path(req.SourceDir),
		slog.Int("templates", counts[docs.KindTemplate]),
		slog.Int("markup", counts[docs.KindMarkup]))
	s.recorder.ObserveStageDuration(stageDiscover, span.End(nil))
	s.recorder.IncStageResult(stageDiscover, metrics.ResultSuccess)

	// Stage 3: render every eligible file in name order
	ctx, span = observability.StartStage(ctx, stageRender)
	engine, err := s.engineFactory(req.SourceDir)
	if err != nil {
		span.End(err)
		s.recorder.IncStageResult(stageRender, metrics.ResultFatal)
		return finish(StatusFailed, serrors.Wrap(err, serrors.CategoryTemplate, serrors.SeverityFatal, "template engine unavailable").
			WithContext("dir", req.SourceDir))
	}

	guard := workspace.NewGuard(req.SourceDir)
	defer func() {
		if cerr := guard.Cleanup(); cerr != nil {
			observability.WarnContext(ctx, "Failed to clean up intermediate files", logfields.Error(cerr))
		}
	}()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			span.End(err)
			s.recorder.IncStageResult(stageRender, metrics.ResultCanceled)
			return finish(StatusCancelled, serrors.Wrap(err, serrors.CategoryRuntime, serrors.SeverityFatal, "render cancelled"))
		}

		out, err := s.renderFile(observability.WithFile(ctx, f.Name), engine, guard, f, base, req.TargetDir, result)
		if err != nil {
			span.End(err)
			s.recorder.IncStageResult(stageRender, metrics.ResultFatal)
			return finish(StatusFailed, err)
		}
		result.Outputs = append(result.Outputs, out)
		s.recorder.IncFilesRendered(f.Kind.String())
	}
	s.recorder.ObserveStageDuration(stageRender, span.End(nil))
	s.recorder.IncStageResult(stageRender, metrics.ResultSuccess)

	return finish(StatusSuccess, nil)
}

// baseContext fetches the feed and builds the context every page starts from.
func (s *DefaultService) baseContext(ctx context.Context, result *Result) (templates.Context, error) {
	key := s.cfg.Render.ContextKey
	if s.cfg.Feed.Disabled {
		observability.InfoContext(ctx, "Feed disabled, rendering without it")
		s.recorder.IncStageResult(stageFetch, metrics.ResultSkipped)
		return templates.Context{key: nil}, nil
	}

	observability.InfoContext(ctx, "Fetching feed", logfields.URL(s.cfg.Feed.URI))
	fetched, err := s.fetcher.Fetch(ctx, s.cfg.Feed.URI)
	if err != nil {
		return nil, serrors.FeedFetch(s.cfg.Feed.URI, err)
	}
	result.FeedFetched = true
	s.recorder.IncStageResult(stageFetch, metrics.ResultSuccess)

	if fetched == nil {
		// keep the value an untyped nil so `{% if feed %}` is false
		return templates.Context{key: nil}, nil
	}
	observability.DebugContext(ctx, "Feed fetched",
		slog.String("title", fetched.Title),
		logfields.Count(len(fetched.Items)))
	return templates.Context{key: fetched}, nil
}

// renderFile renders one source file and returns the written path. For a
// markup source the intermediate template is released before returning,
// also when rendering fails.
func (s *DefaultService) renderFile(
	ctx context.Context,
	engine templates.Engine,
	guard *workspace.Guard,
	f docs.SourceFile,
	base templates.Context,
	targetDir string,
	result *Result,
) (path string, err error) {
	if f.Kind == docs.KindMarkup {
		release, cerr := s.convert(ctx, guard, f, result)
		if cerr != nil {
			return "", cerr
		}
		defer func() {
			if rerr := release(); rerr != nil {
				observability.WarnContext(ctx, "Failed to remove intermediate file", logfields.Error(rerr))
				if err == nil {
					err = serrors.Wrap(rerr, serrors.CategoryFileSystem, serrors.SeverityFatal, "intermediate cleanup failed").
						WithContext("path", filepath.Join(guard.Dir(), f.HTMLName()))
				}
			}
		}()
	}

	pageCtx := base.With("name", f.Base())
	text, err := engine.Render(f.HTMLName(), pageCtx)
	if err != nil {
		return "", classifyTemplateError(f.HTMLName(), err)
	}

	data, err := templates.Encode(text, s.cfg.Render.Encoding)
	if err != nil {
		return "", serrors.InternalError("encoding rendered page failed", err).
			WithContext("encoding", s.cfg.Render.Encoding)
	}

	path, err = templates.WriteRenderedFile(targetDir, f.HTMLName(), data)
	if err != nil {
		return "", serrors.TargetWriteFailed(filepath.Join(targetDir, f.HTMLName()), err)
	}

	switch f.Kind {
	case docs.KindMarkup:
		result.MarkupRendered++
	default:
		result.TemplatesRendered++
	}
	observability.DebugContext(ctx, "Rendered page", logfields.Path(path), logfields.Kind(f.Kind.String()))
	return path, nil
}

// convert writes the intermediate template for a markup source and returns
// its release func. The intermediate is listed in result as soon as it
// exists on disk, also when conversion then fails.
func (s *DefaultService) convert(ctx context.Context, guard *workspace.Guard, f docs.SourceFile, result *Result) (func() error, error) {
	file, release, err := guard.Create(f.HTMLName())
	if err != nil {
		if errors.Is(err, workspace.ErrExists) {
			return nil, serrors.IntermediateExists(filepath.Join(guard.Dir(), f.HTMLName()), f.Name)
		}
		return nil, serrors.Wrap(err, serrors.CategoryFileSystem, serrors.SeverityFatal, "creating intermediate file failed").
			WithContext("path", filepath.Join(guard.Dir(), f.HTMLName()))
	}
	result.Intermediates = append(result.Intermediates, f.HTMLName())

	fail := func(err error) (func() error, error) {
		if rerr := release(); rerr != nil {
			observability.WarnContext(ctx, "Failed to remove intermediate file", logfields.Error(rerr))
		}
		return nil, err
	}

	conv, err := s.converterFactory(f.Extension, s.cfg.Render.HeadingLevel)
	if err != nil {
		return fail(serrors.MarkupParse(f.Path, err))
	}

	doc, err := markup.ConvertFile(conv, f.Path, file, s.cfg.Render.Layout)
	if err != nil {
		return fail(serrors.MarkupParse(f.Path, err))
	}
	if err := file.Close(); err != nil {
		return fail(serrors.Wrap(err, serrors.CategoryFileSystem, serrors.SeverityFatal, "writing intermediate file failed").
			WithContext("path", file.Name()))
	}

	observability.DebugContext(ctx, "Converted markup source",
		logfields.File(f.Name),
		logfields.Template(f.HTMLName()),
		slog.String("title", doc.Title))
	return release, nil
}

func statusFor(ctx context.Context) Status {
	if ctx.Err() != nil {
		return StatusCancelled
	}
	return StatusFailed
}
