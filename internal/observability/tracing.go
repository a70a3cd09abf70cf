package observability

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Span times one stage of a render run.
type Span struct {
	ctx       context.Context
	name      string
	startTime time.Time
	ended     bool
	duration  time.Duration
}

// StartStage tags ctx with the stage name and starts timing it.
func StartStage(ctx context.Context, stage string) (context.Context, *Span) {
	ctx = WithStage(ctx, stage)
	DebugContext(ctx, "Stage started")
	return ctx, &Span{ctx: ctx, name: stage, startTime: time.Now()}
}

// Name returns the stage name.
func (s *Span) Name() string {
	return s.name
}

// End stops the span and returns the stage duration. Only the first call
// logs; later calls return the recorded duration.
func (s *Span) End(err error) time.Duration {
	if s == nil {
		return 0
	}
	if s.ended {
		return s.duration
	}
	s.ended = true
	s.duration = time.Since(s.startTime)

	attrs := []slog.Attr{logfields.DurationMS(float64(s.duration.Microseconds()) / 1000)}
	if err != nil {
		attrs = append(attrs, logfields.Error(err))
		DebugContext(s.ctx, "Stage failed", attrs...)
		return s.duration
	}
	DebugContext(s.ctx, "Stage finished", attrs...)
	return s.duration
}
