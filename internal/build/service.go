package build

import (
	"context"
	"time"
)

// Service renders a site.
type Service interface {
	// Run executes one complete render: fetch → discover → guard → render.
	// Any failure aborts the run; nothing is retried.
	Run(ctx context.Context, req Request) (*Result, error)
}

// Request names the directories of one render run.
type Request struct {
	// SourceDir holds templates, partials and markup sources.
	SourceDir string

	// TargetDir receives the rendered pages. Created when missing.
	TargetDir string
}

// Result contains the outcome of a render run.
type Result struct {
	// Status indicates overall run outcome.
	Status Status

	// BuildID correlates the log lines of this run.
	BuildID string

	SourceDir string
	TargetDir string

	// Outputs lists the written files in processing order.
	Outputs []string

	// Intermediates lists the names of the intermediate templates created
	// (and removed again) for markup sources.
	Intermediates []string

	// TemplatesRendered counts pages rendered straight from an .html template.
	TemplatesRendered int

	// MarkupRendered counts pages rendered from a markup source.
	MarkupRendered int

	// FeedFetched is false when the feed was disabled.
	FeedFetched bool

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time
}

// FilesRendered is the total number of pages written.
func (r *Result) FilesRendered() int {
	return r.TemplatesRendered + r.MarkupRendered
}

// Status represents the outcome of a render run.
type Status string

const (
	// StatusSuccess indicates every eligible file was rendered.
	StatusSuccess Status = "success"

	// StatusFailed indicates the run aborted on an error.
	StatusFailed Status = "failed"

	// StatusCancelled indicates the context was cancelled mid-run.
	StatusCancelled Status = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed || s == StatusCancelled
}

// IsSuccess returns true if the run completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}
