package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithBuildID(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-123")

	lc := GetContext(ctx)
	if lc.BuildID != "build-123" {
		t.Errorf("expected build-123, got %s", lc.BuildID)
	}
}

func TestWithStage(t *testing.T) {
	ctx := WithStage(context.Background(), "render")

	lc := GetContext(ctx)
	if lc.Stage != "render" {
		t.Errorf("expected render, got %s", lc.Stage)
	}
}

func TestContextLayering(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b1")
	ctx = WithStage(ctx, "discover")
	ctx = WithFile(ctx, "index.html")
	ctx = WithStage(ctx, "render")

	lc := GetContext(ctx)
	if lc.BuildID != "b1" || lc.Stage != "render" || lc.File != "index.html" {
		t.Errorf("unexpected log context: %+v", lc)
	}
}

func TestInfoContextIncludesAttrs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := WithFile(WithBuildID(context.Background(), "b2"), "news.rst")
	InfoContext(ctx, "Rendered page", slog.Int("bytes", 42))

	out := buf.String()
	for _, want := range []string{"build.id=b2", "file=news.rst", "bytes=42", "Rendered page"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %q", out, want)
		}
	}
}
