package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func captureDebug(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestStartStage(t *testing.T) {
	buf := captureDebug(t)

	ctx, span := StartStage(WithBuildID(context.Background(), "b1"), "fetch")
	require.Equal(t, "fetch", GetContext(ctx).Stage)
	require.Equal(t, "b1", GetContext(ctx).BuildID)
	require.Equal(t, "fetch", span.Name())

	d := span.End(nil)
	require.GreaterOrEqual(t, d, time.Duration(0))
	require.Equal(t, d, span.End(errors.New("ignored")))

	out := buf.String()
	require.Contains(t, out, "Stage started")
	require.Contains(t, out, "Stage finished")
	require.Contains(t, out, "stage=fetch")
	require.NotContains(t, out, "ignored")
}

func TestSpanEnd_Error(t *testing.T) {
	buf := captureDebug(t)

	_, span := StartStage(context.Background(), "render")
	span.End(errors.New("boom"))

	require.Contains(t, buf.String(), "Stage failed")
	require.Contains(t, buf.String(), "boom")
}

func TestSpanEnd_Nil(t *testing.T) {
	var span *Span
	require.Zero(t, span.End(nil))
}
