package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("render", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("render", ResultSuccess)
	pr.IncBuildOutcome(BuildOutcomeSuccess)
	pr.IncFilesRendered("markup")
	pr.IncFilesRendered("markup")
	pr.IncFilesRendered("template")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 5)

	require.InDelta(t, 2, testutil.ToFloat64(pr.filesRendered.WithLabelValues("markup")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("success")), 0)
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("render", time.Second)
	pr.IncFilesRendered("template")
	pr.IncBuildOutcome(BuildOutcomeFailed)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncFilesRendered("template")

	path := filepath.Join(t.TempDir(), "textfile", "sitegen.prom")
	require.NoError(t, WriteTextfile(path, reg))

	// #nosec G304 -- path is controlled by test.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `sitegen_files_rendered_total{kind="template"} 1`)

	require.NoError(t, WriteTextfile("", reg))
}
