// Package metrics records render-run metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics cost nothing unless a Prometheus recorder is
// configured:
//
//	reg := prometheus.NewRegistry()
//	svc := build.NewService(cfg).WithRecorder(metrics.NewPrometheusRecorder(reg))
//	...
//	_ = metrics.WriteTextfile(cfg.Metrics.Textfile, reg)
//
// A one-shot CLI has no scrape endpoint, so the registry is dumped in the
// node-exporter textfile format after each run instead.
package metrics
