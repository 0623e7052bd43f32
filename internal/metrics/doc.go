// Package metrics records build observations for pagebuilder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default; PrometheusRecorder registers on its own registry and can dump it
// in Prometheus text format for a node exporter textfile collector:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	builder := site.NewBuilder(cfg, site.WithRecorder(rec))
//	...
//	_ = metrics.WriteTextfile(reg, "/var/lib/node_exporter/pagebuilder.prom")
package metrics
