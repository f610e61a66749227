// Package prometheus exposes engine metrics to Prometheus.
//
// Two paths are offered. [PrometheusExporter] renders the text exposition
// format directly and needs no registry. [Collector] plugs into a
// client_golang registry so the metrics can be served by promhttp alongside
// the application's own. Counter names are gojws_*_total; the latency
// histograms are gojws_sign_latency_seconds and gojws_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register anything in the global Prometheus registry.
//   - Mutate engine state.
package prometheus
