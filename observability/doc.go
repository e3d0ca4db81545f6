// Package observability exports filter and replay metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	pc := observability.NewPrometheusCollector(reg)
//	runner := replay.NewRunner(store, replay.WithMetricsCollector(pc))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package observability
