/*
Package monitoring provides Prometheus metrics for the module loader.

# Features

- Require calls by result (hit, miss, error)
- Module body execution latency
- Failures by error kind and cache evictions
- Cached module gauge

# Usage

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	registry, err := loader.New(cfg, loader.WithMetrics(metrics))

All recording methods are safe on a nil *Metrics.
*/
package monitoring
