package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Require outcomes used as the "result" label.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Metrics holds all Prometheus metrics for the module loader
type Metrics struct {
	// Require metrics
	RequiresTotal   *prometheus.CounterVec
	ExecuteDuration prometheus.Histogram
	Failures        *prometheus.CounterVec

	// Cache metrics
	ModulesCached prometheus.Gauge
	Evictions     prometheus.Counter

	// Snapshot for the CLI summary - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values
type MetricsSnapshot struct {
	Hits          int64
	Misses        int64
	Errors        int64
	Cached        int64
	TotalDuration float64 // sum of module body execution time in seconds
}

// NewMetrics creates a metrics collector registered on reg. A nil reg uses
// a private registry so collectors never clash with the default one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequiresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modloader_requires_total",
				Help: "Total number of require calls by result",
			},
			[]string{"result"},
		),
		ExecuteDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "modloader_execute_duration_seconds",
				Help:    "Module body execution time in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
		),
		Failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modloader_failures_total",
				Help: "Total number of failed module loads by error kind",
			},
			[]string{"kind"},
		),
		ModulesCached: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "modloader_modules_cached",
				Help: "Number of modules held by the registry",
			},
		),
		Evictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "modloader_evictions_total",
				Help: "Modules removed from the cache after a failed execution",
			},
		),
	}
}

// RecordHit records a cache hit
func (m *Metrics) RecordHit() {
	if m == nil {
		return
	}
	m.RequiresTotal.WithLabelValues(ResultHit).Inc()

	m.mu.Lock()
	m.snapshot.Hits++
	m.mu.Unlock()
}

// RecordMiss records a cache miss that compiled and ran a module body
func (m *Metrics) RecordMiss(duration time.Duration) {
	if m == nil {
		return
	}
	m.RequiresTotal.WithLabelValues(ResultMiss).Inc()
	m.ExecuteDuration.Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.Misses++
	m.snapshot.TotalDuration += duration.Seconds()
	m.mu.Unlock()
}

// RecordFailure records a failed load
func (m *Metrics) RecordFailure(kind string) {
	if m == nil {
		return
	}
	m.RequiresTotal.WithLabelValues(ResultError).Inc()
	m.Failures.WithLabelValues(kind).Inc()

	m.mu.Lock()
	m.snapshot.Errors++
	m.mu.Unlock()
}

// RecordEviction records a module dropped after failing
func (m *Metrics) RecordEviction() {
	if m == nil {
		return
	}
	m.Evictions.Inc()
}

// SetModulesCached sets the number of cached modules
func (m *Metrics) SetModulesCached(count int) {
	if m == nil {
		return
	}
	m.ModulesCached.Set(float64(count))

	m.mu.Lock()
	m.snapshot.Cached = int64(count)
	m.mu.Unlock()
}

// Snapshot returns the current values
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
