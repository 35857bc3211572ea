package monitoring

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequires(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordHit()
	m.RecordHit()
	m.RecordMiss(10 * time.Millisecond)
	m.RecordFailure("compile")
	m.RecordEviction()
	m.SetModulesCached(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequiresTotal.WithLabelValues(ResultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequiresTotal.WithLabelValues(ResultMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequiresTotal.WithLabelValues(ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("compile")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Evictions))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ModulesCached))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Hits)
	assert.Equal(t, int64(1), snap.Misses)
	assert.Equal(t, int64(1), snap.Errors)
	assert.Equal(t, int64(3), snap.Cached)
	assert.InDelta(t, 0.01, snap.TotalDuration, 1e-9)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordHit()
	m.RecordMiss(time.Millisecond)
	m.RecordFailure("runtime")
	m.RecordEviction()
	m.SetModulesCached(1)
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())

	NewTimer(m).Miss()
}

func TestSeparateRegistries(t *testing.T) {
	// Two collectors must not collide on registration.
	assert.NotPanics(t, func() {
		NewMetrics(nil)
		NewMetrics(nil)
	})
}
