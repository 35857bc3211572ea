package monitoring

import "time"

// Timer measures module body execution
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics) *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: metrics,
	}
}

// Elapsed returns the time since the timer started
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Miss stops the timer and records a successful miss
func (t *Timer) Miss() time.Duration {
	d := t.Elapsed()
	t.metrics.RecordMiss(d)
	return d
}
