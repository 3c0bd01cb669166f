// Package metrics collects per-operation search timings. The collector is
// constructed once at process start and injected by reference; callers never
// reach for a global.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// SlowQueryThreshold marks an operation as slow for the warning log and the
// slow-query counter.
const SlowQueryThreshold = 500 * time.Millisecond

// Sink receives one record per completed search operation.
type Sink interface {
	RecordOperation(name string, duration time.Duration)
}

// Fanout forwards every record to all wrapped sinks.
type Fanout []Sink

func (f Fanout) RecordOperation(name string, duration time.Duration) {
	for _, s := range f {
		s.RecordOperation(name, duration)
	}
}

type opStats struct {
	count   atomic.Int64
	totalMS atomic.Int64
	maxMS   atomic.Int64
	slow    atomic.Int64
}

// SearchMetrics is an in-memory, lock-free collector of operation counts and
// durations. Counters only ever increase; concurrent RecordOperation calls
// from request goroutines are safe.
type SearchMetrics struct {
	ops    sync.Map // operation name -> *opStats
	logger *zap.Logger
}

var _ Sink = (*SearchMetrics)(nil)

// NewSearchMetrics creates an empty collector. logger may be nil.
func NewSearchMetrics(logger *zap.Logger) *SearchMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchMetrics{logger: logger}
}

// RecordOperation adds one timing sample for the named operation.
func (m *SearchMetrics) RecordOperation(name string, duration time.Duration) {
	v, _ := m.ops.LoadOrStore(name, &opStats{})
	stats := v.(*opStats)

	ms := duration.Milliseconds()
	stats.count.Add(1)
	stats.totalMS.Add(ms)
	for {
		cur := stats.maxMS.Load()
		if ms <= cur || stats.maxMS.CompareAndSwap(cur, ms) {
			break
		}
	}

	if duration > SlowQueryThreshold {
		stats.slow.Add(1)
		m.logger.Warn("slow query detected",
			zap.String("operation", name),
			zap.Int64("duration_ms", ms),
		)
	}
}

// RequestCount returns how many times the operation was recorded.
func (m *SearchMetrics) RequestCount(name string) int64 {
	if s := m.get(name); s != nil {
		return s.count.Load()
	}
	return 0
}

// AverageDuration returns the mean duration in milliseconds, 0 when unseen.
func (m *SearchMetrics) AverageDuration(name string) float64 {
	s := m.get(name)
	if s == nil {
		return 0
	}
	n := s.count.Load()
	if n == 0 {
		return 0
	}
	return float64(s.totalMS.Load()) / float64(n)
}

// SlowQueryCount returns how many samples exceeded SlowQueryThreshold.
func (m *SearchMetrics) SlowQueryCount(name string) int64 {
	if s := m.get(name); s != nil {
		return s.slow.Load()
	}
	return 0
}

// OperationSnapshot is one row of the metrics health endpoint.
type OperationSnapshot struct {
	Count         int64   `json:"count"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
	MaxDurationMS int64   `json:"max_duration_ms"`
	SlowQueries   int64   `json:"slow_queries"`
}

// Snapshot returns a point-in-time copy of all per-operation aggregates.
func (m *SearchMetrics) Snapshot() map[string]OperationSnapshot {
	out := make(map[string]OperationSnapshot)
	m.ops.Range(func(k, v any) bool {
		s := v.(*opStats)
		n := s.count.Load()
		snap := OperationSnapshot{
			Count:         n,
			MaxDurationMS: s.maxMS.Load(),
			SlowQueries:   s.slow.Load(),
		}
		if n > 0 {
			snap.AvgDurationMS = float64(s.totalMS.Load()) / float64(n)
		}
		out[k.(string)] = snap
		return true
	})
	return out
}

// Reset clears all aggregates. Intended for tests.
func (m *SearchMetrics) Reset() {
	m.ops.Range(func(k, _ any) bool {
		m.ops.Delete(k)
		return true
	})
}

func (m *SearchMetrics) get(name string) *opStats {
	if v, ok := m.ops.Load(name); ok {
		return v.(*opStats)
	}
	return nil
}
