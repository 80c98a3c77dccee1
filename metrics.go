// metrics.go: per-node-type counters

package cacheme

import (
	"sync/atomic"
	"time"
)

// Metrics holds the monotonic counters the design requires per node type.
// Every field is mutated through atomic operations so concurrent Get calls
// never race; aggregation for Stats is a point-in-time read, not a lock.
type Metrics struct {
	hitCount         int64
	missCount        int64
	loadSuccessCount int64
	loadFailureCount int64
	evictionCount    int64
	totalLoadTimeNs  int64
}

// MetricsSnapshot is the read-only view returned by Stats, with the
// derived rates the metrics surface requires.
type MetricsSnapshot struct {
	HitCount         int64
	MissCount        int64
	LoadSuccessCount int64
	LoadFailureCount int64
	EvictionCount    int64
	TotalLoadTimeNs  int64

	RequestCount     int64
	HitRate          float64
	MissRate         float64
	LoadCount        int64
	LoadFailureRate  float64
	AverageLoadTime  time.Duration
}

func (m *Metrics) IncHit()      { atomic.AddInt64(&m.hitCount, 1) }
func (m *Metrics) IncMiss()     { atomic.AddInt64(&m.missCount, 1) }
func (m *Metrics) IncEviction() { atomic.AddInt64(&m.evictionCount, 1) }

// RecordLoad accounts for one completed load call, successful or not.
func (m *Metrics) RecordLoad(success bool, elapsed time.Duration) {
	atomic.AddInt64(&m.totalLoadTimeNs, elapsed.Nanoseconds())
	if success {
		atomic.AddInt64(&m.loadSuccessCount, 1)
	} else {
		atomic.AddInt64(&m.loadFailureCount, 1)
	}
}

// Stats computes a consistent-enough snapshot with derived rates.
func (m *Metrics) Stats() MetricsSnapshot {
	s := MetricsSnapshot{
		HitCount:         atomic.LoadInt64(&m.hitCount),
		MissCount:        atomic.LoadInt64(&m.missCount),
		LoadSuccessCount: atomic.LoadInt64(&m.loadSuccessCount),
		LoadFailureCount: atomic.LoadInt64(&m.loadFailureCount),
		EvictionCount:    atomic.LoadInt64(&m.evictionCount),
		TotalLoadTimeNs:  atomic.LoadInt64(&m.totalLoadTimeNs),
	}
	s.RequestCount = s.HitCount + s.MissCount
	s.LoadCount = s.LoadSuccessCount + s.LoadFailureCount
	if s.RequestCount > 0 {
		s.HitRate = float64(s.HitCount) / float64(s.RequestCount)
		s.MissRate = float64(s.MissCount) / float64(s.RequestCount)
	}
	if s.LoadCount > 0 {
		s.LoadFailureRate = float64(s.LoadFailureCount) / float64(s.LoadCount)
		s.AverageLoadTime = time.Duration(s.TotalLoadTimeNs / s.LoadCount)
	}
	return s
}
