// prometheus.go: Prometheus export of per-node-type metrics

// Package observability exports cacheme's metrics surface to Prometheus.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Yiling-J/cacheme"
)

// Collector adapts a set of node-type metrics into a prometheus.Collector.
// Register one node type at a time with Add; Describe/Collect then report
// every registered type's snapshot on each scrape.
type Collector struct {
	entries []entry

	hitCount         *prometheus.Desc
	missCount        *prometheus.Desc
	loadSuccessCount *prometheus.Desc
	loadFailureCount *prometheus.Desc
	evictionCount    *prometheus.Desc
	totalLoadTimeNs  *prometheus.Desc
	hitRate          *prometheus.Desc
}

type entry struct {
	node   string
	engine *cacheme.Engine
	meta   *cacheme.NodeMeta
}

// NewCollector builds an empty Collector.
func NewCollector() *Collector {
	labels := []string{"node"}
	return &Collector{
		hitCount:         prometheus.NewDesc("cacheme_hit_count", "Cache hits for a node type.", labels, nil),
		missCount:        prometheus.NewDesc("cacheme_miss_count", "Cache misses for a node type.", labels, nil),
		loadSuccessCount: prometheus.NewDesc("cacheme_load_success_count", "Successful loader invocations.", labels, nil),
		loadFailureCount: prometheus.NewDesc("cacheme_load_failure_count", "Failed loader invocations.", labels, nil),
		evictionCount:    prometheus.NewDesc("cacheme_eviction_count", "Admission-cache evictions.", labels, nil),
		totalLoadTimeNs:  prometheus.NewDesc("cacheme_total_load_time_ns", "Cumulative loader time in nanoseconds.", labels, nil),
		hitRate:          prometheus.NewDesc("cacheme_hit_rate", "Derived hit rate in [0,1].", labels, nil),
	}
}

// Add registers a node type, identified by label, to be reported on every
// scrape.
func (c *Collector) Add(label string, e *cacheme.Engine, meta *cacheme.NodeMeta) {
	c.entries = append(c.entries, entry{node: label, engine: e, meta: meta})
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hitCount
	ch <- c.missCount
	ch <- c.loadSuccessCount
	ch <- c.loadFailureCount
	ch <- c.evictionCount
	ch <- c.totalLoadTimeNs
	ch <- c.hitRate
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, e := range c.entries {
		s := e.engine.Stats(e.meta)
		ch <- prometheus.MustNewConstMetric(c.hitCount, prometheus.CounterValue, float64(s.HitCount), e.node)
		ch <- prometheus.MustNewConstMetric(c.missCount, prometheus.CounterValue, float64(s.MissCount), e.node)
		ch <- prometheus.MustNewConstMetric(c.loadSuccessCount, prometheus.CounterValue, float64(s.LoadSuccessCount), e.node)
		ch <- prometheus.MustNewConstMetric(c.loadFailureCount, prometheus.CounterValue, float64(s.LoadFailureCount), e.node)
		ch <- prometheus.MustNewConstMetric(c.evictionCount, prometheus.CounterValue, float64(s.EvictionCount), e.node)
		ch <- prometheus.MustNewConstMetric(c.totalLoadTimeNs, prometheus.CounterValue, float64(s.TotalLoadTimeNs), e.node)
		ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, s.HitRate, e.node)
	}
}
