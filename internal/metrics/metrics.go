// Package metrics exposes the document layer's operation counters as
// Prometheus collectors, grounded on the teacher's LevelMetrics/Add
// aggregator pattern (metrics.go) but backed by real
// client_golang collectors instead of plain int64 fields, since this
// module has an operator-facing surface a compaction picker does not.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics aggregates counts across the document layer's operations.
// A single Metrics is meant to be shared by one Table and registered
// once with a prometheus.Registerer by the embedding application.
type Metrics struct {
	ReplaceInserted  prometheus.Counter
	ReplaceReplaced  prometheus.Counter
	ReplaceDeleted   prometheus.Counter
	ReplaceSkipped   prometheus.Counter
	ReplaceUnchanged prometheus.Counter
	ReplaceErrors    prometheus.Counter

	SindexFanoutLatency prometheus.Histogram
	SindexFanoutErrors  prometheus.Counter

	PostConstructRowsVisited prometheus.Counter

	RangeScanTruncated prometheus.Counter
}

// New builds a Metrics with the given namespace prefixed onto every
// collector name (e.g. "docengine").
func New(namespace string) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		})
	}
	return &Metrics{
		ReplaceInserted:  counter("replace_inserted_total", "documents inserted via the replace engine"),
		ReplaceReplaced:  counter("replace_replaced_total", "documents replaced via the replace engine"),
		ReplaceDeleted:   counter("replace_deleted_total", "documents deleted via the replace engine"),
		ReplaceSkipped:   counter("replace_skipped_total", "no-op replace invocations"),
		ReplaceUnchanged: counter("replace_unchanged_total", "replace invocations whose transform was idempotent"),
		ReplaceErrors:    counter("replace_errors_total", "replace invocations that failed"),

		SindexFanoutLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sindex_fanout_latency_seconds",
			Help:      "time to fan a modification report out to all sindexes",
		}),
		SindexFanoutErrors: counter("sindex_fanout_errors_total", "sindex fan-out tasks that failed"),

		PostConstructRowsVisited: counter("post_construct_rows_visited_total", "rows visited during sindex post-construction"),

		RangeScanTruncated: counter("range_scan_truncated_total", "range scans that hit the chunk-size bound"),
	}
}

// Collectors returns every collector, for bulk registration.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ReplaceInserted, m.ReplaceReplaced, m.ReplaceDeleted,
		m.ReplaceSkipped, m.ReplaceUnchanged, m.ReplaceErrors,
		m.SindexFanoutLatency, m.SindexFanoutErrors,
		m.PostConstructRowsVisited, m.RangeScanTruncated,
	}
}
