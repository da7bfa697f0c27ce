package esload

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mintel/elasticsearch-blocks/internal/pkg/metrics"
)

// Instrumentation holds Prometheus metrics specific to the esload
// App.
type Instrumentation struct {
	// Count of documents read from the input.
	DocsRead prometheus.Counter

	// Count of documents successfully indexed.
	DocsIndexed prometheus.Counter

	// Count of documents Elasticsearch rejected.
	DocsFailed prometheus.Counter

	// Durations of bulk flushes, by success/error status.
	FlushDuration *prometheus.HistogramVec
}

// NewInstrumentation returns a new Instrumentation.
func NewInstrumentation(namespace string) *Instrumentation {
	return &Instrumentation{
		DocsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_read_total",
			Help:      "Count of documents read from the input.",
		}),
		DocsIndexed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_indexed_total",
			Help:      "Count of documents successfully indexed into Elasticsearch.",
		}),
		DocsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_failed_total",
			Help:      "Count of documents rejected by Elasticsearch.",
		}),
		FlushDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Durations of bulk flushes to Elasticsearch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{metrics.LabelStatus}),
	}
}

// Describe implements the prometheus.Collector interface.
func (m *Instrumentation) Describe(c chan<- *prometheus.Desc) {
	m.DocsRead.Describe(c)
	m.DocsIndexed.Describe(c)
	m.DocsFailed.Describe(c)
	m.FlushDuration.Describe(c)
}

// Collect implements the prometheus.Collector interface.
func (m *Instrumentation) Collect(c chan<- prometheus.Metric) {
	m.DocsRead.Collect(c)
	m.DocsIndexed.Collect(c)
	m.DocsFailed.Collect(c)
	m.FlushDuration.Collect(c)
}
