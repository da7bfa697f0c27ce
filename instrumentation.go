package esblocks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mintel/elasticsearch-blocks/internal/pkg/metrics"
)

// RequestDuration observes the duration of every operation the Client
// delegates to the wrapped Elasticsearch client, labeled by operation
// name and success/error status.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: metrics.Namespace,
	Name:      "request_duration_seconds",
	Help:      "Durations of Elasticsearch requests made through the client.",
	Buckets:   prometheus.DefBuckets,
}, []string{"operation", metrics.LabelStatus})

// requestTimer wraps a VecTimer for the RequestDuration metric.
// Use inside a deferred closure so the named error return is
// evaluated after the method body runs:
//
//	timer := newRequestTimer()
//	defer func() { timer.done("search", err) }()
type requestTimer struct {
	t *metrics.VecTimer
}

func newRequestTimer() requestTimer {
	return requestTimer{t: metrics.NewVecTimer(RequestDuration)}
}

func (rt requestTimer) done(operation string, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	rt.t.ObserveWithLabelValues(operation, status)
}
