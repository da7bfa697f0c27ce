package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// VecTimer times a function call and observes the duration on a
// prometheus.ObserverVec, choosing labels at observation time.
// Use NewVecTimer to create instances:
//
//	func TimeMe() (err error) {
//	    timer := metrics.NewVecTimer(myHistogramVec)
//	    defer timer.ObserveErr(err)
//	    // Do actual work.
//	}
type VecTimer struct {
	begin time.Time
	vec   prometheus.ObserverVec
}

// NewVecTimer returns a VecTimer started now.
func NewVecTimer(v prometheus.ObserverVec) *VecTimer {
	return &VecTimer{begin: time.Now(), vec: v}
}

// ObserveWithLabelValues observes the elapsed duration in seconds with
// the given label values, and returns the duration.
func (t *VecTimer) ObserveWithLabelValues(labels ...string) time.Duration {
	d := time.Since(t.begin)
	if t.vec != nil {
		t.vec.WithLabelValues(labels...).Observe(d.Seconds())
	}
	return d
}

// ObserveErr observes the elapsed duration with the LabelStatus label
// set from err, and returns the duration.
func (t *VecTimer) ObserveErr(err error) time.Duration {
	d := time.Since(t.begin)
	if t.vec != nil {
		status := StatusSuccess
		if err != nil {
			status = StatusError
		}
		t.vec.With(prometheus.Labels{LabelStatus: status}).Observe(d.Seconds())
	}
	return d
}
