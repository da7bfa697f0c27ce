// Package metrics holds constants and helpers for instrumenting
// elasticsearch-blocks with Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
)

// Namespace is the Prometheus metric namespace for this project.
const Namespace = "esblocks"

// LabelStatus is the metric label distinguishing successful and
// failed operations.
const LabelStatus = "status"

// Values for the LabelStatus label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// MustRegisterOnce registers Prometheus Collectors with the default
// Registerer, ignoring AlreadyRegisteredErrors. Other errors panic.
func MustRegisterOnce(cs ...prometheus.Collector) {
	for _, c := range cs {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}
