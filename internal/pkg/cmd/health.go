package cmd

import (
	"github.com/heptiolabs/healthcheck"              // Healthchecks framework.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
)

// NewHealthchecksHandler returns a healthcheck.Handler with a basic
// liveness check and Prometheus healthcheck status metrics for the
// given app name.
func NewHealthchecksHandler(r prometheus.Registerer, namespace string) healthcheck.Handler {
	h := healthcheck.NewMetricsHandler(r, namespace)
	h.AddLivenessCheck("alive", func() error { return nil })
	return h
}
