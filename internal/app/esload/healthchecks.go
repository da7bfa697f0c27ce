package esload

import (
	"github.com/heptiolabs/healthcheck"              // Healthchecks framework.
	"github.com/pkg/errors"                          // Error constructors.
	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.

	"github.com/mintel/elasticsearch-blocks/internal/pkg/cmd" // Common command line app tools.
)

// Healthchecks holds the HTTP healthcheck handler for the esload App.
type Healthchecks struct {
	Handler healthcheck.Handler

	// Set true once a connection to Elasticsearch is successfully
	// established.
	ElasticSessionCreated bool
}

// NewHealthchecks returns a new Healthchecks.
func NewHealthchecks(r prometheus.Registerer, namespace string) *Healthchecks {
	h := &Healthchecks{
		Handler: cmd.NewHealthchecksHandler(r, namespace),
	}

	h.Handler.AddReadinessCheck("elasticsearch-session", func() error {
		if !h.ElasticSessionCreated {
			return errors.New("Elasticsearch session not yet ready")
		}
		return nil
	})

	return h
}
