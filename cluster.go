package esblocks

import (
	"context"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.

	"github.com/mintel/elasticsearch-blocks/pkg/es" // Elasticsearch client extensions.
)

// ClusterHealth returns the health of the cluster, or of the given
// indices.
func (c *Client) ClusterHealth(ctx context.Context, indices ...string) (resp *elastic.ClusterHealthResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("cluster_health", err) }()

	svc := c.es.ClusterHealth()
	if len(indices) > 0 {
		svc = svc.Index(indices...)
	}
	resp, err = svc.Do(ctx)
	return resp, err
}

// ClusterState returns the current cluster state.
func (c *Client) ClusterState(ctx context.Context) (resp *elastic.ClusterStateResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("cluster_state", err) }()

	resp, err = c.es.ClusterState().Do(ctx)
	return resp, err
}

// ClusterStats returns cluster-wide statistics.
func (c *Client) ClusterStats(ctx context.Context) (resp *elastic.ClusterStatsResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("cluster_stats", err) }()

	resp, err = c.es.ClusterStats().Do(ctx)
	return resp, err
}

// ClusterGetSettings returns the cluster settings, including defaults
// if asked.
func (c *Client) ClusterGetSettings(ctx context.Context, includeDefaults bool) (resp *es.ClusterGetSettingsResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("cluster_get_settings", err) }()

	resp, err = es.NewClusterGetSettingsService(c.es).Defaults(includeDefaults).Do(ctx)
	return resp, err
}

// ClusterPutSettings updates cluster settings from a block describing
// the persistent and/or transient sections:
//
//	client.ClusterPutSettings(ctx, func(b *blocks.Body) {
//	    b.Set("transient.cluster.routing.allocation.enable", "none")
//	})
func (c *Client) ClusterPutSettings(ctx context.Context, body Block) (resp *es.ClusterPutSettingsResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("cluster_put_settings", err) }()

	resp, err = es.NewClusterPutSettingsService(c.es).Body(body).Do(ctx)
	return resp, err
}
