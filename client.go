// Package esblocks is a convenience layer over the
// github.com/olivere/elastic Elasticsearch client. Request bodies are
// described with nested closures (see pkg/blocks) instead of builder
// chains or hand-assembled maps, and every operation delegates to the
// wrapped client, which owns transport, retries and response decoding.
//
//	client, err := esblocks.Dial(ctx, elastic.SetURL("http://localhost:9200"))
//	...
//	res, err := client.Search(ctx, []string{"twitter"}, func(b *blocks.Body) {
//	    b.Set("query.term.user", "kimchy")
//	    b.Set("size", 10)
//	})
package esblocks

import (
	"context"
	"errors"
	"time"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	cache "github.com/patrickmn/go-cache"   // In-memory TTL cache.
	"github.com/tidwall/gjson"              // Dynamic JSON parsing.

	"github.com/mintel/elasticsearch-blocks/pkg/blocks" // Block to map conversion.
	"github.com/mintel/elasticsearch-blocks/pkg/es"     // Elasticsearch client extensions.
)

const (
	// DefaultRetryInit is the default initial duration of exponential
	// backoff retries when dialing Elasticsearch.
	DefaultRetryInit = 150 * time.Millisecond

	// DefaultRetryMax is the default max duration of exponential
	// backoff retries when dialing Elasticsearch.
	DefaultRetryMax = 1200 * time.Millisecond
)

// How long to remember the cluster version between Version calls.
const versionCacheTTL = time.Minute

// Block describes a JSON object request body.
// Alias of pkg/blocks.Block so most callers only import this package.
type Block = blocks.Block

// Body accumulates the structure described by a Block.
// Alias of pkg/blocks.Body.
type Body = blocks.Body

// Client wraps an elastic.Client with block-based request
// construction. All execution is delegated to the wrapped client;
// Client itself holds no connection state beyond a small cache.
// It is safe for concurrent use.
type Client struct {
	es   *elastic.Client
	memo *cache.Cache
}

// NewClient wraps an existing elastic.Client.
func NewClient(esClient *elastic.Client) *Client {
	return &Client{
		es:   esClient,
		memo: cache.New(versionCacheTTL, 10*time.Minute),
	}
}

// Dial connects to Elasticsearch and returns a wrapping Client.
// The initial connection is retried with exponential backoff
// (DefaultRetryInit / DefaultRetryMax), since elastic.NewClient gives
// up immediately if the cluster isn't up yet.
func Dial(ctx context.Context, options ...elastic.ClientOptionFunc) (*Client, error) {
	return DialRetry(ctx, DefaultRetryInit, DefaultRetryMax, options...)
}

// DialRetry is Dial with explicit retry backoff durations.
// A max of <= 0 disables retries.
func DialRetry(ctx context.Context, init, max time.Duration, options ...elastic.ClientOptionFunc) (*Client, error) {
	esClient, err := es.DialContextRetry(ctx, init, max, options...)
	if err != nil {
		return nil, err
	}
	return NewClient(esClient), nil
}

// Elastic returns the wrapped elastic.Client for anything this
// package doesn't cover.
func (c *Client) Elastic() *elastic.Client {
	return c.es
}

// Stop stops the wrapped client's background processes.
func (c *Client) Stop() {
	c.es.Stop()
}

// Version returns the Elasticsearch version string of the cluster.
// The value is cached for a short TTL because callers tend to consult
// it per request for feature gating.
func (c *Client) Version(ctx context.Context) (version string, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("version", err) }()

	if v, ok := c.memo.Get("cluster-version"); ok {
		return v.(string), nil
	}
	res, err := c.es.PerformRequest(ctx, elastic.PerformRequestOptions{
		Method: "GET",
		Path:   "/",
	})
	if err != nil {
		return "", err
	}
	raw, err := res.Body.MarshalJSON()
	if err != nil {
		return "", err
	}
	version = gjson.GetBytes(raw, "version.number").String()
	if version == "" {
		return "", errors.New("esblocks: no version.number in root endpoint response")
	}
	c.memo.Set("cluster-version", version, cache.DefaultExpiration)
	return version, nil
}

// Query adapts a Block to the elastic.Query interface, so blocks can
// be passed anywhere the wrapped client wants a query:
//
//	client.Elastic().Scroll("twitter").Query(esblocks.Query(func(b *blocks.Body) {
//	    b.Set("term.user", "kimchy")
//	}))
func Query(blk Block) elastic.Query {
	return blockQuery{blk: blk}
}

type blockQuery struct {
	blk Block
}

// Source implements elastic.Query.
func (q blockQuery) Source() (interface{}, error) {
	m, err := blocks.Map(q.blk)
	if err != nil {
		return nil, err
	}
	return m, nil
}
