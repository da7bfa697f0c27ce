package cmd

import (
	"context"
	"net/url"
	"time"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.

	esblocks "github.com/mintel/elasticsearch-blocks" // Block-based client facade.
)

// ElasticsearchFlags represents a base set of flags for connecting
// to Elasticsearch.
type ElasticsearchFlags struct {
	// URL(s) of Elasticsearch nodes to connect to.
	URLs []*url.URL

	// Exponential backoff retry flags.
	Retry struct {
		// Initial backoff duration.
		Init time.Duration

		// Max backoff duration.
		Max time.Duration
	}
}

// NewElasticsearchFlags returns a new ElasticsearchFlags.
func NewElasticsearchFlags(app Flagger, retryInit, retryMax time.Duration) *ElasticsearchFlags {
	var f ElasticsearchFlags

	app.Flag("elasticsearch.url", "URL(s) of Elasticsearch.").
		Short('e').
		Default(elastic.DefaultURL).
		URLListVar(&f.URLs)

	app.Flag("elasticsearch.retry.init", "Initial duration of Elasticsearch exponential backoff retries.").
		Hidden().
		Default(retryInit.String()).
		DurationVar(&f.Retry.Init)

	app.Flag("elasticsearch.retry.max", "Max duration of Elasticsearch exponential backoff retries.").
		Hidden().
		Default(retryMax.String()).
		DurationVar(&f.Retry.Max)

	return &f
}

// URLStrings returns the URL flag values as strings.
func (f *ElasticsearchFlags) URLStrings() []string {
	urls := make([]string, len(f.URLs))
	for i, u := range f.URLs {
		urls[i] = u.String()
	}
	return urls
}

// NewClient returns a new block-based Elasticsearch client configured
// from the URL and retry flag values, plus any other options passed
// in.
func (f *ElasticsearchFlags) NewClient(ctx context.Context, options ...elastic.ClientOptionFunc) (*esblocks.Client, error) {
	options = append(options, elastic.SetURL(f.URLStrings()...))
	return esblocks.DialRetry(ctx, f.Retry.Init, f.Retry.Max, options...)
}
