package esblocks

import (
	"context"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"go.uber.org/zap"                       // Logging.

	"github.com/mintel/elasticsearch-blocks/pkg/blocks" // Block to map conversion.
	"github.com/mintel/elasticsearch-blocks/pkg/ctxlog" // Logger from context.
)

// NamedSearch is one search in a MultiSearch request.
type NamedSearch struct {
	Indices []string
	Body    Block
}

// Search runs a search described by a block. The block is the full
// search body (query, aggs, sort, size...). A nil body matches all.
func (c *Client) Search(ctx context.Context, indices []string, body Block) (resp *elastic.SearchResult, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("search", err) }()

	src, err := blocks.Map(body)
	if err != nil {
		return nil, err
	}
	resp, err = c.es.Search(indices...).Source(src).Do(ctx)
	if err != nil {
		ctxlog.L(ctx).Error("error searching",
			zap.Strings("indices", indices), zap.Error(err))
	}
	return resp, err
}

// Count counts documents matching a search body. A nil body counts
// everything.
func (c *Client) Count(ctx context.Context, indices []string, body Block) (count int64, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("count", err) }()

	svc := c.es.Count(indices...)
	if body != nil {
		src, err := blocks.Map(body)
		if err != nil {
			return 0, err
		}
		svc = svc.BodyJson(src)
	}
	count, err = svc.Do(ctx)
	return count, err
}

// MultiSearch runs several searches in one request. Results come back
// in the same order as the searches.
func (c *Client) MultiSearch(ctx context.Context, searches ...NamedSearch) (resp *elastic.MultiSearchResult, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("msearch", err) }()

	svc := c.es.MultiSearch()
	for _, s := range searches {
		src, err := blocks.Map(s.Body)
		if err != nil {
			return nil, err
		}
		svc = svc.Add(elastic.NewSearchRequest().Index(s.Indices...).Source(src))
	}
	resp, err = svc.Do(ctx)
	return resp, err
}

// DeleteByQuery deletes every document matching a query block. The
// block describes the query object itself, not the enclosing body:
//
//	client.DeleteByQuery(ctx, []string{"twitter"}, func(b *blocks.Body) {
//	    b.Set("term.user", "kimchy")
//	})
func (c *Client) DeleteByQuery(ctx context.Context, indices []string, query Block) (resp *elastic.BulkIndexByScrollResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("delete_by_query", err) }()

	resp, err = c.es.DeleteByQuery(indices...).Query(Query(query)).Do(ctx)
	if err != nil {
		ctxlog.L(ctx).Error("error deleting by query",
			zap.Strings("indices", indices), zap.Error(err))
	}
	return resp, err
}

// Scroll starts a scrolling search over a query block.
// Callers continue with the wrapped client's scroll service using the
// returned ScrollId.
func (c *Client) Scroll(ctx context.Context, indices []string, query Block, keepAlive string) (resp *elastic.SearchResult, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("scroll", err) }()

	svc := c.es.Scroll(indices...).Query(Query(query))
	if keepAlive != "" {
		svc = svc.Scroll(keepAlive)
	}
	resp, err = svc.Do(ctx)
	return resp, err
}
