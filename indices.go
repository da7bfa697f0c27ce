package esblocks

import (
	"context"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"go.uber.org/zap"                       // Logging.

	"github.com/mintel/elasticsearch-blocks/pkg/blocks" // Block to map conversion.
	"github.com/mintel/elasticsearch-blocks/pkg/ctxlog" // Logger from context.
	"github.com/mintel/elasticsearch-blocks/pkg/es"     // Elasticsearch client extensions.
)

// CreateIndex creates an index. The block describes settings,
// mappings and aliases; nil creates the index with defaults.
func (c *Client) CreateIndex(ctx context.Context, name string, body Block) (resp *elastic.IndicesCreateResult, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("create_index", err) }()

	svc := c.es.CreateIndex(name)
	if body != nil {
		src, err := blocks.Map(body)
		if err != nil {
			return nil, err
		}
		svc = svc.BodyJson(src)
	}
	resp, err = svc.Do(ctx)
	if err != nil {
		ctxlog.L(ctx).Error("error creating index",
			zap.String("index", name), zap.Error(err))
	}
	return resp, err
}

// DeleteIndex deletes indices.
func (c *Client) DeleteIndex(ctx context.Context, names ...string) (resp *elastic.IndicesDeleteResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("delete_index", err) }()

	resp, err = c.es.DeleteIndex(names...).Do(ctx)
	return resp, err
}

// IndexExists reports whether an index exists.
func (c *Client) IndexExists(ctx context.Context, name string) (ok bool, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("index_exists", err) }()

	ok, err = c.es.IndexExists(name).Do(ctx)
	return ok, err
}

// OpenIndex opens a closed index.
func (c *Client) OpenIndex(ctx context.Context, name string) (resp *elastic.IndicesOpenResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("open_index", err) }()

	resp, err = c.es.OpenIndex(name).Do(ctx)
	return resp, err
}

// CloseIndex closes an index.
func (c *Client) CloseIndex(ctx context.Context, name string) (resp *elastic.IndicesCloseResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("close_index", err) }()

	resp, err = c.es.CloseIndex(name).Do(ctx)
	return resp, err
}

// Refresh refreshes indices, making recent writes visible to search.
func (c *Client) Refresh(ctx context.Context, indices ...string) (resp *elastic.RefreshResult, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("refresh", err) }()

	resp, err = c.es.Refresh(indices...).Do(ctx)
	return resp, err
}

// Flush flushes indices to disk.
func (c *Client) Flush(ctx context.Context, indices ...string) (resp *elastic.IndicesFlushResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("flush", err) }()

	resp, err = c.es.Flush(indices...).Do(ctx)
	return resp, err
}

// PutMapping updates an index's field mappings from a block:
//
//	client.PutMapping(ctx, "twitter", func(b *blocks.Body) {
//	    b.Set("properties.user.type", "keyword")
//	})
func (c *Client) PutMapping(ctx context.Context, index string, body Block) (resp *elastic.PutMappingResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("put_mapping", err) }()

	src, err := blocks.Map(body)
	if err != nil {
		return nil, err
	}
	resp, err = c.es.PutMapping().Index(index).BodyJson(src).Do(ctx)
	return resp, err
}

// GetMapping returns an index's field mappings.
func (c *Client) GetMapping(ctx context.Context, index string) (mappings map[string]interface{}, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("get_mapping", err) }()

	mappings, err = c.es.GetMapping().Index(index).Do(ctx)
	return mappings, err
}

// PutIndexSettings updates an index's settings from a block.
func (c *Client) PutIndexSettings(ctx context.Context, index string, body Block) (resp *elastic.IndicesPutSettingsResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("put_index_settings", err) }()

	src, err := blocks.Map(body)
	if err != nil {
		return nil, err
	}
	resp, err = c.es.IndexPutSettings(index).BodyJson(src).Do(ctx)
	return resp, err
}

// GetIndexSettings returns the settings of indices.
func (c *Client) GetIndexSettings(ctx context.Context, indices ...string) (resp map[string]*elastic.IndicesGetSettingsResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("get_index_settings", err) }()

	resp, err = c.es.IndexGetSettings(indices...).Do(ctx)
	return resp, err
}

// Aliases returns the index/alias table.
func (c *Client) Aliases(ctx context.Context) (resp *elastic.AliasesResult, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("aliases", err) }()

	resp, err = c.es.Aliases().Do(ctx)
	return resp, err
}

// AddAlias points an alias at an index.
func (c *Client) AddAlias(ctx context.Context, index, alias string) (resp *elastic.AliasResult, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("add_alias", err) }()

	resp, err = c.es.Alias().Add(index, alias).Do(ctx)
	return resp, err
}

// RemoveAlias removes an alias from an index.
func (c *Client) RemoveAlias(ctx context.Context, index, alias string) (resp *elastic.AliasResult, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("remove_alias", err) }()

	resp, err = c.es.Alias().Remove(index, alias).Do(ctx)
	return resp, err
}

// UpdateAliases applies alias actions atomically. The block describes
// the actions body of the alias API:
//
//	client.UpdateAliases(ctx, func(b *blocks.Body) {
//	    b.Array("actions",
//	        blocks.Block(func(b *blocks.Body) {
//	            b.Set("remove.index", "tweets-1")
//	            b.Set("remove.alias", "tweets")
//	        }),
//	        blocks.Block(func(b *blocks.Body) {
//	            b.Set("add.index", "tweets-2")
//	            b.Set("add.alias", "tweets")
//	        }),
//	    )
//	})
func (c *Client) UpdateAliases(ctx context.Context, actions Block) (resp *es.UpdateAliasesResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("update_aliases", err) }()

	resp, err = es.NewUpdateAliasesService(c.es).Body(actions).Do(ctx)
	return resp, err
}

// PutIndexTemplate registers an index template from a block
// (index_patterns, settings, mappings...).
func (c *Client) PutIndexTemplate(ctx context.Context, name string, body Block) (resp *elastic.IndicesPutTemplateResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("put_index_template", err) }()

	src, err := blocks.Map(body)
	if err != nil {
		return nil, err
	}
	resp, err = c.es.IndexPutTemplate(name).BodyJson(src).Do(ctx)
	return resp, err
}

// DeleteIndexTemplate deletes an index template.
func (c *Client) DeleteIndexTemplate(ctx context.Context, name string) (resp *elastic.IndicesDeleteTemplateResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("delete_index_template", err) }()

	resp, err = c.es.IndexDeleteTemplate(name).Do(ctx)
	return resp, err
}

// IndexTemplateExists reports whether an index template exists.
func (c *Client) IndexTemplateExists(ctx context.Context, name string) (ok bool, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("index_template_exists", err) }()

	ok, err = c.es.IndexTemplateExists(name).Do(ctx)
	return ok, err
}
