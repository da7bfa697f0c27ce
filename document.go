package esblocks

import (
	"context"
	"fmt"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"go.uber.org/zap"                       // Logging.

	"github.com/mintel/elasticsearch-blocks/pkg/blocks" // Block to map conversion.
	"github.com/mintel/elasticsearch-blocks/pkg/ctxlog" // Logger from context.
)

// DocRef identifies a document for multi-document operations.
type DocRef struct {
	Index string
	ID    string
}

// Index indexes a document described by a block. An empty id lets
// Elasticsearch generate one.
func (c *Client) Index(ctx context.Context, index, id string, doc Block) (resp *elastic.IndexResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("index", err) }()

	src, err := blocks.Map(doc)
	if err != nil {
		return nil, err
	}
	svc := c.es.Index().Index(index).BodyJson(src)
	if id != "" {
		svc = svc.Id(id)
	}
	resp, err = svc.Do(ctx)
	if err != nil {
		ctxlog.L(ctx).Error("error indexing document",
			zap.String("index", index), zap.String("id", id), zap.Error(err))
	}
	return resp, err
}

// Get retrieves a document by index and id.
func (c *Client) Get(ctx context.Context, index, id string) (resp *elastic.GetResult, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("get", err) }()

	resp, err = c.es.Get().Index(index).Id(id).Do(ctx)
	return resp, err
}

// Exists reports whether a document exists.
func (c *Client) Exists(ctx context.Context, index, id string) (ok bool, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("exists", err) }()

	ok, err = c.es.Exists().Index(index).Id(id).Do(ctx)
	return ok, err
}

// Delete deletes a document by index and id.
func (c *Client) Delete(ctx context.Context, index, id string) (resp *elastic.DeleteResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("delete", err) }()

	resp, err = c.es.Delete().Index(index).Id(id).Do(ctx)
	return resp, err
}

// Update updates a document. The block describes the update API body:
// "doc", "doc_as_upsert", "upsert", "script", "scripted_upsert" and
// "detect_noop" keys are mapped onto the wrapped client's update
// request; anything else is an error.
//
//	client.Update(ctx, "twitter", "1", func(b *blocks.Body) {
//	    b.Set("doc.retweets", 42)
//	    b.Set("doc_as_upsert", true)
//	})
func (c *Client) Update(ctx context.Context, index, id string, body Block) (resp *elastic.UpdateResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("update", err) }()

	parts, err := parseUpdateBody(body)
	if err != nil {
		return nil, err
	}
	svc := c.es.Update().Index(index).Id(id)
	if parts.doc != nil {
		svc = svc.Doc(parts.doc)
	}
	if parts.docAsUpsert != nil {
		svc = svc.DocAsUpsert(*parts.docAsUpsert)
	}
	if parts.upsert != nil {
		svc = svc.Upsert(parts.upsert)
	}
	if parts.script != nil {
		svc = svc.Script(parts.script)
	}
	if parts.scriptedUpsert != nil {
		svc = svc.ScriptedUpsert(*parts.scriptedUpsert)
	}
	if parts.detectNoop != nil {
		svc = svc.DetectNoop(*parts.detectNoop)
	}
	resp, err = svc.Do(ctx)
	if err != nil {
		ctxlog.L(ctx).Error("error updating document",
			zap.String("index", index), zap.String("id", id), zap.Error(err))
	}
	return resp, err
}

// MultiGet retrieves multiple documents in one request.
func (c *Client) MultiGet(ctx context.Context, refs ...DocRef) (resp *elastic.MgetResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("mget", err) }()

	svc := c.es.MultiGet()
	for _, ref := range refs {
		svc = svc.Add(elastic.NewMultiGetItem().Index(ref.Index).Id(ref.ID))
	}
	resp, err = svc.Do(ctx)
	return resp, err
}

// updateParts is an update API body decomposed into the pieces the
// wrapped client's builders accept.
type updateParts struct {
	doc            interface{}
	docAsUpsert    *bool
	upsert         interface{}
	script         *elastic.Script
	scriptedUpsert *bool
	detectNoop     *bool
}

func parseUpdateBody(body Block) (*updateParts, error) {
	m, err := blocks.Map(body)
	if err != nil {
		return nil, err
	}
	parts := &updateParts{}
	for key, value := range m {
		switch key {
		case "doc":
			parts.doc = value
		case "doc_as_upsert":
			b, err := toBool(key, value)
			if err != nil {
				return nil, err
			}
			parts.docAsUpsert = b
		case "upsert":
			parts.upsert = value
		case "script":
			script, err := toScript(value)
			if err != nil {
				return nil, err
			}
			parts.script = script
		case "scripted_upsert":
			b, err := toBool(key, value)
			if err != nil {
				return nil, err
			}
			parts.scriptedUpsert = b
		case "detect_noop":
			b, err := toBool(key, value)
			if err != nil {
				return nil, err
			}
			parts.detectNoop = b
		default:
			return nil, fmt.Errorf("esblocks: unsupported update body key %q", key)
		}
	}
	if parts.doc == nil && parts.script == nil {
		return nil, fmt.Errorf("esblocks: update body requires a doc or a script")
	}
	return parts, nil
}

func toBool(key string, value interface{}) (*bool, error) {
	b, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("esblocks: update body key %q must be a bool, got %T", key, value)
	}
	return &b, nil
}

// toScript maps a {"source": ..., "lang": ..., "params": {...}} (or
// {"id": ...} for stored scripts) object onto elastic.Script.
func toScript(value interface{}) (*elastic.Script, error) {
	switch sv := value.(type) {
	case string:
		return elastic.NewScriptInline(sv), nil
	case map[string]interface{}:
		var script *elastic.Script
		if src, ok := sv["source"].(string); ok {
			script = elastic.NewScriptInline(src)
		} else if id, ok := sv["id"].(string); ok {
			script = elastic.NewScriptStored(id)
		} else {
			return nil, fmt.Errorf("esblocks: script object requires a string source or id")
		}
		if lang, ok := sv["lang"].(string); ok {
			script = script.Lang(lang)
		}
		if params, ok := sv["params"].(map[string]interface{}); ok {
			script = script.Params(params)
		}
		return script, nil
	}
	return nil, fmt.Errorf("esblocks: script must be a string or an object, got %T", value)
}
