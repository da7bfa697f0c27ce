package esblocks

import (
	"context"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.

	"github.com/mintel/elasticsearch-blocks/pkg/blocks" // Block to map conversion.
)

// BulkOp is one operation in a Bulk request. Build them with
// BulkIndex, BulkCreate, BulkUpdate and BulkDelete.
type BulkOp struct {
	build func() (elastic.BulkableRequest, error)
}

// BulkIndex indexes a document (creating or replacing it).
// An empty id lets Elasticsearch generate one.
func BulkIndex(index, id string, doc Block) BulkOp {
	return BulkOp{build: func() (elastic.BulkableRequest, error) {
		src, err := blocks.Map(doc)
		if err != nil {
			return nil, err
		}
		req := elastic.NewBulkIndexRequest().Index(index).Doc(src)
		if id != "" {
			req = req.Id(id)
		}
		return req, nil
	}}
}

// BulkCreate indexes a document, failing if it already exists.
func BulkCreate(index, id string, doc Block) BulkOp {
	return BulkOp{build: func() (elastic.BulkableRequest, error) {
		src, err := blocks.Map(doc)
		if err != nil {
			return nil, err
		}
		req := elastic.NewBulkCreateRequest().Index(index).Doc(src)
		if id != "" {
			req = req.Id(id)
		}
		return req, nil
	}}
}

// BulkUpdate partially updates a document. The block describes the
// update API body, with the same keys Client.Update accepts.
func BulkUpdate(index, id string, body Block) BulkOp {
	return BulkOp{build: func() (elastic.BulkableRequest, error) {
		parts, err := parseUpdateBody(body)
		if err != nil {
			return nil, err
		}
		req := elastic.NewBulkUpdateRequest().Index(index).Id(id)
		if parts.doc != nil {
			req = req.Doc(parts.doc)
		}
		if parts.docAsUpsert != nil {
			req = req.DocAsUpsert(*parts.docAsUpsert)
		}
		if parts.upsert != nil {
			req = req.Upsert(parts.upsert)
		}
		if parts.script != nil {
			req = req.Script(parts.script)
		}
		if parts.scriptedUpsert != nil {
			req = req.ScriptedUpsert(*parts.scriptedUpsert)
		}
		if parts.detectNoop != nil {
			req = req.DetectNoop(*parts.detectNoop)
		}
		return req, nil
	}}
}

// BulkDelete deletes a document.
func BulkDelete(index, id string) BulkOp {
	return BulkOp{build: func() (elastic.BulkableRequest, error) {
		return elastic.NewBulkDeleteRequest().Index(index).Id(id), nil
	}}
}

// Bulk executes operations in one bulk request. A block conversion
// error in any operation aborts the whole call before anything is
// sent. Per-document failures come back in the response; check
// resp.Failed().
func (c *Client) Bulk(ctx context.Context, ops ...BulkOp) (resp *elastic.BulkResponse, err error) {
	timer := newRequestTimer()
	defer func() { timer.done("bulk", err) }()

	svc := c.es.Bulk()
	for _, op := range ops {
		req, err := op.build()
		if err != nil {
			return nil, err
		}
		svc = svc.Add(req)
	}
	resp, err = svc.Do(ctx)
	return resp, err
}
