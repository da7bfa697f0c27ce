package esblocks

import (
	"net/http"
	"testing"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/stretchr/testify/assert"    // Test assertions.
	"github.com/stretchr/testify/require"
	gock "gopkg.in/h2non/gock.v1" // HTTP request mocking.

	"github.com/mintel/elasticsearch-blocks/internal/pkg/testutil" // Testing utilities.
	"github.com/mintel/elasticsearch-blocks/pkg/blocks"            // Block to map conversion.
)

func newTestClient(t *testing.T) *Client {
	esClient, err := elastic.NewSimpleClient()
	require.NoError(t, err)
	return NewClient(esClient)
}

func TestClientIndex(t *testing.T) {
	t.Run("with id", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client := newTestClient(t)

		gock.New(elastic.DefaultURL).
			Put("/twitter/_doc/1").
			JSON(map[string]interface{}{
				"user": "kimchy",
				"location": map[string]interface{}{
					"lat": 41.12,
					"lon": -71.34,
				},
			}).
			Reply(http.StatusCreated).
			BodyString(`{"_index":"twitter","_id":"1","_version":1,"result":"created"}`)

		resp, err := client.Index(ctx, "twitter", "1", func(b *blocks.Body) {
			b.Set("user", "kimchy")
			b.Set("location.lat", 41.12)
			b.Set("location.lon", -71.34)
		})
		assert.NoError(t, err)
		assert.Equal(t, "created", resp.Result)
		assert.Condition(t, gock.IsDone)
	})

	t.Run("auto id", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client := newTestClient(t)

		gock.New(elastic.DefaultURL).
			Post("/twitter/_doc").
			Reply(http.StatusCreated).
			BodyString(`{"_index":"twitter","_id":"generated","_version":1,"result":"created"}`)

		resp, err := client.Index(ctx, "twitter", "", func(b *blocks.Body) {
			b.Set("user", "kimchy")
		})
		assert.NoError(t, err)
		assert.Equal(t, "generated", resp.Id)
		assert.Condition(t, gock.IsDone)
	})

	t.Run("bad block", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		client := newTestClient(t)

		_, err := client.Index(ctx, "twitter", "1", func(b *blocks.Body) {
			b.Set("a", 1)
			b.Set("a.b", 2)
		})
		assert.Error(t, err)
	})
}

func TestClientGet(t *testing.T) {
	ctx, _, teardown := testutil.ClientTestSetup(t)
	defer teardown()
	defer gock.CleanUnmatchedRequest()
	client := newTestClient(t)

	gock.New(elastic.DefaultURL).
		Get("/twitter/_doc/1").
		Reply(http.StatusOK).
		BodyString(`{"_index":"twitter","_id":"1","found":true,"_source":{"user":"kimchy"}}`)

	resp, err := client.Get(ctx, "twitter", "1")
	assert.NoError(t, err)
	assert.True(t, resp.Found)
	assert.Condition(t, gock.IsDone)
}

func TestClientExists(t *testing.T) {
	ctx, _, teardown := testutil.ClientTestSetup(t)
	defer teardown()
	defer gock.CleanUnmatchedRequest()
	client := newTestClient(t)

	gock.New(elastic.DefaultURL).
		Head("/twitter/_doc/1").
		Reply(http.StatusOK)

	ok, err := client.Exists(ctx, "twitter", "1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Condition(t, gock.IsDone)
}

func TestClientDelete(t *testing.T) {
	ctx, _, teardown := testutil.ClientTestSetup(t)
	defer teardown()
	defer gock.CleanUnmatchedRequest()
	client := newTestClient(t)

	gock.New(elastic.DefaultURL).
		Delete("/twitter/_doc/1").
		Reply(http.StatusOK).
		BodyString(`{"_index":"twitter","_id":"1","result":"deleted"}`)

	resp, err := client.Delete(ctx, "twitter", "1")
	assert.NoError(t, err)
	assert.Equal(t, "deleted", resp.Result)
	assert.Condition(t, gock.IsDone)
}

func TestClientUpdate(t *testing.T) {
	t.Run("doc", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client := newTestClient(t)

		gock.New(elastic.DefaultURL).
			Post("/twitter/_update/1").
			JSON(map[string]interface{}{
				"doc":           map[string]interface{}{"retweets": 42},
				"doc_as_upsert": true,
			}).
			Reply(http.StatusOK).
			BodyString(`{"_index":"twitter","_id":"1","result":"updated"}`)

		resp, err := client.Update(ctx, "twitter", "1", func(b *blocks.Body) {
			b.Set("doc.retweets", 42)
			b.Set("doc_as_upsert", true)
		})
		assert.NoError(t, err)
		assert.Equal(t, "updated", resp.Result)
		assert.Condition(t, gock.IsDone)
	})

	t.Run("script", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client := newTestClient(t)

		gock.New(elastic.DefaultURL).
			Post("/twitter/_update/1").
			Reply(http.StatusOK).
			BodyString(`{"_index":"twitter","_id":"1","result":"updated"}`)

		resp, err := client.Update(ctx, "twitter", "1", func(b *blocks.Body) {
			b.Object("script", func(b *blocks.Body) {
				b.Set("source", "ctx._source.retweets += params.count")
				b.Set("lang", "painless")
				b.Set("params.count", 4)
			})
		})
		assert.NoError(t, err)
		assert.Equal(t, "updated", resp.Result)
		assert.Condition(t, gock.IsDone)
	})

	t.Run("unsupported key", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		client := newTestClient(t)

		_, err := client.Update(ctx, "twitter", "1", func(b *blocks.Body) {
			b.Set("doc.user", "kimchy")
			b.Set("bogus", 1)
		})
		assert.Error(t, err)
	})

	t.Run("empty body", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		client := newTestClient(t)

		_, err := client.Update(ctx, "twitter", "1", func(b *blocks.Body) {})
		assert.Error(t, err)
	})
}

func TestClientMultiGet(t *testing.T) {
	ctx, _, teardown := testutil.ClientTestSetup(t)
	defer teardown()
	defer gock.CleanUnmatchedRequest()
	client := newTestClient(t)

	gock.New(elastic.DefaultURL).
		Get("/_mget").
		Reply(http.StatusOK).
		BodyString(`{"docs":[{"_index":"twitter","_id":"1","found":true},{"_index":"twitter","_id":"2","found":false}]}`)

	resp, err := client.MultiGet(ctx,
		DocRef{Index: "twitter", ID: "1"},
		DocRef{Index: "twitter", ID: "2"},
	)
	assert.NoError(t, err)
	assert.Len(t, resp.Docs, 2)
	assert.Condition(t, gock.IsDone)
}

func TestParseUpdateBodyScriptForms(t *testing.T) {
	t.Run("string script", func(t *testing.T) {
		parts, err := parseUpdateBody(func(b *blocks.Body) {
			b.Set("script", "ctx._source.counter += 1")
		})
		assert.NoError(t, err)
		assert.NotNil(t, parts.script)
	})

	t.Run("stored script", func(t *testing.T) {
		parts, err := parseUpdateBody(func(b *blocks.Body) {
			b.Set("script.id", "increment-counter")
			b.Set("script.params.amount", 2)
		})
		assert.NoError(t, err)
		assert.NotNil(t, parts.script)
	})

	t.Run("script without source or id", func(t *testing.T) {
		_, err := parseUpdateBody(func(b *blocks.Body) {
			b.Set("script.lang", "painless")
		})
		assert.Error(t, err)
	})

	t.Run("non bool doc_as_upsert", func(t *testing.T) {
		_, err := parseUpdateBody(func(b *blocks.Body) {
			b.Set("doc.user", "kimchy")
			b.Set("doc_as_upsert", "yes")
		})
		assert.Error(t, err)
	})
}
