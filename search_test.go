package esblocks

import (
	"net/http"
	"testing"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/stretchr/testify/assert"    // Test assertions.
	gock "gopkg.in/h2non/gock.v1"           // HTTP request mocking.

	"github.com/mintel/elasticsearch-blocks/internal/pkg/testutil" // Testing utilities.
	"github.com/mintel/elasticsearch-blocks/pkg/blocks"            // Block to map conversion.
)

const searchResultBody = `{
	"took": 3,
	"timed_out": false,
	"hits": {
		"total": {"value": 1, "relation": "eq"},
		"max_score": 1.0,
		"hits": [
			{"_index": "twitter", "_id": "1", "_score": 1.0, "_source": {"user": "kimchy"}}
		]
	}
}`

func TestClientSearch(t *testing.T) {
	t.Run("term query", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client := newTestClient(t)

		gock.New(elastic.DefaultURL).
			Post("/twitter/_search").
			JSON(map[string]interface{}{
				"query": map[string]interface{}{
					"term": map[string]interface{}{"user": "kimchy"},
				},
				"size": 10,
			}).
			Reply(http.StatusOK).
			BodyString(searchResultBody)

		resp, err := client.Search(ctx, []string{"twitter"}, func(b *blocks.Body) {
			b.Set("query.term.user", "kimchy")
			b.Set("size", 10)
		})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), resp.TotalHits())
		assert.Condition(t, gock.IsDone)
	})

	t.Run("nil body matches all", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client := newTestClient(t)

		gock.New(elastic.DefaultURL).
			Post("/twitter/_search").
			Reply(http.StatusOK).
			BodyString(searchResultBody)

		resp, err := client.Search(ctx, []string{"twitter"}, nil)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), resp.TotalHits())
		assert.Condition(t, gock.IsDone)
	})

	t.Run("bool query with filter array", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client := newTestClient(t)

		gock.New(elastic.DefaultURL).
			Post("/twitter/_search").
			JSON(map[string]interface{}{
				"query": map[string]interface{}{
					"bool": map[string]interface{}{
						"filter": []interface{}{
							map[string]interface{}{
								"term": map[string]interface{}{"state": "open"},
							},
							map[string]interface{}{
								"range": map[string]interface{}{
									"age": map[string]interface{}{"gte": 21},
								},
							},
						},
					},
				},
			}).
			Reply(http.StatusOK).
			BodyString(searchResultBody)

		_, err := client.Search(ctx, []string{"twitter"}, func(b *blocks.Body) {
			b.Array("query.bool.filter",
				blocks.Block(func(b *blocks.Body) { b.Set("term.state", "open") }),
				blocks.Block(func(b *blocks.Body) { b.Set("range.age.gte", 21) }),
			)
		})
		assert.NoError(t, err)
		assert.Condition(t, gock.IsDone)
	})

	t.Run("bad block", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		client := newTestClient(t)

		_, err := client.Search(ctx, []string{"twitter"}, func(b *blocks.Body) {
			b.Set("query", 1)
			b.Set("query.term.user", "kimchy")
		})
		assert.Error(t, err)
	})
}

func TestClientCount(t *testing.T) {
	ctx, _, teardown := testutil.ClientTestSetup(t)
	defer teardown()
	defer gock.CleanUnmatchedRequest()
	client := newTestClient(t)

	gock.New(elastic.DefaultURL).
		Post("/twitter/_count").
		Reply(http.StatusOK).
		BodyString(`{"count": 7}`)

	count, err := client.Count(ctx, []string{"twitter"}, func(b *blocks.Body) {
		b.Set("query.term.user", "kimchy")
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.Condition(t, gock.IsDone)
}

func TestClientMultiSearch(t *testing.T) {
	ctx, _, teardown := testutil.ClientTestSetup(t)
	defer teardown()
	defer gock.CleanUnmatchedRequest()
	client := newTestClient(t)

	gock.New(elastic.DefaultURL).
		Post("/_msearch").
		Reply(http.StatusOK).
		BodyString(`{"responses": [` + searchResultBody + `,` + searchResultBody + `]}`)

	resp, err := client.MultiSearch(ctx,
		NamedSearch{
			Indices: []string{"twitter"},
			Body: func(b *blocks.Body) {
				b.Set("query.term.user", "kimchy")
			},
		},
		NamedSearch{
			Indices: []string{"twitter"},
			Body: func(b *blocks.Body) {
				b.Set("query.match_all", map[string]interface{}{})
			},
		},
	)
	assert.NoError(t, err)
	assert.Len(t, resp.Responses, 2)
	assert.Condition(t, gock.IsDone)
}

func TestClientDeleteByQuery(t *testing.T) {
	ctx, _, teardown := testutil.ClientTestSetup(t)
	defer teardown()
	defer gock.CleanUnmatchedRequest()
	client := newTestClient(t)

	gock.New(elastic.DefaultURL).
		Post("/twitter/_delete_by_query").
		JSON(map[string]interface{}{
			"query": map[string]interface{}{
				"term": map[string]interface{}{"user": "kimchy"},
			},
		}).
		Reply(http.StatusOK).
		BodyString(`{"took": 10, "deleted": 3, "failures": []}`)

	resp, err := client.DeleteByQuery(ctx, []string{"twitter"}, func(b *blocks.Body) {
		b.Set("term.user", "kimchy")
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), resp.Deleted)
	assert.Condition(t, gock.IsDone)
}

func TestClientScroll(t *testing.T) {
	ctx, _, teardown := testutil.ClientTestSetup(t)
	defer teardown()
	defer gock.CleanUnmatchedRequest()
	client := newTestClient(t)

	gock.New(elastic.DefaultURL).
		Post("/twitter/_search").
		MatchParam("scroll", "1m").
		Reply(http.StatusOK).
		BodyString(`{"_scroll_id": "scroll-1", "hits": {"total": {"value": 1, "relation": "eq"}, "hits": [{"_index": "twitter", "_id": "1"}]}}`)

	resp, err := client.Scroll(ctx, []string{"twitter"}, func(b *blocks.Body) {
		b.Set("match_all", map[string]interface{}{})
	}, "1m")
	assert.NoError(t, err)
	assert.Equal(t, "scroll-1", resp.ScrollId)
	assert.Condition(t, gock.IsDone)
}

func TestQueryAdapter(t *testing.T) {
	src, err := Query(func(b *blocks.Body) {
		b.Set("term.user", "kimchy")
	}).Source()
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"term": map[string]interface{}{"user": "kimchy"},
	}, src)

	_, err = Query(func(b *blocks.Body) {
		b.Set("a", 1)
		b.Set("a.b", 2)
	}).Source()
	assert.Error(t, err)
}
