package es

import (
	"net/http"
	"testing"

	elastic "github.com/olivere/elastic/v7" // Elasticsearch client.
	"github.com/stretchr/testify/assert"    // Test assertions.
	gock "gopkg.in/h2non/gock.v1"           // HTTP request mocking.

	"github.com/mintel/elasticsearch-blocks/internal/pkg/testutil" // Testing utilities.
)

func TestClusterGetSettingsService(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client, err := elastic.NewSimpleClient()
		if err != nil {
			panic(err)
		}

		gock.New(elastic.DefaultURL).
			Get("/_cluster/settings").
			MatchParam("include_defaults", "true").
			Reply(http.StatusOK).
			BodyString(testutil.LoadTestData("cluster_settings_defaults.json"))

		resp, err := NewClusterGetSettingsService(client).Defaults(true).Do(ctx)
		assert.NoError(t, err)
		assert.NotEmpty(t, resp.Defaults.Map())
		assert.Equal(t, "all", resp.Persistent.Get("cluster.routing.allocation.enable").String())
		assert.Condition(t, gock.IsDone)
	})

	t.Run("filter path", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client, err := elastic.NewSimpleClient()
		if err != nil {
			panic(err)
		}

		gock.New(elastic.DefaultURL).
			Get("/_cluster/settings").
			MatchParam("filter_path", `\*.cluster.routing.\*`).
			Reply(http.StatusOK).
			BodyString(`{"persistent":{"cluster":{"routing":{"allocation":{"enable":"none"}}}},"transient":{}}`)

		resp, err := NewClusterGetSettingsService(client).
			FilterPath("*.cluster.routing.*").
			Do(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "none", resp.Persistent.Get("cluster.routing.allocation.enable").String())
		assert.Nil(t, resp.Defaults)
		assert.Condition(t, gock.IsDone)
	})

	t.Run("error", func(t *testing.T) {
		ctx, _, teardown := testutil.ClientTestSetup(t)
		defer teardown()
		defer gock.CleanUnmatchedRequest()
		client, err := elastic.NewSimpleClient()
		if err != nil {
			panic(err)
		}

		gock.New(elastic.DefaultURL).
			Get("/_cluster/settings").
			Reply(http.StatusInternalServerError).
			BodyString(http.StatusText(http.StatusInternalServerError))

		_, err = NewClusterGetSettingsService(client).Do(ctx)
		assert.Error(t, err)
		assert.Condition(t, gock.IsDone)
	})
}
