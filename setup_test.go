package esblocks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"testing"

	elastic "github.com/olivere/elastic/v7"
	"github.com/ory/dockertest"
	"github.com/ory/dockertest/docker"
)

func randName(prefix string) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return prefix + "-" + hex.EncodeToString(b)
}

// runElasticsearch runs an Elasticsearch Docker container for
// integration tests and returns its handle plus a client connected to
// it. Skipped during -short testing.
func runElasticsearch(t *testing.T) (*dockertest.Resource, *elastic.Client, error) {
	if testing.Short() {
		t.Skipf("skipping during -short due to dependency on an Elasticsearch container")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to Docker: %s", err)
	}

	name := randName("esblocks-test")
	res, err := pool.RunWithOptions(&dockertest.RunOptions{
		Hostname:     name,
		Name:         name,
		Repository:   "docker.elastic.co/elasticsearch/elasticsearch-oss",
		Tag:          "7.2.0",
		ExposedPorts: []string{"9200/tcp"},
		Env: []string{
			"cluster.name=elasticsearch",
			"bootstrap.memory_lock=true",
			"discovery.type=single-node",
			"ES_JAVA_OPTS=-Xms256m -Xmx256m",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.Ulimits = []docker.ULimit{
			{Name: "nproc", Soft: 65536, Hard: 65536},
			{Name: "nofile", Soft: 65536, Hard: 65536},
			{Name: "memlock", Soft: -1, Hard: -1},
		}
	})
	if err != nil {
		return nil, nil, err
	}

	var esClient *elastic.Client
	if err := pool.Retry(func() error {
		u := "http://" + res.GetHostPort("9200/tcp")
		if esClient, err = elastic.NewSimpleClient(elastic.SetURL(u)); err != nil {
			return err
		}
		_, _, err = esClient.Ping(u).Do(context.Background())
		return err
	}); err != nil {
		res.Close()
		return nil, nil, fmt.Errorf("error waiting for Elasticsearch container: %s", err)
	}

	return res, esClient, nil
}
