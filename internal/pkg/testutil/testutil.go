// Package testutil contains shared test setup helpers.
package testutil

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httputil"
	"path/filepath"
	"testing"

	"go.uber.org/zap" // Logging.
	"go.uber.org/zap/zaptest"
	gock "gopkg.in/h2non/gock.v1" // HTTP request mocking.
)

// TestLogger returns a zap Logger that writes to the given test.
// It also replaces the zap globals and redirects the stdlib log,
// undone by the returned teardown func.
func TestLogger(t *testing.T) (logger *zap.Logger, teardown func()) {
	logger = zaptest.NewLogger(t)
	undoGlobals := zap.ReplaceGlobals(logger)
	undoStdLog := zap.RedirectStdLog(logger)
	teardown = func() {
		undoStdLog()
		undoGlobals()
		_ = logger.Sync()
	}
	return
}

// GockLogObserver returns a gock.ObserverFunc that logs intercepted
// HTTP requests to a zap Logger.
func GockLogObserver(logger *zap.Logger) gock.ObserverFunc {
	return func(request *http.Request, mock gock.Mock) {
		b, _ := httputil.DumpRequestOut(request, true)
		logger.Debug("gock intercepted http request",
			zap.String("request", string(b)),
			zap.Bool("matches_mock", mock != nil),
		)
	}
}

// ClientTestSetup sets up zap test logging and gock HTTP interception
// for a client test, returning a cancelable context.
func ClientTestSetup(t *testing.T) (ctx context.Context, logger *zap.Logger, teardown func()) {
	logger, teardownLogging := TestLogger(t)

	gock.Intercept()
	gock.Observe(GockLogObserver(logger))

	ctx, cancel := context.WithCancel(context.Background())

	teardown = func() {
		cancel()
		gock.OffAll()
		gock.Observe(nil)
		teardownLogging()
	}

	return
}

// LoadTestData loads a file from the `testdata` directory relative to
// the test's working directory.
func LoadTestData(name string) string {
	path := filepath.Join("testdata", name)
	data, err := ioutil.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load test data file %s: %s", name, err))
	}
	return string(data)
}
