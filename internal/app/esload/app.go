package esload

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus" // Prometheus metrics.
	"go.uber.org/zap"                                // Logging.
	kingpin "gopkg.in/alecthomas/kingpin.v2"         // Command line flag parsing.

	"github.com/mintel/elasticsearch-blocks/pkg/ctxlog" // Logger from context.
)

const (
	Name  = "esload"
	Usage = "Bulk-load NDJSON documents into Elasticsearch."
)

// App holds application state.
type App struct {
	*kingpin.Application

	flags  *Flags           // Command line flags
	health *Healthchecks    // Healthchecks HTTP handler
	inst   *Instrumentation // App-specific Prometheus metrics
}

// NewApp returns a new App.
func NewApp(r prometheus.Registerer) (*App, error) {
	app := &App{
		Application: kingpin.New(filepath.Base(os.Args[0]), Usage),
	}
	app.flags = NewFlags(app.Application)
	app.inst = NewInstrumentation(Name)
	if err := r.Register(app.inst); err != nil {
		return nil, err
	}
	app.health = NewHealthchecks(r, Name)
	return app, nil
}

// Main is the main method of App and should be called
// in main.main() after flag parsing.
func (app *App) Main(g prometheus.Gatherer) {
	logger := app.flags.NewLogger()
	defer func() { _ = logger.Sync() }()

	// Serve healthchecks and Prometheus metrics.
	go func() {
		mux := app.flags.ConfigureMux(http.NewServeMux(), app.health.Handler, g)
		srv := app.flags.NewServer(mux)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("error serving healthchecks/metrics", zap.Error(err))
		}
	}()

	ctx := ctxlog.WithLogger(context.Background(), logger)

	client, err := app.flags.NewClient(ctx)
	if err != nil {
		logger.Fatal("error connecting to Elasticsearch", zap.Error(err))
	}
	defer client.Stop()
	app.health.ElasticSessionCreated = true

	in, err := app.openInput()
	if err != nil {
		logger.Fatal("error opening input", zap.Error(err))
	}
	defer in.Close()

	loader := NewLoader(client, app.flags.LoaderConfig(), app.inst)
	stats, err := loader.Run(ctx, in)
	statFields := []zap.Field{
		zap.Int64("read", stats.Read),
		zap.Int64("indexed", stats.Indexed),
		zap.Int64("failed", stats.Failed),
	}
	if err != nil {
		logger.Fatal("load failed", append(statFields, zap.Error(err))...)
	}
	logger.Info("load complete", statFields...)
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

// openInput opens the flagged input file, with "-" meaning stdin.
func (app *App) openInput() (io.ReadCloser, error) {
	if app.flags.Input == "-" {
		return os.Stdin, nil
	}
	return os.Open(app.flags.Input)
}
