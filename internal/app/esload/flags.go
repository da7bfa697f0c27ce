package esload

import (
	"time"

	"github.com/mintel/elasticsearch-blocks/internal/pkg/cmd"
)

// Defaults for flag values.
const (
	DefaultBatchSize     = 500
	DefaultFlushInterval = 5 * time.Second
	DefaultRetryElapsed  = time.Minute
	DefaultPort          = 8080
	DefaultRetryInit     = 150 * time.Millisecond
	DefaultRetryMax      = 1200 * time.Millisecond
)

// Flags holds the command line flags for the esload App.
type Flags struct {
	*cmd.ElasticsearchFlags
	*cmd.LoggingFlags
	*cmd.ServerFlags

	// Index to load documents into, unless a document carries its
	// own _index field.
	Index string

	// Document field to take the document ID from.
	IDField string

	// Assign a random UUID to documents without an ID instead of
	// letting Elasticsearch generate one.
	GenerateIDs bool

	// Flush a bulk request after this many documents.
	BatchSize int

	// Flush a partial batch after this long.
	FlushInterval time.Duration

	// Give up retrying a failing flush after this long.
	RetryElapsed time.Duration

	// File to read NDJSON documents from. "-" means stdin.
	Input string
}

// NewFlags returns a new Flags.
func NewFlags(app cmd.Flagger) *Flags {
	var f Flags

	f.ElasticsearchFlags = cmd.NewElasticsearchFlags(app, DefaultRetryInit, DefaultRetryMax)
	f.LoggingFlags = cmd.NewLoggingFlags(app, "info")
	f.ServerFlags = cmd.NewServerFlags(app, DefaultPort)

	app.Flag("index", "Index to load documents into. Documents may override with an _index field.").
		Short('i').
		StringVar(&f.Index)

	app.Flag("id-field", "Document field to take the document ID from.").
		StringVar(&f.IDField)

	app.Flag("generate-ids", "Assign a random UUID to documents without an ID.").
		BoolVar(&f.GenerateIDs)

	app.Flag("batch-size", "Flush a bulk request after this many documents.").
		Default("500").
		IntVar(&f.BatchSize)

	app.Flag("flush-interval", "Flush a partial batch after this long.").
		Default(DefaultFlushInterval.String()).
		DurationVar(&f.FlushInterval)

	app.Flag("retry-elapsed", "Give up retrying a failing flush after this long.").
		Default(DefaultRetryElapsed.String()).
		DurationVar(&f.RetryElapsed)

	app.Arg("file", "File of NDJSON documents to load. Defaults to stdin.").
		Default("-").
		StringVar(&f.Input)

	return &f
}

// LoaderConfig returns the loader Config described by the flags.
func (f *Flags) LoaderConfig() Config {
	return Config{
		Index:         f.Index,
		IDField:       f.IDField,
		GenerateIDs:   f.GenerateIDs,
		BatchSize:     f.BatchSize,
		FlushInterval: f.FlushInterval,
		RetryElapsed:  f.RetryElapsed,
	}
}
