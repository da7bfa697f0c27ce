// Package esload implements the esload App, which bulk-loads NDJSON
// documents into Elasticsearch.
package esload

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff" // Exponential backoff retries.
	"github.com/google/uuid"      // Generate document IDs.
	"github.com/pkg/errors"       // Wrap errors with context.
	"go.uber.org/zap"             // Logging.
	tomb "gopkg.in/tomb.v2"       // Goroutine lifecycle.

	esblocks "github.com/mintel/elasticsearch-blocks"             // Block-based client facade.
	"github.com/mintel/elasticsearch-blocks/internal/pkg/metrics" // Prometheus metrics helpers.
	"github.com/mintel/elasticsearch-blocks/pkg/blocks"           // Block to map conversion.
	"github.com/mintel/elasticsearch-blocks/pkg/ctxlog"           // Logger from context.
)

// Scanner line buffer limits. Single documents larger than
// maxLineBytes abort the load.
const (
	initialLineBytes = 64 * 1024
	maxLineBytes     = 4 * 1024 * 1024
)

// Config configures a Loader.
type Config struct {
	// Index to load documents into, unless a document carries its
	// own _index field.
	Index string

	// Document field to take the document ID from, when the document
	// has no _id field.
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
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	if c.RetryElapsed <= 0 {
		c.RetryElapsed = DefaultRetryElapsed
	}
	return c
}

// Stats summarizes a finished load.
type Stats struct {
	// Documents read from the input.
	Read int64

	// Documents successfully indexed.
	Indexed int64

	// Documents rejected by Elasticsearch.
	Failed int64
}

// Loader reads NDJSON documents, batches them, and bulk-indexes them
// through the client. Transport errors are retried with exponential
// backoff; documents Elasticsearch rejects are counted and logged,
// not retried.
type Loader struct {
	client *esblocks.Client
	conf   Config
	inst   *Instrumentation

	read    int64
	indexed int64
	failed  int64
}

// NewLoader returns a new Loader. Zero Config fields get defaults.
func NewLoader(client *esblocks.Client, conf Config, inst *Instrumentation) *Loader {
	return &Loader{
		client: client,
		conf:   conf.withDefaults(),
		inst:   inst,
	}
}

// Run loads documents from r until EOF or error. A reader goroutine
// parses lines into bulk operations while a flusher goroutine batches
// and sends them; Run returns when both finish, with a final partial
// flush on clean shutdown.
func (l *Loader) Run(ctx context.Context, r io.Reader) (Stats, error) {
	t, ctx := tomb.WithContext(ctx)
	ops := make(chan esblocks.BulkOp)

	t.Go(func() error {
		err := l.readLoop(ctx, r, ops)
		if err != nil {
			// Leave ops open: the dying tomb cancels ctx, which stops
			// the flusher without a final partial flush.
			return err
		}
		close(ops)
		return nil
	})
	t.Go(func() error {
		return l.flushLoop(ctx, ops)
	})

	err := t.Wait()
	stats := Stats{
		Read:    atomic.LoadInt64(&l.read),
		Indexed: atomic.LoadInt64(&l.indexed),
		Failed:  atomic.LoadInt64(&l.failed),
	}
	return stats, err
}

func (l *Loader) readLoop(ctx context.Context, r io.Reader, ops chan<- esblocks.BulkOp) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBytes), maxLineBytes)

	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		op, err := l.parseDocument(line)
		if err != nil {
			return errors.Wrapf(err, "line %d", lineno)
		}
		select {
		case ops <- op:
		case <-ctx.Done():
			return ctx.Err()
		}
		atomic.AddInt64(&l.read, 1)
		l.inst.DocsRead.Inc()
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "line %d", lineno+1)
	}
	return nil
}

// parseDocument turns one NDJSON line into a bulk index operation.
// The _index and _id fields override the configured defaults and are
// stripped from the document body.
func (l *Loader) parseDocument(line []byte) (esblocks.BulkOp, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(line, &fields); err != nil {
		return esblocks.BulkOp{}, errors.Wrap(err, "invalid JSON document")
	}

	index := l.conf.Index
	if v, ok := fields["_index"].(string); ok && v != "" {
		index = v
	}
	delete(fields, "_index")

	var id string
	if v, ok := fields["_id"].(string); ok {
		id = v
	}
	delete(fields, "_id")
	if id == "" && l.conf.IDField != "" {
		if v, ok := fields[l.conf.IDField].(string); ok {
			id = v
		}
	}
	if id == "" && l.conf.GenerateIDs {
		id = uuid.New().String()
	}

	if index == "" {
		return esblocks.BulkOp{}, errors.New("document has no index; set --index or an _index field")
	}

	doc := fields
	return esblocks.BulkIndex(index, id, func(b *blocks.Body) {
		// Field names from input may contain dots; keep them literal.
		for k, v := range doc {
			b.Field(k, v)
		}
	}), nil
}

func (l *Loader) flushLoop(ctx context.Context, ops <-chan esblocks.BulkOp) error {
	batch := make([]esblocks.BulkOp, 0, l.conf.BatchSize)
	ticker := time.NewTicker(l.conf.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case op, ok := <-ops:
			if !ok {
				return l.flush(ctx, batch)
			}
			batch = append(batch, op)
			if len(batch) >= l.conf.BatchSize {
				if err := l.flush(ctx, batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		case <-ticker.C:
			if err := l.flush(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// flush sends one bulk request, retrying transport errors with
// exponential backoff up to Config.RetryElapsed. Per-document
// rejections are permanent: they're logged and counted, never
// retried.
func (l *Loader) flush(ctx context.Context, batch []esblocks.BulkOp) error {
	if len(batch) == 0 {
		return nil
	}
	logger := ctxlog.L(ctx).Named("esload.flush").With(zap.Int("batch_size", len(batch)))

	attempt := func() error {
		timer := metrics.NewVecTimer(l.inst.FlushDuration)
		resp, err := l.client.Bulk(ctx, batch...)
		timer.ObserveErr(err)
		if err != nil {
			logger.Warn("bulk flush failed", zap.Error(err))
			return err
		}

		failed := resp.Failed()
		succeeded := int64(len(batch) - len(failed))
		atomic.AddInt64(&l.indexed, succeeded)
		atomic.AddInt64(&l.failed, int64(len(failed)))
		l.inst.DocsIndexed.Add(float64(succeeded))
		l.inst.DocsFailed.Add(float64(len(failed)))

		for _, item := range failed {
			fields := []zap.Field{
				zap.String("index", item.Index),
				zap.String("id", item.Id),
				zap.Int("status", item.Status),
			}
			if item.Error != nil {
				fields = append(fields,
					zap.String("error_type", item.Error.Type),
					zap.String("error_reason", item.Error.Reason),
				)
			}
			logger.Error("document rejected", fields...)
		}
		logger.Debug("flushed batch", zap.Int64("succeeded", succeeded), zap.Int("failed", len(failed)))
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = l.conf.RetryElapsed
	return backoff.Retry(attempt, backoff.WithContext(bo, ctx))
}
