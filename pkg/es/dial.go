package es

import (
	"context"
	"time"

	elastic "github.com/olivere/elastic/v7"
)

// DialContextRetry returns a new Elasticsearch client that retries
// requests with exponential backoff. Unlike elastic.DialContext on its
// own, the initial connection is also retried, which matters when the
// cluster is still starting when we are.
//
// If max <= 0 a plain client without a retrier is returned.
// Non-connection errors are never retried.
func DialContextRetry(ctx context.Context, init, max time.Duration, options ...elastic.ClientOptionFunc) (*elastic.Client, error) {
	if max <= 0 {
		return elastic.DialContext(ctx, options...)
	}
	retrier := elastic.NewBackoffRetrier(elastic.NewExponentialBackoff(init, max))
	options = append(options, elastic.SetRetrier(retrier))
	for attempt := 0; ; attempt++ {
		c, err := elastic.DialContext(ctx, options...)
		if err == nil {
			return c, nil
		}
		if !elastic.IsConnErr(err) {
			return nil, err
		}
		wait, goahead, _ := retrier.Retry(ctx, attempt, nil, nil, err)
		if !goahead {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// DialRetry is DialContextRetry with a background context.
func DialRetry(init, max time.Duration, options ...elastic.ClientOptionFunc) (*elastic.Client, error) {
	return DialContextRetry(context.Background(), init, max, options...)
}
