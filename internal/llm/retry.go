package llm

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const DefaultMaxRetries uint64 = 3

// RetryConfig bounds the exponential backoff around model calls.
type RetryConfig struct {
	MaxRetries      uint64
	MaxElapsed      time.Duration
	InitialInterval time.Duration
}

// Retry runs op until it succeeds, returns a Permanent error, the retry budget is spent
// or ctx is done.
func Retry(ctx context.Context, cfg RetryConfig, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	if cfg.MaxElapsed > 0 {
		eb.MaxElapsedTime = cfg.MaxElapsed
	}
	if cfg.InitialInterval > 0 {
		eb.InitialInterval = cfg.InitialInterval
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(eb, maxRetries), ctx))
}

// Permanent marks err so Retry stops immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
