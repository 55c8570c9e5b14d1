// Package results keeps processing results addressable by id for a limited time.
package results

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no result is stored under the id, or it has expired.
var ErrNotFound = errors.New("results: not found")

// Store holds results of type T keyed by id.
type Store[T any] interface {
	Put(ctx context.Context, id string, value T) error
	Get(ctx context.Context, id string) (T, error)
	Delete(ctx context.Context, id string) error
	// Sweep removes entries older than the store TTL and reports how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
