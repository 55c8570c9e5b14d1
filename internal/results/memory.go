package results

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/swiss-bookkeeping/internal/logger"
)

type entry[T any] struct {
	value    T
	storedAt time.Time
}

// MemoryStore is an in-memory Store. It is safe for concurrent use.
// Data is lost on restart.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a store whose entries expire after ttl. A zero ttl disables expiry.
func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	return &MemoryStore[T]{
		entries: make(map[string]entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore[T]) Put(ctx context.Context, id string, value T) error {
	if id == "" {
		return errors.New("MemoryStore.Put: result ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = entry[T]{value: value, storedAt: s.now()}
	return nil
}

func (s *MemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok || s.expired(e, s.now()) {
		var zero T
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.value, nil
}

func (s *MemoryStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}

func (s *MemoryStore[T]) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Start sweeps expired entries every interval until ctx is cancelled.
func (s *MemoryStore[T]) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	log := logger.FromContext(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Debug().Msg("Results sweeper stopped")
				return
			case t := <-ticker.C:
				n, _ := s.Sweep(ctx, t)
				if n > 0 {
					log.Info().Int("removed", n).Msg("Swept expired results")
				}
			}
		}
	}()
}

func (s *MemoryStore[T]) expired(e entry[T], now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.storedAt) > s.ttl
}

var _ Store[struct{}] = (*MemoryStore[struct{}])(nil)
