package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces result keys in Redis.
const KeyPrefix = "bookkeeping:result:"

// RedisStore stores results as JSON and lets Redis expire them.
type RedisStore[T any] struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore[T any](client *redis.Client, ttl time.Duration) *RedisStore[T] {
	return &RedisStore[T]{client: client, ttl: ttl}
}

func (s *RedisStore[T]) Put(ctx context.Context, id string, value T) error {
	if id == "" {
		return errors.New("RedisStore.Put: result ID is required")
	}
	val, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("RedisStore.Put: marshalling result %s: %w", id, err)
	}
	if err := s.client.Set(ctx, KeyPrefix+id, val, s.ttl).Err(); err != nil {
		return fmt.Errorf("RedisStore.Put: storing result %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore[T]) Get(ctx context.Context, id string) (result T, err error) {
	val, err := s.client.Get(ctx, KeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return result, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return result, fmt.Errorf("RedisStore.Get: loading result %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return result, fmt.Errorf("RedisStore.Get: unmarshalling result %s: %w", id, err)
	}
	return result, nil
}

func (s *RedisStore[T]) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, KeyPrefix+id).Err()
}

// Sweep is a no-op; keys carry their own TTL.
func (s *RedisStore[T]) Sweep(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

func (s *RedisStore[T]) Close() error {
	return s.client.Close()
}

var _ Store[struct{}] = (*RedisStore[struct{}])(nil)
