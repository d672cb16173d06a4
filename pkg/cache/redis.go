package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultOpTimeout bounds every Redis operation so a slow backend cannot
// stall the request path. Exceeding it counts as a backend failure and the
// caller proceeds without the cache.
const defaultOpTimeout = 250 * time.Millisecond

// scanBatchSize is the COUNT hint for SCAN iterations.
const scanBatchSize = 100

// RedisStore implements Store on top of a Redis client. Pattern deletion uses
// SCAN over the key namespace, never KEYS, so invalidation does not block the
// server.
type RedisStore struct {
	client    redis.UniversalClient
	opTimeout time.Duration
	degraded  *burstLogger
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithOpTimeout overrides the per-operation timeout.
func WithOpTimeout(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// WithLogInterval overrides how often backend failures are logged.
func WithLogInterval(d time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.degraded = newBurstLogger(s.degraded.log, d)
	}
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.UniversalClient, log *slog.Logger, opts ...RedisOption) *RedisStore {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &RedisStore{
		client:    client,
		opTimeout: defaultOpTimeout,
		degraded:  newBurstLogger(log, defaultLogInterval),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.degraded.failure("get", err)
		}
		return nil, false
	}
	return val, true
}

func (s *RedisStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.degraded.failure("set", err)
	}
}

func (s *RedisStore) SetWithTags(ctx context.Context, key string, value []byte, tags []string, ttl time.Duration) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, value, ttl)
	for _, tag := range tags {
		pipe.Set(ctx, tagKey(tag, key), "1", ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.degraded.failure("set_with_tags", err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.degraded.failure("delete", err)
	}
}

func (s *RedisStore) DeleteMatching(ctx context.Context, pattern string) {
	keys := s.ScanKeys(ctx, pattern)
	s.Delete(ctx, keys...)
}

func (s *RedisStore) DeleteByTags(ctx context.Context, tags ...string) {
	var keys []string
	for _, tag := range tags {
		for _, tk := range s.ScanKeys(ctx, tagPattern(tag)) {
			keys = append(keys, tk, keyFromTagKey(tag, tk))
		}
	}
	s.Delete(ctx, keys...)
}

func (s *RedisStore) ScanKeys(ctx context.Context, pattern string) []string {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.degraded.failure("scan", err)
		return nil
	}
	return keys
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
