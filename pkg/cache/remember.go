package cache

import (
	"context"
	"time"
)

// QueryTTL is the default lifetime for cached results of expensive queries
// and aggregations, longer than the generic response cache TTL.
const QueryTTL = time.Hour

// Remember returns the cached value for key, or computes it with fn and
// stores the result for ttl. Compute errors are returned as-is and nothing is
// cached for them.
func Remember(ctx context.Context, store Store, key string, ttl time.Duration, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if cached, ok := store.Get(ctx, key); ok {
		return cached, nil
	}

	value, err := fn(ctx)
	if err != nil {
		return nil, err
	}

	store.SetWithTTL(ctx, key, value, ttl)
	return value, nil
}
