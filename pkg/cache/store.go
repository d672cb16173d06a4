package cache

import (
	"context"
	"time"
)

// Store is the contract consumed by the caching middlewares. Implementations
// never propagate backend failures: reads report a miss, writes and deletes
// become no-ops, and the failure is logged by the implementation.
type Store interface {
	// Get returns the value stored under key, or false on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// SetWithTTL stores value under key for the given TTL. The key is always
	// fully overwritten, never patched.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration)

	// SetWithTags stores value under key and records an index entry for each
	// tag with the same TTL, so tag entries cannot outlive the data they tag.
	SetWithTags(ctx context.Context, key string, value []byte, tags []string, ttl time.Duration)

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string)

	// DeleteMatching removes every key matching the wildcard pattern.
	DeleteMatching(ctx context.Context, pattern string)

	// DeleteByTags removes every key carrying any of the given tags, along
	// with the tag index entries themselves.
	DeleteByTags(ctx context.Context, tags ...string)

	// ScanKeys returns the keys matching the wildcard pattern.
	ScanKeys(ctx context.Context, pattern string) []string

	// Close releases resources held by the store.
	Close() error
}

// tagKeyPrefix namespaces the tag index entries: cache:tag:<tag>:<key>.
const tagKeyPrefix = "cache:tag:"

func tagKey(tag, key string) string {
	return tagKeyPrefix + tag + ":" + key
}

func tagPattern(tag string) string {
	return tagKeyPrefix + tag + ":*"
}

// keyFromTagKey recovers the data key embedded in a tag index key.
func keyFromTagKey(tag, tagKey string) string {
	return tagKey[len(tagKeyPrefix)+len(tag)+1:]
}
