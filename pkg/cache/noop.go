package cache

import (
	"context"
	"time"
)

// NoopStore is the pass-through store used when no cache backend is
// configured: every read is a miss, every write a no-op.
type NoopStore struct{}

// NewNoopStore creates a store that never caches.
func NewNoopStore() *NoopStore { return &NoopStore{} }

func (*NoopStore) Get(context.Context, string) ([]byte, bool)                       { return nil, false }
func (*NoopStore) SetWithTTL(context.Context, string, []byte, time.Duration)        {}
func (*NoopStore) SetWithTags(context.Context, string, []byte, []string, time.Duration) {}
func (*NoopStore) Delete(context.Context, ...string)                                {}
func (*NoopStore) DeleteMatching(context.Context, string)                           {}
func (*NoopStore) DeleteByTags(context.Context, ...string)                          {}
func (*NoopStore) ScanKeys(context.Context, string) []string                        { return nil }
func (*NoopStore) Close() error                                                     { return nil }
