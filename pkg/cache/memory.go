package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for development and tests. It mirrors
// the Redis store's key namespace, including the tag index entries, so the
// invalidation semantics are identical.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates an in-memory store with periodic expiry cleanup.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		items: make(map[string]memoryEntry),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.cleanup()
	return s
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (s *MemoryStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	s.items[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

func (s *MemoryStore) SetWithTags(ctx context.Context, key string, value []byte, tags []string, ttl time.Duration) {
	expiresAt := time.Now().Add(ttl)
	s.mu.Lock()
	s.items[key] = memoryEntry{value: value, expiresAt: expiresAt}
	for _, tag := range tags {
		s.items[tagKey(tag, key)] = memoryEntry{value: []byte("1"), expiresAt: expiresAt}
	}
	s.mu.Unlock()
}

func (s *MemoryStore) Delete(ctx context.Context, keys ...string) {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.items, key)
	}
	s.mu.Unlock()
}

func (s *MemoryStore) DeleteMatching(ctx context.Context, pattern string) {
	s.Delete(ctx, s.ScanKeys(ctx, pattern)...)
}

func (s *MemoryStore) DeleteByTags(ctx context.Context, tags ...string) {
	var keys []string
	for _, tag := range tags {
		for _, tk := range s.ScanKeys(ctx, tagPattern(tag)) {
			keys = append(keys, tk, keyFromTagKey(tag, tk))
		}
	}
	s.Delete(ctx, keys...)
}

func (s *MemoryStore) ScanKeys(ctx context.Context, pattern string) []string {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key, entry := range s.items {
		if now.After(entry.expiresAt) {
			continue
		}
		if matchPattern(pattern, key) {
			keys = append(keys, key)
		}
	}
	return keys
}

func (s *MemoryStore) Close() error {
	s.once.Do(func() {
		close(s.stop)
		<-s.done
	})
	return nil
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, entry := range s.items {
				if now.After(entry.expiresAt) {
					delete(s.items, key)
				}
			}
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// matchPattern reports whether s matches a glob-style pattern where '*'
// matches any (possibly empty) sequence of characters. This is the subset of
// Redis MATCH syntax the key namespace relies on.
func matchPattern(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}

	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]

	last := parts[len(parts)-1]
	middle := parts[1 : len(parts)-1]

	for _, part := range middle {
		idx := strings.Index(s, part)
		if idx < 0 {
			return false
		}
		s = s[idx+len(part):]
	}

	return strings.HasSuffix(s, last)
}
