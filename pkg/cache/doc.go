// Package cache provides the key/value store consumed by the HTTP response
// cache and by read-through helpers.
//
// Caching is always an optimization, never a correctness dependency: every
// store operation swallows backend failures, logging them at most once per
// failure burst, and degrades to miss-always behavior. Operations are bounded
// by a short timeout so a degraded backend cannot slow down the primary
// request path.
//
// Three implementations are provided: a Redis-backed store for production, an
// in-memory store for development and tests, and a no-op store used when the
// cache backend is absent.
package cache
