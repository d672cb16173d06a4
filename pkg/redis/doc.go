// Package redis establishes the shared Redis connection used by the response
// cache. Redis is an optional dependency: when it is unreachable at startup
// the caller is expected to fall back to pass-through caching rather than
// refuse to boot.
package redis
