// Package httpcache implements the response-caching tier: a TTL cache for
// GET responses, conditional-request (ETag) handling, and mutation-side
// invalidation by key pattern or tag.
//
// The TTL cache and the ETag layer are independent mechanisms: a conditional
// GET with a matching entity tag yields 304 even when the TTL cache misses.
// Mutation handlers declare the key patterns they dirty via Invalidate, which
// runs before the mutation's response is sent so a subsequent read never
// observes stale data for the mutated resource.
//
// All cache interaction goes through cache.Store, which swallows backend
// failures; when the backend is unreachable every middleware in this package
// degrades to pass-through behavior.
package httpcache
