package httpcache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/saasway/adminapi/pkg/cache"
)

const (
	// DefaultTTL is the lifetime for generic GET response caching.
	DefaultTTL = 5 * time.Minute

	headerCache    = "X-Cache"
	headerCacheKey = "X-Cache-Key"
)

// envelope is the stored form of a cached response. Only the fields listed
// here are contractually preserved across a cache round trip.
type envelope struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type middlewareConfig struct {
	ttl         time.Duration
	keyFunc     KeyFunc
	condition   func(r *http.Request) bool
	varyHeaders []string
	status      int
	tags        []string
}

// MiddlewareOption configures the response cache middleware.
type MiddlewareOption func(*middlewareConfig)

// WithTTL overrides the entry lifetime.
func WithTTL(ttl time.Duration) MiddlewareOption {
	return func(c *middlewareConfig) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithKeyFunc overrides cache key derivation.
func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.keyFunc = fn
		}
	}
}

// WithCondition sets a per-route predicate; requests for which it returns
// false bypass the cache entirely.
func WithCondition(fn func(r *http.Request) bool) MiddlewareOption {
	return func(c *middlewareConfig) { c.condition = fn }
}

// WithVaryHeaders sets the request headers that participate in the cache
// key. The default is Authorization, so per-user variants do not collide.
func WithVaryHeaders(headers ...string) MiddlewareOption {
	return func(c *middlewareConfig) { c.varyHeaders = headers }
}

// WithCacheableStatus sets the response status that may be stored.
// Defaults to 200.
func WithCacheableStatus(status int) MiddlewareOption {
	return func(c *middlewareConfig) {
		if status > 0 {
			c.status = status
		}
	}
}

// WithTags attaches tags to every entry written by this middleware, for
// tag-based invalidation. Route-parameter placeholders (":id") in a tag are
// substituted with the concrete value from the request.
func WithTags(tags ...string) MiddlewareOption {
	return func(c *middlewareConfig) { c.tags = tags }
}

// Middleware caches GET responses in the store. On a hit it short-circuits
// with the stored status, content type and body; on a miss it captures the
// handler's output and stores it without making the client wait on the
// write. Both outcomes are marked with X-Cache and X-Cache-Key diagnostic
// headers.
func Middleware(store cache.Store, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		ttl:         DefaultTTL,
		varyHeaders: []string{"Authorization"},
		status:      http.StatusOK,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.keyFunc == nil {
		vary := cfg.varyHeaders
		cfg.keyFunc = func(r *http.Request) string { return requestKey(r, vary) }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.condition != nil && !cfg.condition(r) {
				next.ServeHTTP(w, r)
				return
			}
			if noCache(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.keyFunc(r)

			if data, ok := store.Get(r.Context(), key); ok {
				var e envelope
				if err := json.Unmarshal(data, &e); err == nil {
					w.Header().Set(headerCache, "HIT")
					w.Header().Set(headerCacheKey, key)
					if e.ContentType != "" {
						w.Header().Set("Content-Type", e.ContentType)
					}
					w.WriteHeader(e.Status)
					w.Write(e.Body)
					return
				}
				// Undecodable entries are treated as misses and overwritten.
			}

			w.Header().Set(headerCache, "MISS")
			w.Header().Set(headerCacheKey, key)

			rec := &teeRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status() != cfg.status {
				return
			}

			data, err := json.Marshal(envelope{
				Status:      rec.status(),
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.body.Bytes(),
			})
			if err != nil {
				return
			}

			// Fire and forget: the client never waits on the cache write.
			ctx := context.WithoutCancel(r.Context())
			tags := expandTags(r, cfg.tags)
			go func() {
				if len(tags) > 0 {
					store.SetWithTags(ctx, key, data, tags, cfg.ttl)
				} else {
					store.SetWithTTL(ctx, key, data, cfg.ttl)
				}
			}()
		})
	}
}

// QueryCache is the variant used for expensive queries and aggregations:
// identical behavior with a one-hour default TTL.
func QueryCache(store cache.Store, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	return Middleware(store, append([]MiddlewareOption{WithTTL(cache.QueryTTL)}, opts...)...)
}

// noCache reports whether the request carries a no-cache directive.
func noCache(r *http.Request) bool {
	cc := strings.ToLower(r.Header.Get("Cache-Control"))
	if strings.Contains(cc, "no-cache") || strings.Contains(cc, "no-store") {
		return true
	}
	return strings.EqualFold(r.Header.Get("Pragma"), "no-cache")
}

// teeRecorder streams the response through to the client while keeping a
// copy of the body for the cache write.
type teeRecorder struct {
	http.ResponseWriter
	code int
	body bytes.Buffer
}

func (t *teeRecorder) WriteHeader(code int) {
	if t.code == 0 {
		t.code = code
	}
	t.ResponseWriter.WriteHeader(code)
}

func (t *teeRecorder) Write(b []byte) (int, error) {
	if t.code == 0 {
		t.code = http.StatusOK
	}
	t.body.Write(b)
	return t.ResponseWriter.Write(b)
}

func (t *teeRecorder) status() int {
	if t.code == 0 {
		return http.StatusOK
	}
	return t.code
}
