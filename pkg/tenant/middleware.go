package tenant

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// ErrorHandler maps resolution failures to HTTP responses.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	routeParam    string
	errorHandler  ErrorHandler
	descriptorTTL time.Duration
}

// Option configures the middleware.
type Option func(*middlewareConfig)

// WithRouteParam sets the chi URL parameter carrying the product slug.
// Defaults to "product".
func WithRouteParam(name string) Option {
	return func(c *middlewareConfig) {
		if name != "" {
			c.routeParam = name
		}
	}
}

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithDescriptorCacheTTL enables a short-lived in-process cache of product
// records, separate from the response cache. Zero disables caching; every
// request then hits the directory.
func WithDescriptorCacheTTL(ttl time.Duration) Option {
	return func(c *middlewareConfig) { c.descriptorTTL = ttl }
}

// Middleware resolves the product slug from the route, looks the product up
// in the directory, obtains a database handle from the registry and attaches
// both to the request context. Resolution happens once per request; the
// attached values are immutable downstream.
func Middleware(dir Directory, reg *Registry, opts ...Option) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		routeParam:   "product",
		errorHandler: defaultErrorHandler,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var cache *descriptorCache
	if cfg.descriptorTTL > 0 {
		cache = newDescriptorCache(cfg.descriptorTTL)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, cfg.routeParam)
			if slug == "" {
				cfg.errorHandler(w, r, ErrProductNotFound)
				return
			}

			product, err := lookupProduct(r, dir, cache, slug)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if !product.Active {
				cfg.errorHandler(w, r, ErrProductInactive)
				return
			}

			conn, err := reg.Get(r.Context(), product.Slug, product.DatabaseName)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			ctx := WithProduct(r.Context(), product)
			ctx = WithConn(ctx, conn)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func lookupProduct(r *http.Request, dir Directory, cache *descriptorCache, slug string) (*Product, error) {
	if cache != nil {
		if p, ok := cache.get(slug); ok {
			return p, nil
		}
	}

	p, err := dir.GetBySlug(r.Context(), slug)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		cache.set(slug, p)
	}
	return p, nil
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrProductInactive):
		http.Error(w, "Product not found or inactive", http.StatusNotFound)
	case errors.Is(err, ErrConnectionFailed):
		http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// descriptorCache is a minimal TTL cache for product records. Directory
// lookups are cheap, so this stays disabled unless explicitly enabled.
type descriptorCache struct {
	ttl time.Duration

	mu    sync.RWMutex
	items map[string]descriptorEntry
}

type descriptorEntry struct {
	product   *Product
	expiresAt time.Time
}

func newDescriptorCache(ttl time.Duration) *descriptorCache {
	return &descriptorCache{
		ttl:   ttl,
		items: make(map[string]descriptorEntry),
	}
}

func (c *descriptorCache) get(slug string) (*Product, bool) {
	c.mu.RLock()
	entry, ok := c.items[slug]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.product, true
}

func (c *descriptorCache) set(slug string, p *Product) {
	c.mu.Lock()
	c.items[slug] = descriptorEntry{product: p, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}
