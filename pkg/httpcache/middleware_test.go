package httpcache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saasway/adminapi/pkg/cache"
	"github.com/saasway/adminapi/pkg/httpcache"
)

// countingHandler serves a fixed payload and counts invocations so tests can
// tell a cache hit from a pass-through.
type countingHandler struct {
	calls       atomic.Int64
	status      int
	contentType string
	body        string
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.calls.Add(1)
	if h.contentType != "" {
		w.Header().Set("Content-Type", h.contentType)
	}
	if h.status != 0 {
		w.WriteHeader(h.status)
	}
	w.Write([]byte(h.body))
}

// awaitWrite blocks until the fire-and-forget cache write for key lands.
func awaitWrite(t *testing.T, store cache.Store, key string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := store.Get(context.Background(), key)
		return ok
	}, time.Second, 5*time.Millisecond, "cache write for %s never landed", key)
}

func get(r http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("miss then hit", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore()
		defer store.Close()
		h := &countingHandler{contentType: "application/json", body: `{"items":[]}`}

		r := chi.NewRouter()
		r.With(httpcache.Middleware(store)).Get("/widgets", h.ServeHTTP)

		first := get(r, "/widgets", nil)
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
		assert.Equal(t, `{"items":[]}`, first.Body.String())

		key := first.Header().Get("X-Cache-Key")
		require.NotEmpty(t, key)
		awaitWrite(t, store, key)

		second := get(r, "/widgets", nil)
		assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
		assert.Equal(t, key, second.Header().Get("X-Cache-Key"))
		assert.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
		assert.Equal(t, `{"items":[]}`, second.Body.String())
		assert.Equal(t, int64(1), h.calls.Load(), "hit must not reach the handler")
	})

	t.Run("non-GET passes through untouched", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore()
		defer store.Close()
		h := &countingHandler{status: http.StatusCreated, body: "created"}

		r := chi.NewRouter()
		r.With(httpcache.Middleware(store)).Post("/widgets", h.ServeHTTP)

		req := httptest.NewRequest("POST", "/widgets", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Empty(t, rr.Header().Get("X-Cache"))
		assert.Empty(t, store.ScanKeys(context.Background(), "cache:*"))
	})

	t.Run("no-cache directive bypasses the cache", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore()
		defer store.Close()
		h := &countingHandler{body: "fresh"}

		r := chi.NewRouter()
		r.With(httpcache.Middleware(store)).Get("/widgets", h.ServeHTTP)

		for range 2 {
			rr := get(r, "/widgets", map[string]string{"Cache-Control": "no-cache"})
			assert.Empty(t, rr.Header().Get("X-Cache"))
		}
		assert.Equal(t, int64(2), h.calls.Load())
	})

	t.Run("condition gates participation", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore()
		defer store.Close()
		h := &countingHandler{body: "v"}

		r := chi.NewRouter()
		r.With(httpcache.Middleware(store, httpcache.WithCondition(func(r *http.Request) bool {
			return r.URL.Query().Get("cached") == "1"
		}))).Get("/widgets", h.ServeHTTP)

		skipped := get(r, "/widgets", nil)
		assert.Empty(t, skipped.Header().Get("X-Cache"))

		allowed := get(r, "/widgets?cached=1", nil)
		assert.Equal(t, "MISS", allowed.Header().Get("X-Cache"))
	})

	t.Run("non-cacheable status is not stored", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore()
		defer store.Close()
		h := &countingHandler{status: http.StatusNotFound, body: "gone"}

		r := chi.NewRouter()
		r.With(httpcache.Middleware(store)).Get("/widgets/{id}", h.ServeHTTP)

		rr := get(r, "/widgets/abc", nil)
		assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))

		// The write is async, so give it a moment to not happen.
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, store.ScanKeys(context.Background(), "cache:*"))

		again := get(r, "/widgets/abc", nil)
		assert.Equal(t, "MISS", again.Header().Get("X-Cache"))
		assert.Equal(t, int64(2), h.calls.Load())
	})

	t.Run("authorization variants do not collide", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore()
		defer store.Close()
		h := &countingHandler{body: "v"}

		r := chi.NewRouter()
		r.With(httpcache.Middleware(store)).Get("/widgets", h.ServeHTTP)

		alice := get(r, "/widgets", map[string]string{"Authorization": "Bearer alice"})
		awaitWrite(t, store, alice.Header().Get("X-Cache-Key"))

		bob := get(r, "/widgets", map[string]string{"Authorization": "Bearer bob"})
		assert.Equal(t, "MISS", bob.Header().Get("X-Cache"))
		assert.NotEqual(t, alice.Header().Get("X-Cache-Key"), bob.Header().Get("X-Cache-Key"))
	})

	t.Run("degrades to pass-through on a noop store", func(t *testing.T) {
		t.Parallel()

		h := &countingHandler{body: "always fresh"}

		r := chi.NewRouter()
		r.With(httpcache.Middleware(cache.NewNoopStore())).Get("/widgets", h.ServeHTTP)

		for range 3 {
			rr := get(r, "/widgets", nil)
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "MISS", rr.Header().Get("X-Cache"))
			assert.Equal(t, "always fresh", rr.Body.String())
		}
		assert.Equal(t, int64(3), h.calls.Load())
	})

	t.Run("tags are stored with expanded placeholders", func(t *testing.T) {
		t.Parallel()

		store := cache.NewMemoryStore()
		defer store.Close()
		h := &countingHandler{body: "v"}

		r := chi.NewRouter()
		r.With(httpcache.Middleware(store, httpcache.WithTags(":product/widgets"))).
			Get("/api/v1/{product}/widgets", h.ServeHTTP)

		rr := get(r, "/api/v1/acme/widgets", nil)
		awaitWrite(t, store, rr.Header().Get("X-Cache-Key"))

		require.Eventually(t, func() bool {
			return len(store.ScanKeys(context.Background(), "cache:tag:acme/widgets:*")) == 1
		}, time.Second, 5*time.Millisecond)
	})
}

func TestQueryCache(t *testing.T) {
	t.Parallel()

	store := cache.NewMemoryStore()
	defer store.Close()
	h := &countingHandler{contentType: "application/json", body: `{"total":42}`}

	r := chi.NewRouter()
	r.With(httpcache.QueryCache(store)).Get("/stats", h.ServeHTTP)

	first := get(r, "/stats", nil)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	awaitWrite(t, store, first.Header().Get("X-Cache-Key"))

	second := get(r, "/stats", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, `{"total":42}`, second.Body.String())
	assert.Equal(t, int64(1), h.calls.Load())
}
