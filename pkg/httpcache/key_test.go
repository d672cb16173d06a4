package httpcache

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyFor routes a request through chi so route parameters are populated the
// way they are in production, then captures the derived key.
func keyFor(t *testing.T, target string, vary []string, headers map[string]string) string {
	t.Helper()

	var key string
	r := chi.NewRouter()
	r.Get("/api/v1/{product}/*", func(w http.ResponseWriter, req *http.Request) {
		key = requestKey(req, vary)
	})

	req := httptest.NewRequest("GET", target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.NotEmpty(t, key)
	return key
}

func TestKey(t *testing.T) {
	t.Parallel()

	t.Run("string identifiers concatenate", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "cache:stats:acme:orders", Key("stats:acme", "orders"))
	})

	t.Run("object identifiers hash to a bounded key", func(t *testing.T) {
		t.Parallel()

		key := Key("GET:/widgets", map[string]string{"page": "1", "size": "50"})
		assert.True(t, strings.HasPrefix(key, "cache:GET:/widgets:"))
		assert.Len(t, strings.TrimPrefix(key, "cache:GET:/widgets:"), 32)
	})

	t.Run("object hashing is insensitive to map ordering", func(t *testing.T) {
		t.Parallel()

		a := Key("p", map[string]string{"a": "1", "b": "2", "c": "3"})
		b := Key("p", map[string]string{"c": "3", "a": "1", "b": "2"})
		assert.Equal(t, a, b)
	})
}

func TestRequestKey(t *testing.T) {
	t.Parallel()

	vary := []string{"Authorization"}

	t.Run("identical requests derive identical keys", func(t *testing.T) {
		t.Parallel()

		a := keyFor(t, "/api/v1/acme/widgets?page=1", vary, map[string]string{"Authorization": "Bearer x"})
		b := keyFor(t, "/api/v1/acme/widgets?page=1", vary, map[string]string{"Authorization": "Bearer x"})
		assert.Equal(t, a, b)
	})

	t.Run("irrelevant headers do not affect the key", func(t *testing.T) {
		t.Parallel()

		a := keyFor(t, "/api/v1/acme/widgets", vary, map[string]string{"User-Agent": "curl"})
		b := keyFor(t, "/api/v1/acme/widgets", vary, map[string]string{"User-Agent": "wget", "Accept": "application/json"})
		assert.Equal(t, a, b)
	})

	t.Run("vary headers produce distinct keys", func(t *testing.T) {
		t.Parallel()

		alice := keyFor(t, "/api/v1/acme/widgets", vary, map[string]string{"Authorization": "Bearer alice"})
		bob := keyFor(t, "/api/v1/acme/widgets", vary, map[string]string{"Authorization": "Bearer bob"})
		assert.NotEqual(t, alice, bob)
	})

	t.Run("different query parameters produce distinct keys", func(t *testing.T) {
		t.Parallel()

		page1 := keyFor(t, "/api/v1/acme/widgets?page=1", vary, nil)
		page2 := keyFor(t, "/api/v1/acme/widgets?page=2", vary, nil)
		assert.NotEqual(t, page1, page2)
	})

	t.Run("different products produce distinct keys", func(t *testing.T) {
		t.Parallel()

		acme := keyFor(t, "/api/v1/acme/widgets", vary, nil)
		globex := keyFor(t, "/api/v1/globex/widgets", vary, nil)
		assert.NotEqual(t, acme, globex)
	})

	t.Run("key embeds method and path", func(t *testing.T) {
		t.Parallel()

		key := keyFor(t, "/api/v1/acme/widgets", vary, nil)
		assert.True(t, strings.HasPrefix(key, "cache:GET:/api/v1/acme/widgets:"))
	})
}
