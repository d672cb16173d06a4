package httpcache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// keyNamespace prefixes every cache key written by this package.
const keyNamespace = "cache:"

// KeyFunc derives the cache key for a request.
type KeyFunc func(r *http.Request) string

// Key derives a deterministic cache key from a prefix and an identifier.
// String identifiers are concatenated directly; any other identifier is
// reduced to a content hash of its JSON form, which bounds key length and is
// insensitive to map ordering (encoding/json sorts map keys).
func Key(prefix string, identifier any) string {
	if s, ok := identifier.(string); ok {
		return keyNamespace + prefix + ":" + s
	}
	data, err := json.Marshal(identifier)
	if err != nil {
		// Unmarshalable identifiers fall back to the bare prefix; the entry
		// is still correct, just shared across variants.
		return keyNamespace + prefix
	}
	sum := md5.Sum(data)
	return keyNamespace + prefix + ":" + hex.EncodeToString(sum[:])
}

// keyInput is the hashed portion of a request cache key. Only the listed
// headers participate, so requests differing in an irrelevant header map to
// the same key.
type keyInput struct {
	Query   url.Values        `json:"query"`
	Params  map[string]string `json:"params"`
	Headers map[string]string `json:"headers"`
}

// requestKey builds the cache key for an incoming request from its method,
// path, query parameters, route parameters and the selected vary headers.
func requestKey(r *http.Request, varyHeaders []string) string {
	input := keyInput{
		Query:   r.URL.Query(),
		Params:  routeParams(r),
		Headers: make(map[string]string, len(varyHeaders)),
	}
	for _, h := range varyHeaders {
		if v := r.Header.Get(h); v != "" {
			input.Headers[http.CanonicalHeaderKey(h)] = v
		}
	}
	return Key(r.Method+":"+r.URL.Path, input)
}

func routeParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		if k == "*" {
			continue
		}
		params[k] = rctx.URLParams.Values[i]
	}
	return params
}
