package httpcache

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/saasway/adminapi/pkg/cache"
)

// paramToken matches route-parameter placeholders such as ":id" inside an
// invalidation pattern or tag.
var paramToken = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// Invalidate removes cache entries dirtied by a mutation before the handler
// runs, so the mutation's response is never raced by a stale read. Each
// pattern is a key prefix without the "cache:" namespace; route-parameter
// placeholders are substituted with concrete values from the request, and a
// trailing wildcard is implied.
//
// Mutation handlers declare what they dirty:
//
//	r.With(httpcache.Invalidate(store, "GET:/api/v1/:product/widgets")).
//		Post("/widgets", createWidget)
func Invalidate(store cache.Store, patterns ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, pattern := range patterns {
				expanded := keyNamespace + expandParams(r, pattern)
				if !strings.HasSuffix(expanded, "*") {
					expanded += "*"
				}
				store.DeleteMatching(r.Context(), expanded)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// InvalidateByTags removes every cache entry carrying one of the tags,
// independent of key shape. Placeholders in tags are substituted like in
// Invalidate.
func InvalidateByTags(store cache.Store, tags ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store.DeleteByTags(r.Context(), expandTags(r, tags)...)
			next.ServeHTTP(w, r)
		})
	}
}

// expandParams substitutes ":name" tokens with the request's route-parameter
// values; placeholders without a concrete value widen to "*".
func expandParams(r *http.Request, pattern string) string {
	rctx := chi.RouteContext(r.Context())
	return paramToken.ReplaceAllStringFunc(pattern, func(token string) string {
		if rctx != nil {
			if v := rctx.URLParam(token[1:]); v != "" {
				return v
			}
		}
		return "*"
	})
}

func expandTags(r *http.Request, tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	expanded := make([]string, len(tags))
	for i, tag := range tags {
		expanded[i] = expandParams(r, tag)
	}
	return expanded
}
