package httpcache

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"strconv"
)

// ETag handles conditional requests for GET and HEAD. The outgoing body is
// hashed into an entity tag; when the client presents a matching
// If-None-Match header the response short-circuits to 304 with no body.
// This layer is independent of the TTL cache: it applies on hits and misses
// alike.
func ETag() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			rec := &bufferedRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			if rec.status() != http.StatusOK {
				rec.flush()
				return
			}

			sum := md5.Sum(rec.body.Bytes())
			etag := `"` + hex.EncodeToString(sum[:]) + `"`
			w.Header().Set("ETag", etag)

			if r.Header.Get("If-None-Match") == etag {
				w.Header().Del("Content-Length")
				w.WriteHeader(http.StatusNotModified)
				return
			}

			rec.flush()
		})
	}
}

// bufferedRecorder withholds the response until the handler returns so the
// entity tag can be computed over the complete body.
type bufferedRecorder struct {
	http.ResponseWriter
	code int
	body bytes.Buffer
}

func (b *bufferedRecorder) WriteHeader(code int) {
	if b.code == 0 {
		b.code = code
	}
}

func (b *bufferedRecorder) Write(p []byte) (int, error) {
	if b.code == 0 {
		b.code = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *bufferedRecorder) status() int {
	if b.code == 0 {
		return http.StatusOK
	}
	return b.code
}

func (b *bufferedRecorder) flush() {
	if b.body.Len() > 0 {
		b.ResponseWriter.Header().Set("Content-Length", strconv.Itoa(b.body.Len()))
	}
	b.ResponseWriter.WriteHeader(b.status())
	b.ResponseWriter.Write(b.body.Bytes())
}
