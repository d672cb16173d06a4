package products

import (
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/saasway/adminapi/pkg/storage"
	"github.com/saasway/adminapi/pkg/tenant"
)

// maxUploadSize bounds multipart uploads at 10 MiB.
const maxUploadSize = 10 << 20

// UploadHandler serves the per-product asset upload endpoints. Objects are
// keyed under the product slug so tenants cannot collide. A nil storage
// yields 503 on every route: S3 is optional at startup.
func UploadHandler(st *storage.S3Storage) http.Handler {
	r := chi.NewRouter()

	if st == nil {
		r.HandleFunc("/*", func(w http.ResponseWriter, _ *http.Request) {
			respondError(w, http.StatusServiceUnavailable, "file storage is not configured")
		})
		return r
	}

	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseMultipartForm(maxUploadSize); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		file, header, err := req.FormFile("file")
		if err != nil {
			respondError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to read upload")
			return
		}

		product, _ := tenant.ProductFromContext(req.Context())
		key := product.Slug + "/" + path.Base(header.Filename)

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		url, err := st.Upload(req.Context(), key, data, contentType)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "upload failed")
			return
		}

		respondJSON(w, http.StatusCreated, map[string]string{"key": key, "url": url})
	})

	r.Delete("/{filename}", func(w http.ResponseWriter, req *http.Request) {
		product, _ := tenant.ProductFromContext(req.Context())
		key := product.Slug + "/" + path.Base(chi.URLParam(req, "filename"))

		if err := st.Delete(req.Context(), key); err != nil {
			respondError(w, http.StatusInternalServerError, "delete failed")
			return
		}

		respondJSON(w, http.StatusOK, map[string]string{"deleted": key})
	})

	return r
}
