package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/saasway/adminapi/pkg/cache"
	"github.com/saasway/adminapi/pkg/httpcache"
	"github.com/saasway/adminapi/pkg/tenant"
)

// apiPrefix is where product routers are mounted; invalidation patterns must
// mirror the absolute request paths the response cache keys are derived from.
const apiPrefix = "/api/v1"

// productRouter builds the route set for one product: a CRUD resource router
// per collection. All reads go through the response cache and the ETag layer;
// all mutations declare the key patterns and tags they dirty.
func productRouter(store cache.Store, resources ...string) http.Handler {
	r := chi.NewRouter()
	r.Use(httpcache.ETag())
	for _, name := range resources {
		r.Mount("/"+name, resourceRouter(store, name))
	}
	return r
}

func resourceRouter(store cache.Store, name string) chi.Router {
	h := &resourceHandler{collection: name}

	// Keys for this resource share the path prefix below; one pattern covers
	// both the list and the item variants. The tag marks every list that
	// contains documents of this resource for cross-shape invalidation.
	pattern := "GET:" + apiPrefix + "/:product/" + name
	tag := ":product/" + name

	invalidate := httpcache.Invalidate(store, pattern)

	r := chi.NewRouter()
	r.With(httpcache.Middleware(store, httpcache.WithTags(tag))).Get("/", h.list)
	r.With(httpcache.Middleware(store, httpcache.WithTags(tag))).Get("/{id}", h.get)
	r.With(httpcache.QueryCache(store)).Get("/stats", h.stats(store))
	r.With(invalidate).Post("/", h.create)
	r.With(invalidate).Put("/{id}", h.update)
	r.With(invalidate).Delete("/{id}", h.remove)
	return r
}

// resourceHandler implements generic CRUD over one collection of the
// product's own database, borrowed from the request context.
type resourceHandler struct {
	collection string
}

func (h *resourceHandler) col(r *http.Request) *mongo.Collection {
	return tenant.MustConn(r.Context()).Collection(h.collection)
}

func (h *resourceHandler) list(w http.ResponseWriter, r *http.Request) {
	cursor, err := h.col(r).Find(r.Context(), bson.M{})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	docs := []bson.M{}
	if err := cursor.All(r.Context(), &docs); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read documents")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"data": docs})
}

func (h *resourceHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	var doc bson.M
	err = h.col(r).FindOne(r.Context(), bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read document")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"data": doc})
}

// stats is an expensive-aggregation example served through the long-TTL
// query cache in addition to the route-level response cache.
func (h *resourceHandler) stats(store cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, _ := tenant.ProductFromContext(r.Context())
		key := httpcache.Key("stats:"+product.Slug, h.collection)

		data, err := cache.Remember(r.Context(), store, key, cache.QueryTTL, func(ctx context.Context) ([]byte, error) {
			count, err := h.col(r).CountDocuments(ctx, bson.M{})
			if err != nil {
				return nil, err
			}
			return json.Marshal(map[string]any{"collection": h.collection, "count": count})
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to compute stats")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func (h *resourceHandler) create(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}

	res, err := h.col(r).InsertOne(r.Context(), doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create document")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{"id": res.InsertedID})
}

func (h *resourceHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, ok := decodeDocument(w, r)
	if !ok {
		return
	}
	delete(doc, "_id")

	res, err := h.col(r).UpdateOne(r.Context(), bson.M{"_id": id}, bson.M{"$set": doc})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update document")
		return
	}
	if res.MatchedCount == 0 {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"updated": res.ModifiedCount})
}

func (h *resourceHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := bson.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	res, err := h.col(r).DeleteOne(r.Context(), bson.M{"_id": id})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	if res.DeletedCount == 0 {
		respondError(w, http.StatusNotFound, "document not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": res.DeletedCount})
}

func decodeDocument(w http.ResponseWriter, r *http.Request) (bson.M, bool) {
	var doc bson.M
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	return doc, true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
