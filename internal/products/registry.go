// Package products wires the per-product route sets. Each product served by
// this process registers its routes under its slug at startup; at request
// time the resolved product's slug selects the route set by key.
package products

import (
	"net/http"

	"github.com/saasway/adminapi/pkg/cache"
	"github.com/saasway/adminapi/pkg/tenant"
)

// Registry maps product slugs to their route handlers. It is populated at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	routes map[string]http.Handler
}

// NewRegistry creates an empty route registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[string]http.Handler)}
}

// Register adds the route set for a product slug. Call only during startup.
func (reg *Registry) Register(slug string, h http.Handler) {
	reg.routes[slug] = h
}

// ServeHTTP dispatches to the route set of the product resolved by the
// tenant middleware. A product without registered routes is a 404: it exists
// in the directory but this deployment does not serve it.
func (reg *Registry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	product, ok := tenant.ProductFromContext(r.Context())
	if !ok {
		http.Error(w, "Product not found or inactive", http.StatusNotFound)
		return
	}

	h, ok := reg.routes[product.Slug]
	if !ok {
		http.Error(w, "Product not found or inactive", http.StatusNotFound)
		return
	}

	h.ServeHTTP(w, r)
}

// Default builds the registry for every product this deployment serves.
func Default(store cache.Store) *Registry {
	reg := NewRegistry()
	reg.Register("crm", productRouter(store, "leads", "contacts", "deals"))
	reg.Register("livenotes", productRouter(store, "notebooks", "notes"))
	reg.Register("restaurant", productRouter(store, "menu_items", "orders"))
	reg.Register("rentalcabbooking", productRouter(store, "vehicles", "bookings"))
	reg.Register("whatsappapi", productRouter(store, "templates", "messages"))
	return reg
}
