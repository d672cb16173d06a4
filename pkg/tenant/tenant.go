package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product describes one tenant of the platform: a customer-facing
// application instance identified by its slug and backed by its own logical
// database. Records are loaded from the control-plane store and are immutable
// per lookup.
type Product struct {
	ID           uuid.UUID `bson:"uuid" json:"id"`
	Slug         string    `bson:"slug" json:"slug"`
	Name         string    `bson:"name" json:"name"`
	DatabaseName string    `bson:"database_name" json:"database_name"`
	Active       bool      `bson:"is_active" json:"active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Directory is a read-only lookup of product metadata backed by the shared
// control-plane store.
type Directory interface {
	// GetBySlug retrieves a product record by its slug.
	// Returns ErrProductNotFound if no product matches.
	GetBySlug(ctx context.Context, slug string) (*Product, error)
}
