package tenant

import (
	"context"
	"log/slog"
)

// Context keys are private types so no other package can collide with them.
type (
	productCtxKey struct{}
	connCtxKey    struct{}
)

// WithProduct adds a resolved product to the context.
func WithProduct(ctx context.Context, p *Product) context.Context {
	return context.WithValue(ctx, productCtxKey{}, p)
}

// ProductFromContext retrieves the resolved product from the context.
func ProductFromContext(ctx context.Context) (*Product, bool) {
	p, ok := ctx.Value(productCtxKey{}).(*Product)
	return p, ok
}

// WithConn adds a borrowed database handle to the context.
func WithConn(ctx context.Context, c *Conn) context.Context {
	return context.WithValue(ctx, connCtxKey{}, c)
}

// ConnFromContext retrieves the borrowed database handle from the context.
func ConnFromContext(ctx context.Context) (*Conn, bool) {
	c, ok := ctx.Value(connCtxKey{}).(*Conn)
	return c, ok
}

// MustConn retrieves the database handle or panics. Only for handlers mounted
// strictly below the tenant middleware.
func MustConn(ctx context.Context) *Conn {
	c, ok := ConnFromContext(ctx)
	if !ok || c == nil {
		panic("tenant: no connection in context")
	}
	return c
}

// LoggerExtractor returns a context extractor that adds the product slug to
// log records emitted during request handling.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if p, ok := ProductFromContext(ctx); ok && p != nil {
			return slog.String("product", p.Slug), true
		}
		return slog.Attr{}, false
	}
}
