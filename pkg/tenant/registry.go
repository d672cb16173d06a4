package tenant

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Opener establishes a connection to one product database. The onDown
// callback must be invoked by the opener's disconnect listener when the
// driver reports the connection dead, passing the handle it created.
type Opener func(ctx context.Context, slug, databaseName string, onDown func(*Conn)) (*Conn, error)

// Registry owns the process-wide map from product slug to live database
// handle. Creation is lazy and single-flighted: concurrent requests for a
// never-seen slug converge on one connection attempt, and failed attempts are
// never cached.
type Registry struct {
	open  Opener
	log   *slog.Logger
	group singleflight.Group

	mu    sync.RWMutex
	conns map[string]*Conn
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for connection lifecycle events.
func WithRegistryLogger(log *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates an empty registry. The application's composition root
// owns the single instance and passes it to middleware construction.
func NewRegistry(open Opener, opts ...RegistryOption) *Registry {
	if open == nil {
		panic("tenant.NewRegistry: opener is required")
	}
	r := &Registry{
		open:  open,
		log:   slog.New(slog.DiscardHandler),
		conns: make(map[string]*Conn),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the Ready handle for slug, creating it if necessary. Concurrent
// calls for the same slug share one creation attempt; calls for different
// slugs proceed in parallel.
func (r *Registry) Get(ctx context.Context, slug, databaseName string) (*Conn, error) {
	if c := r.ready(slug); c != nil {
		return c, nil
	}

	v, err, _ := r.group.Do(slug, func() (any, error) {
		// Another caller may have finished creation while we waited.
		if c := r.ready(slug); c != nil {
			return c, nil
		}

		r.mu.Lock()
		if stale, ok := r.conns[slug]; ok && stale.State() != StateReady {
			delete(r.conns, slug)
		}
		r.mu.Unlock()

		// Creation must not be canceled by the first caller's request
		// context; every waiter shares this one attempt.
		conn, err := r.open(context.WithoutCancel(ctx), slug, databaseName, r.drop)
		if err != nil {
			r.log.ErrorContext(ctx, "product database connection failed",
				slog.String("slug", slug),
				slog.String("database", databaseName),
				slog.String("error", err.Error()),
			)
			return nil, errors.Join(ErrConnectionFailed, err)
		}
		conn.MarkReady()

		r.mu.Lock()
		r.conns[slug] = conn
		r.mu.Unlock()

		r.log.InfoContext(ctx, "connected to product database",
			slog.String("slug", slug),
			slog.String("database", databaseName),
		)
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Conn), nil
}

// ready returns the stored handle for slug only if it is Ready.
func (r *Registry) ready(slug string) *Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.conns[slug]; ok && c.State() == StateReady {
		return c
	}
	return nil
}

// drop removes the entry for the given handle. The pointer comparison
// protects a freshly created replacement from being evicted by a late
// disconnect event of its predecessor.
func (r *Registry) drop(c *Conn) {
	c.MarkDisconnected()

	r.mu.Lock()
	current, ok := r.conns[c.Slug()]
	if ok && current == c {
		delete(r.conns, c.Slug())
	}
	r.mu.Unlock()

	if ok && current == c {
		r.log.Warn("product database disconnected",
			slog.String("slug", c.Slug()),
		)
	}
}

// Len reports the number of live handles, for diagnostics and tests.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll closes every handle and clears the map. Used only during process
// shutdown.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]*Conn)
	r.mu.Unlock()

	var errs []error
	for slug, c := range conns {
		c.MarkDisconnected()
		if err := c.close(ctx); err != nil {
			errs = append(errs, err)
			continue
		}
		r.log.InfoContext(ctx, "closed product database connection", slog.String("slug", slug))
	}
	return errors.Join(errs...)
}
