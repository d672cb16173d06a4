package tenant

import (
	"context"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// State describes the lifecycle of a product database connection.
type State int32

const (
	StateConnecting State = iota
	StateReady
	StateDisconnected
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateDisconnected:
		return "disconnected"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Conn is a live, reusable database handle for one product. It is owned
// exclusively by the Registry; handlers borrow a reference and must never
// close it.
type Conn struct {
	slug    string
	db      *mongo.Database
	state   atomic.Int32
	closeFn func(context.Context) error
}

// NewConn creates a handle in the Connecting state. The opener attaches the
// driver database once the connection is established.
func NewConn(slug string) *Conn {
	c := &Conn{slug: slug}
	c.state.Store(int32(StateConnecting))
	return c
}

// Attach binds the driver handle and its close function to the connection.
func (c *Conn) Attach(db *mongo.Database, closeFn func(context.Context) error) {
	c.db = db
	c.closeFn = closeFn
}

// Slug returns the product slug this connection belongs to.
func (c *Conn) Slug() string { return c.slug }

// Database returns the underlying driver handle.
func (c *Conn) Database() *mongo.Database { return c.db }

// Collection is shorthand for Database().Collection(name).
func (c *Conn) Collection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// State reports the current lifecycle state.
func (c *Conn) State() State {
	return State(c.state.Load())
}

// MarkReady transitions the connection to Ready.
func (c *Conn) MarkReady() {
	c.state.Store(int32(StateReady))
}

// MarkDisconnected transitions the connection to Disconnected. The registry
// drops disconnected handles so the next request re-creates them.
func (c *Conn) MarkDisconnected() {
	c.state.Store(int32(StateDisconnected))
}

func (c *Conn) close(ctx context.Context) error {
	if c.closeFn == nil {
		return nil
	}
	return c.closeFn(ctx)
}
