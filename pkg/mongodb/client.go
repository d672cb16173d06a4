package mongodb

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/v2/event"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// OpenOption customizes a single Open call.
type OpenOption func(*openOptions)

type openOptions struct {
	onDisconnect func()
}

// WithDisconnectHook registers a callback invoked when the driver reports a
// failed server heartbeat. The tenant registry uses this to evict dead
// handles so the next request re-creates the connection.
func WithDisconnectHook(fn func()) OpenOption {
	return func(o *openOptions) { o.onDisconnect = fn }
}

// Open connects to one logical database under the shared deployment and
// verifies the connection with a ping bounded by cfg.ConnectTimeout.
func Open(ctx context.Context, cfg Config, databaseName string, opts ...OpenOption) (*mongo.Client, *mongo.Database, error) {
	var oo openOptions
	for _, opt := range opts {
		opt(&oo)
	}

	uri := strings.TrimSuffix(cfg.BaseURI, "/") + "/" + databaseName

	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetRetryWrites(cfg.RetryWrites)

	if oo.onDisconnect != nil {
		clientOpts.SetServerMonitor(&event.ServerMonitor{
			ServerHeartbeatFailed: func(_ *event.ServerHeartbeatFailedEvent) {
				oo.onDisconnect()
			},
		})
	}

	client, err := mongo.Connect(clientOpts)
	if err != nil {
		return nil, nil, errors.Join(ErrFailedToConnect, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, nil, errors.Join(ErrFailedToConnect, err)
	}

	return client, client.Database(databaseName), nil
}
