package tenant

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/saasway/adminapi/pkg/mongodb"
)

// NewMongoOpener returns an Opener that connects to product databases under
// the shared MongoDB deployment described by cfg.
func NewMongoOpener(cfg mongodb.Config) Opener {
	return func(ctx context.Context, slug, databaseName string, onDown func(*Conn)) (*Conn, error) {
		conn := NewConn(slug)

		client, db, err := mongodb.Open(ctx, cfg, databaseName,
			mongodb.WithDisconnectHook(func() {
				if onDown != nil {
					onDown(conn)
				}
			}),
		)
		if err != nil {
			return nil, err
		}

		conn.Attach(db, client.Disconnect)
		return conn, nil
	}
}

// productsCollection is the control-plane collection holding product records.
const productsCollection = "products"

// MongoDirectory reads product records from the control-plane database.
type MongoDirectory struct {
	col *mongo.Collection
}

// NewMongoDirectory creates a directory backed by the given control-plane
// database.
func NewMongoDirectory(db *mongo.Database) *MongoDirectory {
	return &MongoDirectory{col: db.Collection(productsCollection)}
}

// GetBySlug retrieves one product record. The active flag is returned as-is;
// enforcement is the middleware's concern.
func (d *MongoDirectory) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	var p Product
	err := d.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}
