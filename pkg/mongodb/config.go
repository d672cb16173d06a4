package mongodb

import "time"

// Config represents the shared MongoDB deployment settings. The same base URI
// serves both the control-plane database and every product database; only the
// database name differs per connection.
type Config struct {
	BaseURI         string        `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"` // Base URI without a database name.
	ControlDatabase string        `env:"MONGODB_CONTROL_DB" envDefault:"admin_panel"`        // Database holding the product directory.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"5s"`            // Hard limit for connection establishment.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"10"`              // Maximum connections per product database.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"2"`               // Minimum connections kept open per product database.
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true"`             // Whether to retry write operations.
}
