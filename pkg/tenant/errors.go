package tenant

import "errors"

var (
	// ErrProductNotFound is returned when no product matches the requested slug.
	ErrProductNotFound = errors.New("product not found")

	// ErrProductInactive is returned when the product exists but is disabled.
	ErrProductInactive = errors.New("product is inactive")

	// ErrConnectionFailed is returned when the product database connection
	// cannot be established. Failures are never cached; the next request
	// retries from scratch.
	ErrConnectionFailed = errors.New("product database connection failed")

	// ErrNoProductInContext is returned when a handler requires a resolved
	// product but the middleware did not run.
	ErrNoProductInContext = errors.New("no product in context")
)
