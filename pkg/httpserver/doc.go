// Package httpserver wraps net/http.Server with graceful shutdown,
// option-based configuration and health check helpers.
package httpserver
