// Package logger builds configured slog.Logger instances for the service.
//
// Loggers are created once in the composition root and passed down
// explicitly. Handlers can be decorated with context extractors so that
// request-scoped values (tenant slug, request ID) are attached to every log
// record without manual plumbing at each call site.
package logger
