// Package storage uploads per-product assets to Amazon S3 or an
// S3-compatible service. Storage is optional: the server boots without it
// and upload endpoints report it unavailable.
package storage
