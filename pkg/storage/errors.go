package storage

import "errors"

var (
	// ErrMissingConfig is returned when required S3 settings are absent.
	ErrMissingConfig = errors.New("storage: bucket and region are required")

	// ErrUploadFailed wraps S3 upload failures.
	ErrUploadFailed = errors.New("storage: upload failed")

	// ErrDeleteFailed wraps S3 delete failures.
	ErrDeleteFailed = errors.New("storage: delete failed")
)
