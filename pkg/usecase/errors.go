package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Configuration errors, fatal before any lookup
	ErrInvalidConfig = errors.New("invalid run configuration")

	// Delivery errors
	ErrStorageFailed = errors.New("artifact storage failed")

	// Directory errors
	ErrDirectoryUnavailable = errors.New("directory unavailable")
)

// Context keys for error values
const (
	UserIDKey   = "user_id"
	RunIDKey    = "run_id"
	NotifierKey = "notifier"
)
