package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidNode      = errors.New("invalid node construction")
	ErrOutOfRange       = errors.New("index out of range")
	ErrStoreUnavailable = errors.New("store unavailable")
)
