package cache

import "errors"

// Domain errors for cache operations.
var (
	// ErrInvalidKey is returned when a key is invalid (e.g., empty).
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrInvalidCapacity is returned when a cache is created with a
	// non-positive capacity.
	ErrInvalidCapacity = errors.New("cache capacity must be positive")
)
