package pack

import "errors"

// Domain errors for pack operations.
var (
	// ErrInvalidPack is returned when a pack fails build validation.
	ErrInvalidPack = errors.New("invalid pack")
)
