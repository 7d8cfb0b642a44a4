package steamid

import (
	"errors"
	"fmt"
)

// Domain errors for Steam identity normalization.
var (
	// ErrInvalidFormat indicates the input matched no recognized spelling.
	ErrInvalidFormat = errors.New("unrecognized steam id format")

	// ErrUnresolvableAlias indicates a vanity alias that Steam could not
	// resolve to an account.
	ErrUnresolvableAlias = errors.New("vanity alias did not resolve")

	// ErrNoOwnerConfigured indicates an owner shorthand ("me") was used but
	// no owner identity is configured.
	ErrNoOwnerConfigured = errors.New("no owner steam id configured (set STEAM_USER_ID to use 'me')")
)

// InvalidFormatError reports the input that matched no recognized spelling.
type InvalidFormatError struct {
	Input string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("unrecognized steam id format: %q", e.Input)
}

func (e *InvalidFormatError) Unwrap() error {
	return ErrInvalidFormat
}

// UnresolvableAliasError reports a vanity alias Steam answered "no match" for.
type UnresolvableAliasError struct {
	Alias string
}

func (e *UnresolvableAliasError) Error() string {
	return fmt.Sprintf("vanity alias did not resolve: %q", e.Alias)
}

func (e *UnresolvableAliasError) Unwrap() error {
	return ErrUnresolvableAlias
}
