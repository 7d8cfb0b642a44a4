package tool

import (
	"errors"
	"fmt"
)

// Domain errors for the tool system.
var (
	// ErrEmptyName indicates a tool was built with an empty name.
	ErrEmptyName = errors.New("tool name cannot be empty")

	// ErrNoHandler indicates a tool was built without a handler.
	ErrNoHandler = errors.New("tool has no handler")

	// ErrDuplicateParam indicates a tool declares the same parameter twice.
	ErrDuplicateParam = errors.New("duplicate parameter name")

	// ErrBadDefault indicates a declared default does not match the
	// parameter's declared type or enum.
	ErrBadDefault = errors.New("default value does not match parameter declaration")

	// ErrUnknownTool indicates the requested tool is not registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDuplicateName indicates a tool with the same name is already
	// registered. The first registration wins.
	ErrDuplicateName = errors.New("tool name already registered")

	// ErrRegistrySealed indicates a registration attempt after the registry
	// was sealed for serving.
	ErrRegistrySealed = errors.New("registry is sealed")

	// ErrInvalidArguments indicates invocation arguments that failed
	// validation against the tool's parameter declarations.
	ErrInvalidArguments = errors.New("invalid tool arguments")
)

// InvalidArgumentsError reports which parameter failed validation and why.
type InvalidArgumentsError struct {
	Param  string
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("invalid tool arguments: parameter %q: %s", e.Param, e.Reason)
}

func (e *InvalidArgumentsError) Unwrap() error {
	return ErrInvalidArguments
}
