package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the path to the invalid field.
	Path string
	// Message describes the validation error.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates server configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(config *Config) ValidationErrors {
	v.errors = nil

	v.validateServer(config)
	v.validateSteam(config)
	v.validateCache(config)
	v.validateLimits(config)

	return v.errors
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *Validator) validateServer(config *Config) {
	switch config.Server.LogLevel {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		v.addError("server.log_level", fmt.Sprintf("unknown log level %q (use trace, debug, info, warn, or error)", config.Server.LogLevel))
	}
	switch config.Server.LogFormat {
	case "", "json", "console":
	default:
		v.addError("server.log_format", fmt.Sprintf("unknown log format %q (use json or console)", config.Server.LogFormat))
	}
}

func (v *Validator) validateSteam(config *Config) {
	if config.Steam.APIKey == "" {
		v.addError("steam.api_key", "api key is required")
	}
	if config.Steam.RequestsPerSecond <= 0 {
		v.addError("steam.requests_per_second", "rate must be positive")
	}
	if config.Steam.Burst < 0 {
		v.addError("steam.burst", "burst cannot be negative")
	}
	if config.Steam.MaxAttempts < 1 {
		v.addError("steam.max_attempts", "at least one attempt is required")
	}
	if config.Steam.Timeout < 0 {
		v.addError("steam.timeout", "timeout cannot be negative")
	}
}

func (v *Validator) validateCache(config *Config) {
	if config.Cache.Enabled && config.Cache.MaxEntries < 1 {
		v.addError("cache.max_entries", "an enabled cache needs a positive capacity")
	}
}

func (v *Validator) validateLimits(config *Config) {
	if config.Limits.MaxConcurrent < 1 {
		v.addError("limits.max_concurrent", "at least one concurrent invocation is required")
	}
	if config.Limits.InvocationTimeout < 0 {
		v.addError("limits.invocation_timeout", "timeout cannot be negative")
	}
}
