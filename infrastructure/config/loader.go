// Package config provides configuration loading and parsing for steam-mcp.
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/steam-mcp/domain/config"
)

// Loader loads server configuration from files.
type Loader struct {
	// ExpandEnv enables environment variable expansion.
	ExpandEnv bool
	// StrictEnv fails if referenced env vars are missing.
	StrictEnv bool
	// Validate enables configuration validation.
	Validate bool
}

// NewLoader creates a new configuration loader with default settings.
func NewLoader() *Loader {
	return &Loader{
		ExpandEnv: true,
		StrictEnv: false,
		Validate:  true,
	}
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables environment variable expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.ExpandEnv = enabled
	}
}

// WithStrictEnv enables strict environment variable checking.
func WithStrictEnv(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.StrictEnv = enabled
	}
}

// WithValidation enables or disables configuration validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Validate = enabled
	}
}

// NewLoaderWithOptions creates a loader with the specified options.
func NewLoaderWithOptions(opts ...LoaderOption) *Loader {
	l := NewLoader()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile loads configuration from a file path. Values absent from the
// file keep their defaults; environment overrides apply on top.
func (l *Loader) LoadFile(path string) (*config.Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", config.ErrInvalidFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	var format Format
	switch ext {
	case ".yaml", ".yml":
		format = FormatYAML
	case ".json":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, ext)
	}

	return l.Load(f, format)
}

// Format represents a configuration file format.
type Format string

const (
	// FormatYAML is the YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
)

// Load loads configuration from a reader. The result starts from
// config.Default, takes file values on top, then environment overrides.
func (l *Loader) Load(r io.Reader, format Format) (*config.Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if l.ExpandEnv {
		data, err = l.expandEnvVars(data)
		if err != nil {
			return nil, err
		}
	}

	// Unmarshal over defaults so omitted keys keep their default values.
	cfg := config.Default()
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidFormat, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnsupportedFormat, format)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if l.Validate {
		validator := config.NewValidator()
		if errs := validator.Validate(cfg); errs.HasErrors() {
			return nil, fmt.Errorf("%w: %v", config.ErrValidationFailed, errs)
		}
	}

	return cfg, nil
}

// expandEnvVars expands ${VAR} and $VAR patterns in the data.
func (l *Loader) expandEnvVars(data []byte) ([]byte, error) {
	expander := &envExpander{
		strict: l.StrictEnv,
	}
	result, err := expander.Expand(string(data))
	if err != nil {
		return nil, err
	}
	return []byte(result), nil
}

// LoadString loads configuration from a string.
func (l *Loader) LoadString(content string, format Format) (*config.Config, error) {
	return l.Load(strings.NewReader(content), format)
}

// FromEnv builds a configuration from defaults and environment variables
// alone, for running without a config file.
func FromEnv() (*config.Config, error) {
	cfg := config.Default()
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	validator := config.NewValidator()
	if errs := validator.Validate(cfg); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %v", config.ErrValidationFailed, errs)
	}
	return cfg, nil
}

// ApplyEnv overrides configuration values from well-known environment
// variables. Unset variables leave the configuration untouched.
func ApplyEnv(cfg *config.Config) error {
	if v, ok := os.LookupEnv("STEAM_API_KEY"); ok {
		cfg.Steam.APIKey = v
	}
	if v, ok := os.LookupEnv("STEAM_USER_ID"); ok {
		cfg.Steam.OwnerSteamID = v
	}
	if v, ok := os.LookupEnv("STEAM_RATE_LIMIT"); ok {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envParseError("STEAM_RATE_LIMIT", v, err)
		}
		cfg.Steam.RequestsPerSecond = rate
	}
	if v, ok := os.LookupEnv("STEAM_RATE_BURST"); ok {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return envParseError("STEAM_RATE_BURST", v, err)
		}
		cfg.Steam.Burst = burst
	}
	if v, ok := os.LookupEnv("STEAM_MAX_RETRIES"); ok {
		attempts, err := strconv.Atoi(v)
		if err != nil {
			return envParseError("STEAM_MAX_RETRIES", v, err)
		}
		cfg.Steam.MaxAttempts = attempts
	}
	if v, ok := os.LookupEnv("STEAM_TIMEOUT"); ok {
		timeout, err := parseEnvDuration(v)
		if err != nil {
			return envParseError("STEAM_TIMEOUT", v, err)
		}
		cfg.Steam.Timeout = config.Duration(timeout)
	}
	if v, ok := os.LookupEnv("STEAM_MCP_LOG_LEVEL"); ok {
		cfg.Server.LogLevel = v
	}
	if v, ok := os.LookupEnv("STEAM_MCP_LOG_FORMAT"); ok {
		cfg.Server.LogFormat = v
	}
	if v, ok := os.LookupEnv("STEAM_MCP_CACHE_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return envParseError("STEAM_MCP_CACHE_ENABLED", v, err)
		}
		cfg.Cache.Enabled = enabled
	}
	if v, ok := os.LookupEnv("STEAM_MCP_CACHE_MAX_ENTRIES"); ok {
		entries, err := strconv.Atoi(v)
		if err != nil {
			return envParseError("STEAM_MCP_CACHE_MAX_ENTRIES", v, err)
		}
		cfg.Cache.MaxEntries = entries
	}
	if v, ok := os.LookupEnv("STEAM_MCP_MAX_CONCURRENT"); ok {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return envParseError("STEAM_MCP_MAX_CONCURRENT", v, err)
		}
		cfg.Limits.MaxConcurrent = limit
	}
	if v, ok := os.LookupEnv("STEAM_MCP_INVOCATION_TIMEOUT"); ok {
		timeout, err := parseEnvDuration(v)
		if err != nil {
			return envParseError("STEAM_MCP_INVOCATION_TIMEOUT", v, err)
		}
		cfg.Limits.InvocationTimeout = config.Duration(timeout)
	}
	return nil
}

// parseEnvDuration accepts Go duration strings and, for convenience,
// bare numbers meaning seconds.
func parseEnvDuration(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

func envParseError(name, value string, err error) error {
	return fmt.Errorf("%w: %s=%q: %v", config.ErrInvalidFormat, name, value, err)
}
