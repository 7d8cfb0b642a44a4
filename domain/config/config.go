// Package config provides domain models for steam-mcp server configuration.
package config

import (
	"math"
	"time"
)

// Config represents the complete server configuration.
type Config struct {
	// Server contains logging and transport settings.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`
	// Steam contains Steam Web API client settings.
	Steam SteamConfig `json:"steam" yaml:"steam"`
	// Cache contains response cache settings.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`
	// Limits contains invocation concurrency and timeout settings.
	Limits LimitsConfig `json:"limits,omitempty" yaml:"limits,omitempty"`
}

// ServerConfig contains logging and transport settings.
type ServerConfig struct {
	// LogLevel is the minimum log level (trace, debug, info, warn, error).
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	// LogFormat is the log output format (json, console).
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty"`
}

// SteamConfig contains Steam Web API client settings.
type SteamConfig struct {
	// APIKey is the Steam Web API key. Required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	// OwnerSteamID identifies the account behind owner aliases like "me".
	// Accepts any textual Steam identity format. Empty disables the aliases.
	OwnerSteamID string `json:"owner_steam_id,omitempty" yaml:"owner_steam_id,omitempty"`
	// RequestsPerSecond is the sustained request rate against the Web API.
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	// Burst is the token bucket capacity. Zero derives ceil(rate), minimum 1.
	Burst int `json:"burst,omitempty" yaml:"burst,omitempty"`
	// MaxAttempts is the total number of HTTP attempts per request,
	// the first try included.
	MaxAttempts int `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	// Timeout is the per-attempt HTTP timeout.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// CacheConfig contains response cache settings.
type CacheConfig struct {
	// Enabled toggles the in-memory response cache.
	Enabled bool `json:"enabled" yaml:"enabled"`
	// MaxEntries bounds the number of cached responses.
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
}

// LimitsConfig contains invocation concurrency and timeout settings.
type LimitsConfig struct {
	// MaxConcurrent bounds concurrently executing tool invocations.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
	// InvocationTimeout bounds a single tool invocation end to end.
	InvocationTimeout Duration `json:"invocation_timeout,omitempty" yaml:"invocation_timeout,omitempty"`
}

// Default returns a configuration populated with default values.
// The API key has no default and must be supplied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
		Steam: SteamConfig{
			RequestsPerSecond: 10.0,
			MaxAttempts:       3,
			Timeout:           Duration(30 * time.Second),
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 4096,
		},
		Limits: LimitsConfig{
			MaxConcurrent:     8,
			InvocationTimeout: Duration(120 * time.Second),
		},
	}
}

// EffectiveBurst resolves the bucket capacity: the configured burst when
// positive, otherwise ceil(rate) with a floor of 1.
func (c SteamConfig) EffectiveBurst() int {
	if c.Burst > 0 {
		return c.Burst
	}
	burst := int(math.Ceil(c.RequestsPerSecond))
	if burst < 1 {
		burst = 1
	}
	return burst
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}

	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
