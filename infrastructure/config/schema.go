package config

import (
	"encoding/json"
)

// JSONSchema represents a JSON Schema document.
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	Items                *JSONSchema            `json:"items,omitempty"`
	AdditionalProperties *JSONSchema            `json:"additionalProperties,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Default              any                    `json:"default,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	Maximum              *float64               `json:"maximum,omitempty"`
	Pattern              string                 `json:"pattern,omitempty"`
	Format               string                 `json:"format,omitempty"`
}

// GenerateSchema generates a JSON Schema for the server configuration file.
func GenerateSchema() *JSONSchema {
	return &JSONSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          "https://github.com/felixgeelhaar/steam-mcp/steam-mcp-config.schema.json",
		Title:       "Steam MCP Configuration",
		Description: "Configuration schema for the steam-mcp server",
		Type:        "object",
		Required:    []string{"steam"},
		Properties: map[string]*JSONSchema{
			"server": generateServerSchema(),
			"steam":  generateSteamSchema(),
			"cache":  generateCacheSchema(),
			"limits": generateLimitsSchema(),
		},
	}
}

func generateServerSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Logging and transport settings",
		Properties: map[string]*JSONSchema{
			"log_level": {
				Type:        "string",
				Description: "Minimum log level",
				Enum:        []string{"trace", "debug", "info", "warn", "error"},
				Default:     "info",
			},
			"log_format": {
				Type:        "string",
				Description: "Log output format",
				Enum:        []string{"json", "console"},
				Default:     "json",
			},
		},
	}
}

func generateSteamSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Steam Web API client settings",
		Required:    []string{"api_key"},
		Properties: map[string]*JSONSchema{
			"api_key": {
				Type:        "string",
				Description: "Steam Web API key (https://steamcommunity.com/dev/apikey)",
			},
			"owner_steam_id": {
				Type:        "string",
				Description: "Steam identity behind owner aliases like 'me'; any textual format",
			},
			"requests_per_second": {
				Type:        "number",
				Description: "Sustained request rate against the Web API",
				Default:     10.0,
			},
			"burst": {
				Type:        "integer",
				Description: "Token bucket capacity; 0 derives ceil(rate)",
				Minimum:     floatPtr(0),
			},
			"max_attempts": {
				Type:        "integer",
				Description: "Total HTTP attempts per request, first try included",
				Default:     3,
				Minimum:     floatPtr(1),
			},
			"timeout": {
				Type:        "string",
				Description: "Per-attempt HTTP timeout (Go duration string)",
				Default:     "30s",
			},
		},
	}
}

func generateCacheSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Response cache settings",
		Properties: map[string]*JSONSchema{
			"enabled": {
				Type:        "boolean",
				Description: "Toggles the in-memory response cache",
				Default:     true,
			},
			"max_entries": {
				Type:        "integer",
				Description: "Bounds the number of cached responses",
				Default:     4096,
				Minimum:     floatPtr(1),
			},
		},
	}
}

func generateLimitsSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Invocation concurrency and timeout settings",
		Properties: map[string]*JSONSchema{
			"max_concurrent": {
				Type:        "integer",
				Description: "Bounds concurrently executing tool invocations",
				Default:     8,
				Minimum:     floatPtr(1),
			},
			"invocation_timeout": {
				Type:        "string",
				Description: "Bounds a single tool invocation end to end (Go duration string)",
				Default:     "120s",
			},
		},
	}
}

// MarshalIndent renders the schema as indented JSON.
func (s *JSONSchema) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func floatPtr(f float64) *float64 {
	return &f
}
