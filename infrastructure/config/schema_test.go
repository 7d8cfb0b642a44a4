package config

import (
	"encoding/json"
	"testing"
)

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema()

	if schema.Schema != "https://json-schema.org/draft/2020-12/schema" {
		t.Errorf("Schema = %s, want draft/2020-12", schema.Schema)
	}
	if schema.Type != "object" {
		t.Errorf("Type = %s, want object", schema.Type)
	}
	if schema.Title != "Steam MCP Configuration" {
		t.Errorf("Title = %s, want Steam MCP Configuration", schema.Title)
	}

	requiredSet := make(map[string]bool)
	for _, r := range schema.Required {
		requiredSet[r] = true
	}
	if !requiredSet["steam"] {
		t.Error("steam section should be required")
	}

	expectedProps := []string{"server", "steam", "cache", "limits"}
	for _, prop := range expectedProps {
		if _, ok := schema.Properties[prop]; !ok {
			t.Errorf("missing property: %s", prop)
		}
	}
}

func TestGenerateSchema_SteamProperties(t *testing.T) {
	schema := GenerateSchema()
	steam := schema.Properties["steam"]

	if steam.Type != "object" {
		t.Errorf("steam.Type = %s, want object", steam.Type)
	}

	requiredSet := make(map[string]bool)
	for _, r := range steam.Required {
		requiredSet[r] = true
	}
	if !requiredSet["api_key"] {
		t.Error("api_key should be required")
	}

	for _, prop := range []string{"api_key", "owner_steam_id", "requests_per_second", "burst", "max_attempts", "timeout"} {
		if _, ok := steam.Properties[prop]; !ok {
			t.Errorf("missing steam property: %s", prop)
		}
	}

	attempts := steam.Properties["max_attempts"]
	if attempts.Minimum == nil || *attempts.Minimum != 1 {
		t.Error("max_attempts should have a minimum of 1")
	}
}

func TestGenerateSchema_MarshalsToValidJSON(t *testing.T) {
	schema := GenerateSchema()

	data, err := schema.MarshalIndent()
	if err != nil {
		t.Fatalf("MarshalIndent() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if decoded["$schema"] == "" {
		t.Error("expected $schema in output")
	}
}
