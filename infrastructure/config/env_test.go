package config

import (
	"errors"
	"os"
	"testing"

	domainconfig "github.com/felixgeelhaar/steam-mcp/domain/config"
)

func TestEnvExpander_SimpleExpansion(t *testing.T) {
	os.Setenv("TEST_VAR", "hello")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bracket syntax",
			input: "${TEST_VAR}",
			want:  "hello",
		},
		{
			name:  "dollar syntax",
			input: "$TEST_VAR",
			want:  "hello",
		},
		{
			name:  "embedded in text",
			input: "api_key: ${TEST_VAR}-suffix",
			want:  "api_key: hello-suffix",
		},
		{
			name:  "multiple variables",
			input: "${TEST_VAR} ${TEST_VAR}",
			want:  "hello hello",
		},
		{
			name:  "no variables",
			input: "plain text",
			want:  "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandEnv(tt.input)
			if got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnvExpander_DefaultValue(t *testing.T) {
	os.Unsetenv("UNSET_VAR")
	os.Setenv("SET_VAR", "set-value")
	defer os.Unsetenv("SET_VAR")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "unset with default",
			input: "${UNSET_VAR:-fallback}",
			want:  "fallback",
		},
		{
			name:  "set ignores default",
			input: "${SET_VAR:-fallback}",
			want:  "set-value",
		},
		{
			name:  "empty default",
			input: "${UNSET_VAR:-}",
			want:  "",
		},
		{
			name:  "unset without default",
			input: "${UNSET_VAR}",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandEnv(tt.input)
			if got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnvExpander_RequiredVariable(t *testing.T) {
	os.Unsetenv("REQUIRED_VAR")

	e := &envExpander{}
	_, err := e.Expand("${REQUIRED_VAR:?the api key is required}")
	if !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Errorf("expected ErrMissingEnvVar, got %v", err)
	}
}

func TestEnvExpander_StrictMode(t *testing.T) {
	os.Unsetenv("STRICT_UNSET")

	_, err := ExpandEnvStrict("value: ${STRICT_UNSET}")
	if !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Errorf("expected ErrMissingEnvVar in strict mode, got %v", err)
	}

	got := ExpandEnv("value: ${STRICT_UNSET}")
	if got != "value: " {
		t.Errorf("non-strict mode should expand to empty, got %q", got)
	}
}
