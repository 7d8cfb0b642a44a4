package tool_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/steam-mcp/domain/tool"
)

func echoHandler(ctx context.Context, args tool.Args) (string, error) {
	return args.String("text"), nil
}

func TestToolBuilder_Basic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		toolName    string
		description string
		handler     tool.Handler
		wantErr     error
	}{
		{
			name:        "valid tool",
			toolName:    "echo",
			description: "Echoes the input text",
			handler:     echoHandler,
			wantErr:     nil,
		},
		{
			name:        "empty name fails",
			toolName:    "",
			description: "Should fail",
			handler:     echoHandler,
			wantErr:     tool.ErrEmptyName,
		},
		{
			name:        "missing handler fails",
			toolName:    "no_handler",
			description: "Should fail",
			handler:     nil,
			wantErr:     tool.ErrNoHandler,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			builder := tool.NewBuilder(tt.toolName).
				WithDescription(tt.description)
			if tt.handler != nil {
				builder = builder.WithHandler(tt.handler)
			}

			built, err := builder.Build()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr == nil {
				if built.Name() != tt.toolName {
					t.Errorf("Name() = %v, want %v", built.Name(), tt.toolName)
				}
				if built.Description() != tt.description {
					t.Errorf("Description() = %v, want %v", built.Description(), tt.description)
				}
			}
		})
	}
}

func TestToolBuilder_ParamValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		build   func() (tool.Tool, error)
		wantErr error
	}{
		{
			name: "duplicate parameter fails",
			build: func() (tool.Tool, error) {
				return tool.NewBuilder("dup").
					WithStringParam("steamid", "first", true).
					WithStringParam("steamid", "second", false).
					WithHandler(echoHandler).
					Build()
			},
			wantErr: tool.ErrDuplicateParam,
		},
		{
			name: "default of wrong type fails",
			build: func() (tool.Tool, error) {
				return tool.NewBuilder("bad_default").
					WithParam(tool.Param{Name: "limit", Type: tool.TypeInteger, Default: "25"}).
					WithHandler(echoHandler).
					Build()
			},
			wantErr: tool.ErrBadDefault,
		},
		{
			name: "enum default outside enum fails",
			build: func() (tool.Tool, error) {
				return tool.NewBuilder("bad_enum").
					WithEnumParam("sort_by", "sort order", "alphabetical", "playtime", "name", "recent").
					WithHandler(echoHandler).
					Build()
			},
			wantErr: tool.ErrBadDefault,
		},
		{
			name: "unnamed parameter fails",
			build: func() (tool.Tool, error) {
				return tool.NewBuilder("unnamed").
					WithParam(tool.Param{Type: tool.TypeString}).
					WithHandler(echoHandler).
					Build()
			},
			wantErr: tool.ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.build()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToolExecute(t *testing.T) {
	t.Parallel()

	built := tool.NewBuilder("echo").
		WithDescription("Echoes the input text").
		WithStringParam("text", "Text to echo", true).
		WithHandler(echoHandler).
		MustBuild()

	got, err := built.Execute(context.Background(), tool.Args{"text": "hello"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("Execute() = %q, want %q", got, "hello")
	}
}

func TestDescriptorInputSchema(t *testing.T) {
	t.Parallel()

	built := tool.NewBuilder("get_owned_games").
		WithDescription("Lists games owned by a player").
		WithStringParam("steamid", "Steam identity", true).
		WithBoolDefault("include_free", "Include free games", false).
		WithEnumParam("sort_by", "Sort order", "playtime", "playtime", "name", "recent").
		WithIntDefault("limit", "Maximum games listed", 25).
		WithStringListParam("tags", "Filter tags", false).
		WithHandler(echoHandler).
		MustBuild()

	schema := tool.Describe(built).InputSchema()

	if schema["type"] != "object" {
		t.Errorf("schema type = %v, want object", schema["type"])
	}

	required, ok := schema["required"].([]string)
	if !ok || !reflect.DeepEqual(required, []string{"steamid"}) {
		t.Errorf("schema required = %v, want [steamid]", schema["required"])
	}

	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema properties missing")
	}
	if len(properties) != 5 {
		t.Errorf("properties count = %d, want 5", len(properties))
	}

	sortBy, ok := properties["sort_by"].(map[string]any)
	if !ok {
		t.Fatalf("sort_by property missing")
	}
	if sortBy["type"] != "string" {
		t.Errorf("sort_by type = %v, want string", sortBy["type"])
	}
	if !reflect.DeepEqual(sortBy["enum"], []string{"playtime", "name", "recent"}) {
		t.Errorf("sort_by enum = %v", sortBy["enum"])
	}
	if sortBy["default"] != "playtime" {
		t.Errorf("sort_by default = %v, want playtime", sortBy["default"])
	}

	tags, ok := properties["tags"].(map[string]any)
	if !ok {
		t.Fatalf("tags property missing")
	}
	if tags["type"] != "array" {
		t.Errorf("tags type = %v, want array", tags["type"])
	}
	if !reflect.DeepEqual(tags["items"], map[string]any{"type": "string"}) {
		t.Errorf("tags items = %v", tags["items"])
	}
}

func TestDescriptorParamSummary(t *testing.T) {
	t.Parallel()

	built := tool.NewBuilder("get_owned_games").
		WithDescription("Lists games owned by a player").
		WithStringParam("steamid", "Steam identity", true).
		WithEnumParam("sort_by", "Sort order", "playtime", "playtime", "name", "recent").
		WithIntDefault("limit", "Maximum games listed", 25).
		WithHandler(echoHandler).
		MustBuild()

	got := tool.Describe(built).ParamSummary()
	want := "- steamid (string, required): Steam identity\n" +
		"- sort_by (string, default playtime, one of playtime|name|recent): Sort order\n" +
		"- limit (integer, default 25): Maximum games listed"
	if got != want {
		t.Errorf("ParamSummary() = %q, want %q", got, want)
	}

	empty := tool.NewBuilder("ping").
		WithDescription("No parameters").
		WithHandler(echoHandler).
		MustBuild()
	if got := tool.Describe(empty).ParamSummary(); got != "" {
		t.Errorf("ParamSummary() for no params = %q, want empty", got)
	}
}
