package tool

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Tool represents a registered capability callers can invoke.
type Tool interface {
	// Name returns the stable string identifier for the tool.
	Name() string

	// Description returns a human-readable description of what the tool does.
	Description() string

	// Params returns the tool's parameter declarations.
	Params() Params

	// Execute runs the tool with validated arguments.
	Execute(ctx context.Context, args Args) (string, error)
}

// Handler is the function signature for tool execution. Handlers receive
// arguments already validated against the tool's parameter declarations and
// return human-readable text.
type Handler func(ctx context.Context, args Args) (string, error)

// Descriptor is the advertised form of a tool: everything a client needs to
// decide whether and how to call it.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Params      Params `json:"params,omitempty"`
}

// InputSchema renders the descriptor's parameters as a JSON Schema
// object, for tooling that exports the tool surface.
func (d Descriptor) InputSchema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	required := make([]string, 0, len(d.Params))
	for _, p := range d.Params {
		prop := map[string]any{
			"type": p.jsonType(),
		}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		if p.Type == TypeStringList {
			prop["items"] = map[string]any{"type": "string"}
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	sort.Strings(required)
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// ParamSummary renders the parameter declarations as one line per
// parameter. Transports whose advertised schema cannot carry the
// declarations fold this into the tool description instead.
func (d Descriptor) ParamSummary() string {
	if len(d.Params) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range d.Params {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(p.Name)
		b.WriteString(" (")
		b.WriteString(string(p.Type))
		if p.Required {
			b.WriteString(", required")
		}
		if p.Default != nil {
			fmt.Fprintf(&b, ", default %v", p.Default)
		}
		if len(p.Enum) > 0 {
			fmt.Fprintf(&b, ", one of %s", strings.Join(p.Enum, "|"))
		}
		b.WriteString(")")
		if p.Description != "" {
			b.WriteString(": ")
			b.WriteString(p.Description)
		}
	}
	return b.String()
}

// Describe returns the advertised descriptor for a tool.
func Describe(t Tool) Descriptor {
	return Descriptor{
		Name:        t.Name(),
		Description: t.Description(),
		Params:      t.Params(),
	}
}

// Definition is a concrete implementation of Tool.
type Definition struct {
	name        string
	description string
	params      Params
	handler     Handler
}

// Name returns the tool name.
func (d *Definition) Name() string {
	return d.name
}

// Description returns the tool description.
func (d *Definition) Description() string {
	return d.description
}

// Params returns the parameter declarations.
func (d *Definition) Params() Params {
	return d.params
}

// Execute runs the tool handler.
func (d *Definition) Execute(ctx context.Context, args Args) (string, error) {
	if d.handler == nil {
		return "", ErrNoHandler
	}
	return d.handler(ctx, args)
}

// Builder provides a fluent API for constructing tools.
type Builder struct {
	def *Definition
	err error
}

// NewBuilder creates a new tool builder with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		def: &Definition{name: name},
	}
}

// WithDescription sets the tool description.
func (b *Builder) WithDescription(desc string) *Builder {
	if b.err != nil {
		return b
	}
	b.def.description = desc
	return b
}

// WithParam adds a parameter declaration.
func (b *Builder) WithParam(p Param) *Builder {
	if b.err != nil {
		return b
	}
	if p.Name == "" {
		b.err = ErrEmptyName
		return b
	}
	if _, exists := b.def.params.Get(p.Name); exists {
		b.err = ErrDuplicateParam
		return b
	}
	if err := checkDefault(p); err != nil {
		b.err = err
		return b
	}
	b.def.params = append(b.def.params, p)
	return b
}

// WithStringParam adds a string parameter.
func (b *Builder) WithStringParam(name, desc string, required bool) *Builder {
	return b.WithParam(Param{Name: name, Type: TypeString, Description: desc, Required: required})
}

// WithStringDefault adds an optional string parameter with a default.
func (b *Builder) WithStringDefault(name, desc, def string) *Builder {
	return b.WithParam(Param{Name: name, Type: TypeString, Description: desc, Default: def})
}

// WithEnumParam adds an optional string parameter restricted to the allowed
// values, with a default.
func (b *Builder) WithEnumParam(name, desc, def string, allowed ...string) *Builder {
	return b.WithParam(Param{Name: name, Type: TypeString, Description: desc, Default: def, Enum: allowed})
}

// WithIntParam adds an integer parameter.
func (b *Builder) WithIntParam(name, desc string, required bool) *Builder {
	return b.WithParam(Param{Name: name, Type: TypeInteger, Description: desc, Required: required})
}

// WithIntDefault adds an optional integer parameter with a default.
func (b *Builder) WithIntDefault(name, desc string, def int) *Builder {
	return b.WithParam(Param{Name: name, Type: TypeInteger, Description: desc, Default: def})
}

// WithBoolDefault adds an optional boolean parameter with a default.
func (b *Builder) WithBoolDefault(name, desc string, def bool) *Builder {
	return b.WithParam(Param{Name: name, Type: TypeBoolean, Description: desc, Default: def})
}

// WithStringListParam adds a string-list parameter.
func (b *Builder) WithStringListParam(name, desc string, required bool) *Builder {
	return b.WithParam(Param{Name: name, Type: TypeStringList, Description: desc, Required: required})
}

// WithHandler sets the tool handler function.
func (b *Builder) WithHandler(handler Handler) *Builder {
	if b.err != nil {
		return b
	}
	b.def.handler = handler
	return b
}

// Build constructs the tool definition.
func (b *Builder) Build() (Tool, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.def.name == "" {
		return nil, ErrEmptyName
	}
	if b.def.handler == nil {
		return nil, ErrNoHandler
	}
	return b.def, nil
}

// MustBuild constructs the tool definition or panics on error.
func (b *Builder) MustBuild() Tool {
	tool, err := b.Build()
	if err != nil {
		panic(err)
	}
	return tool
}
