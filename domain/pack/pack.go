// Package pack provides types for reusable tool collections.
package pack

import (
	"fmt"

	"github.com/felixgeelhaar/steam-mcp/domain/tool"
)

// Pack is a collection of related tools installed into a registry as a unit.
type Pack struct {
	// Name is the unique identifier for the pack.
	Name string

	// Description explains what the pack provides.
	Description string

	// Version is the semantic version of the pack.
	Version string

	// Tools is the collection of tools in this pack.
	Tools []tool.Tool
}

// ToolNames returns the names of all tools in the pack.
func (p *Pack) ToolNames() []string {
	names := make([]string, len(p.Tools))
	for i, t := range p.Tools {
		names[i] = t.Name()
	}
	return names
}

// GetTool returns a tool by name from the pack.
func (p *Pack) GetTool(name string) (tool.Tool, bool) {
	for _, t := range p.Tools {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Install registers every tool in the pack. The first registration failure
// aborts the install and is returned with the pack and tool named.
func (p *Pack) Install(reg tool.Registry) error {
	for _, t := range p.Tools {
		if err := reg.Register(t); err != nil {
			return fmt.Errorf("install pack %s: tool %s: %w", p.Name, t.Name(), err)
		}
	}
	return nil
}

// InstallAll installs packs in order into the registry.
func InstallAll(reg tool.Registry, packs ...*Pack) error {
	for _, p := range packs {
		if err := p.Install(reg); err != nil {
			return err
		}
	}
	return nil
}

// Builder provides a fluent API for constructing packs.
type Builder struct {
	pack *Pack
	err  error
}

// NewBuilder creates a new pack builder.
func NewBuilder(name string) *Builder {
	return &Builder{
		pack: &Pack{
			Name:  name,
			Tools: make([]tool.Tool, 0),
		},
	}
}

// WithDescription sets the pack description.
func (b *Builder) WithDescription(desc string) *Builder {
	b.pack.Description = desc
	return b
}

// WithVersion sets the pack version.
func (b *Builder) WithVersion(version string) *Builder {
	b.pack.Version = version
	return b
}

// AddTool adds a tool to the pack.
func (b *Builder) AddTool(t tool.Tool) *Builder {
	if b.err != nil {
		return b
	}
	if t == nil {
		b.err = fmt.Errorf("%w: nil tool", ErrInvalidPack)
		return b
	}
	if _, exists := b.pack.GetTool(t.Name()); exists {
		b.err = fmt.Errorf("%w: duplicate tool %q", ErrInvalidPack, t.Name())
		return b
	}
	b.pack.Tools = append(b.pack.Tools, t)
	return b
}

// AddTools adds multiple tools to the pack.
func (b *Builder) AddTools(tools ...tool.Tool) *Builder {
	for _, t := range tools {
		b.AddTool(t)
	}
	return b
}

// Build returns the constructed pack.
func (b *Builder) Build() (*Pack, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.pack.Name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidPack)
	}
	if b.pack.Version == "" {
		return nil, fmt.Errorf("%w: pack %q has no version", ErrInvalidPack, b.pack.Name)
	}
	return b.pack, nil
}

// MustBuild returns the constructed pack or panics on error.
func (b *Builder) MustBuild() *Pack {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
