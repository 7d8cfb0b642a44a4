// Package memory provides in-memory storage implementations.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/steam-mcp/domain/tool"
)

// ToolRegistry is an in-memory implementation of tool.Registry. Registration
// happens during startup; Seal closes the mutation window before serving.
type ToolRegistry struct {
	tools  map[string]tool.Tool
	sealed bool
	mu     sync.RWMutex
}

// NewToolRegistry creates a new in-memory tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]tool.Tool),
	}
}

// Register adds a tool to the registry. The first registration of a name
// wins; a duplicate leaves the registry unchanged.
func (r *ToolRegistry) Register(t tool.Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return tool.ErrRegistrySealed
	}
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("%w: %q", tool.ErrDuplicateName, t.Name())
	}

	r.tools[t.Name()] = t
	return nil
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) (tool.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// List returns descriptors for all registered tools, sorted by name.
func (r *ToolRegistry) List() []tool.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descriptors := make([]tool.Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		descriptors = append(descriptors, tool.Describe(t))
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Name < descriptors[j].Name
	})
	return descriptors
}

// Names returns all registered tool names, sorted.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a tool is registered.
func (r *ToolRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tools[name]
	return ok
}

// Count returns the number of registered tools.
func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Seal closes the registry against further registration.
func (r *ToolRegistry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Invoke validates raw arguments against the named tool's declarations and
// executes it. Handler errors pass through unchanged so callers can branch
// on the upstream failure taxonomy.
func (r *ToolRegistry) Invoke(ctx context.Context, name string, raw map[string]any) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", tool.ErrUnknownTool, name)
	}

	args, err := t.Params().Validate(raw)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", name, err)
	}

	return t.Execute(ctx, args)
}
