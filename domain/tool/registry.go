package tool

import "context"

// Registry defines the interface for tool registration, lookup, and
// invocation. Registries are explicitly constructed and passed by reference;
// registration happens during startup and Seal closes the mutation window
// before serving begins. Implementations are in infrastructure.
type Registry interface {
	// Register adds a tool to the registry. It fails with ErrDuplicateName
	// when the name is taken (the first registration wins) and with
	// ErrRegistrySealed after Seal.
	Register(t Tool) error

	// Get retrieves a tool by name.
	Get(name string) (Tool, bool)

	// List returns descriptors for all registered tools, sorted by name.
	List() []Descriptor

	// Names returns all registered tool names, sorted.
	Names() []string

	// Has checks if a tool is registered.
	Has(name string) bool

	// Seal closes the registry against further registration.
	Seal()

	// Invoke validates raw arguments against the named tool's parameter
	// declarations and executes it. It fails with ErrUnknownTool for
	// unregistered names and with ErrInvalidArguments when validation
	// rejects the arguments; handler errors pass through unchanged.
	Invoke(ctx context.Context, name string, raw map[string]any) (string, error)
}
