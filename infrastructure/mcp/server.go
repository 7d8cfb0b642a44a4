package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mcpgo "github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/steam-mcp/domain/tool"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/logging"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/resilience"
)

// requestTimeout bounds a single MCP request from decode to response.
const requestTimeout = 60 * time.Second

// ErrNoRegistry indicates the server was configured without a tool registry.
var ErrNoRegistry = errors.New("mcp server requires a tool registry")

// ServerConfig configures the MCP adapter.
type ServerConfig struct {
	// Name is the server name advertised to clients.
	Name string

	// Version is the server version advertised to clients.
	Version string

	// Description is an optional server description.
	Description string

	// Instructions provides usage instructions for clients.
	Instructions string

	// Registry holds the tools to expose.
	Registry tool.Registry

	// Invoker guards tool executions. Nil gets a default guard.
	Invoker *resilience.Invoker
}

// Server exposes a sealed tool registry over the Model Context Protocol.
type Server struct {
	srv      *mcpgo.Server
	registry tool.Registry
	invoker  *resilience.Invoker
	info     ServerInfo
}

// NewServer creates an MCP server over the given registry. It seals the
// registry before registering handlers, so the advertised tool set cannot
// change once the server exists.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Registry == nil {
		return nil, ErrNoRegistry
	}
	if cfg.Name == "" {
		cfg.Name = "steam-mcp"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	invoker := cfg.Invoker
	if invoker == nil {
		invoker = resilience.NewDefaultInvoker()
	}

	info := ServerInfo{
		Name:        cfg.Name,
		Version:     cfg.Version,
		Description: cfg.Description,
		Capabilities: Capabilities{
			Tools: true,
		},
	}

	var opts []mcpgo.Option
	if cfg.Instructions != "" {
		opts = append(opts, mcpgo.WithInstructions(cfg.Instructions))
	}

	s := &Server{
		srv:      mcpgo.NewServer(info, opts...),
		registry: cfg.Registry,
		invoker:  invoker,
		info:     info,
	}

	cfg.Registry.Seal()
	s.registerTools()

	return s, nil
}

// registerTools registers one MCP handler per registry descriptor.
func (s *Server) registerTools() {
	for _, desc := range s.registry.List() {
		s.registerTool(desc)
	}
}

// registerTool binds one descriptor to an mcp-go handler. The transport
// reflects its input schema from the handler signature, so the declared
// parameters are folded into the advertised description instead.
func (s *Server) registerTool(desc tool.Descriptor) {
	name := desc.Name
	handler := func(ctx context.Context, input json.RawMessage) (string, error) {
		return s.call(ctx, name, input)
	}

	description := desc.Description
	if summary := desc.ParamSummary(); summary != "" {
		description += "\n\nArguments:\n" + summary
	}

	s.srv.Tool(name).
		Description(description).
		Handler(handler)
}

// call decodes raw MCP arguments and routes the invocation through the
// guard to the registry. Argument decode failures never consume an
// execution slot.
func (s *Server) call(ctx context.Context, name string, input json.RawMessage) (string, error) {
	args, err := decodeArguments(input)
	if err != nil {
		return "", err
	}
	return s.invoker.Invoke(ctx, name, func(ctx context.Context) (string, error) {
		return s.registry.Invoke(ctx, name, args)
	})
}

// decodeArguments parses raw call arguments into the map the registry
// validates. Absent or null arguments mean an empty object.
func decodeArguments(input json.RawMessage) (map[string]any, error) {
	if len(input) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, fmt.Errorf("%w: arguments must be a JSON object: %v", tool.ErrInvalidArguments, err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// Server returns the underlying mcp-go server.
func (s *Server) Server() *mcpgo.Server {
	return s.srv
}

// Info returns the advertised server metadata.
func (s *Server) Info() ServerInfo {
	return s.info
}

// serveMiddleware is the request chain every transport runs: panic
// recovery, request correlation IDs, a per-request deadline, and
// structured request logging.
func (s *Server) serveMiddleware() []Middleware {
	return []Middleware{
		Recover(),
		RequestID(),
		Timeout(requestTimeout),
		Logging(protocolLogger{}),
	}
}

// ServeStdio runs the server over stdin/stdout until the context ends.
func (s *Server) ServeStdio(ctx context.Context, opts ...ServeOption) error {
	logging.Info().
		Add(logging.Str("transport", "stdio")).
		Add(logging.Int("tools", len(s.registry.Names()))).
		Msg("mcp server started")
	serveOpts := append([]ServeOption{WithMiddleware(s.serveMiddleware()...)}, opts...)
	return mcpgo.ServeStdio(ctx, s.srv, serveOpts...)
}

// ServeHTTP runs the server over HTTP with SSE until the context ends.
func (s *Server) ServeHTTP(ctx context.Context, addr string, opts ...HTTPOption) error {
	logging.Info().
		Add(logging.Str("transport", "http")).
		Add(logging.Str("addr", addr)).
		Add(logging.Int("tools", len(s.registry.Names()))).
		Msg("mcp server started")
	return mcpgo.ServeHTTPWithMiddleware(ctx, s.srv, addr, opts, WithMiddleware(s.serveMiddleware()...))
}

// protocolLogger routes mcp-go request logs through the bolt logger, so
// protocol-level entries land on stderr alongside the rest of the
// server's output.
type protocolLogger struct{}

func (protocolLogger) Debug(msg string, fields ...mcpgo.LogField) { emit(logging.Debug(), msg, fields) }
func (protocolLogger) Info(msg string, fields ...mcpgo.LogField)  { emit(logging.Info(), msg, fields) }
func (protocolLogger) Warn(msg string, fields ...mcpgo.LogField)  { emit(logging.Warn(), msg, fields) }
func (protocolLogger) Error(msg string, fields ...mcpgo.LogField) { emit(logging.Error(), msg, fields) }

func emit(e *logging.LogEvent, msg string, fields []mcpgo.LogField) {
	for _, f := range fields {
		e.Add(logging.Any(f.Key, f.Value))
	}
	e.Msg(msg)
}
