// Package mcp adapts the tool registry to the Model Context Protocol.
// It wraps github.com/felixgeelhaar/mcp-go for protocol handling and
// transports, keeping tool semantics in the domain packages.
package mcp

import (
	mcpgo "github.com/felixgeelhaar/mcp-go"
)

// Re-export core types from mcp-go for convenience.
type (
	// ServerInfo contains MCP server metadata.
	ServerInfo = mcpgo.ServerInfo

	// Capabilities declares features the server supports.
	Capabilities = mcpgo.Capabilities

	// ServeOption configures server behavior.
	ServeOption = mcpgo.ServeOption

	// HTTPOption configures HTTP transport.
	HTTPOption = mcpgo.HTTPOption

	// Middleware is a function that wraps request handling.
	Middleware = mcpgo.Middleware
)

// Re-export middleware constructors and serve options from mcp-go.
var (
	// WithMiddleware adds middleware to serve options.
	WithMiddleware = mcpgo.WithMiddleware

	// Middleware constructors
	Recover   = mcpgo.Recover
	RequestID = mcpgo.RequestID
	Timeout   = mcpgo.Timeout
	Logging   = mcpgo.Logging
)
