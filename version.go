// Package steammcp provides the version information for steam-mcp.
package steammcp

// Version is the current version of steam-mcp.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
