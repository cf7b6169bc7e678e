// Package driving defines the interfaces that drive the core: the CLI and
// the MCP server call these.
package driving
