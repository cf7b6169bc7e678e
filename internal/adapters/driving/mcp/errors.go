// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants ask questions about the vault and draft new notes.
package mcp

import "errors"

// ErrMissingAssistantService is returned when the assistant service is not provided.
var ErrMissingAssistantService = errors.New("mcp: assistant service is required")
