package mcp

import (
	"github.com/custodia-labs/vaultqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant runs the query/create pipeline.
	Assistant driving.AssistantService

	// Vault exposes documents as resources. Optional.
	Vault driving.VaultBrowser
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistantService
	}
	return nil
}
