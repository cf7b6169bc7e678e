package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServeCmd_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
	assert.Equal(t, "0", port.DefValue)

	noWatch := mcpServeCmd.Flags().Lookup("no-watch")
	require.NotNil(t, noWatch)
	assert.Equal(t, "false", noWatch.DefValue)
}

func TestMCPServeCmd_Long(t *testing.T) {
	assert.Contains(t, mcpServeCmd.Long, "ask_vault")
	assert.Contains(t, mcpServeCmd.Long, "create_note")
}

func TestMCPServeCmd_ServiceNotConfigured(t *testing.T) {
	_, err := executeCommand(t, "", "mcp", "serve")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "assistant service not configured")
}
