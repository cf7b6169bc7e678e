package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vaultqa/internal/adapters/driving/mcp"
	"github.com/custodia-labs/vaultqa/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about the vault and draft notes.

Tools:
  ask_vault    - Answer a question from the vault
  create_note  - Generate a note, optionally saving it

Resources:
  vaultqa://documents          - The vault catalog
  vaultqa://documents/{path}   - A document's content

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.

The vault is watched for changes while the server runs, so new and deleted
notes are picked up without a restart.

Examples:
  # Stdio mode (default)
  vaultqa mcp serve --vault ~/Notes

  # HTTP mode (for MCP Inspector, remote access)
  vaultqa mcp serve --vault ~/Notes --port 8080`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("no-watch", false, "Do not watch the vault for changes")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if assistantService == nil {
		return errors.New("assistant service not configured")
	}

	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	noWatch, _ := cmd.Flags().GetBool("no-watch")

	ports := &mcp.Ports{
		Assistant: assistantService,
		Vault:     vaultBrowser,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if watchVault != nil && !noWatch {
		if err := watchVault(ctx); err != nil {
			logger.Warn("Vault watch disabled: %v", err)
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
