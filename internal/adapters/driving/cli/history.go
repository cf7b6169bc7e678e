package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyTimeLayout is the local-time format of the history listing.
const historyTimeLayout = "2006-01-02 15:04"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent requests",
	Long:  `Show recent questions and generated notes, newest first.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of entries")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyStore == nil {
		return errors.New("history store not configured")
	}

	entries, err := historyStore.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if historyJSON {
		return outputHistoryJSON(cmd, entries)
	}
	outputHistoryTable(cmd, entries)
	return nil
}

func outputHistoryJSON(cmd *cobra.Command, entries []domain.HistoryEntry) error {
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputHistoryTable(cmd *cobra.Command, entries []domain.HistoryEntry) {
	if len(entries) == 0 {
		cmd.Println("No history yet.")
		return
	}

	for i := range entries {
		e := &entries[i]
		status := successStyle.Render(e.Status)
		if e.ErrorKind != "" {
			status = errorStyle.Render(e.Status)
		}

		cmd.Printf("%s  %-6s  %s  %s\n",
			mutedStyle.Render(e.CreatedAt.Local().Format(historyTimeLayout)),
			e.Mode, status, e.Query)
		cmd.Printf("      %s/%s", e.Provider, e.Model)
		if len(e.Sources) > 0 {
			cmd.Printf(", %d sources", len(e.Sources))
		}
		cmd.Println()
		if e.NotePath != "" {
			cmd.Printf("      note: %s\n", e.NotePath)
		}
	}
}
