package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driving"
)

var (
	askCurrent     string
	askContextFile string
	askJSON        bool
	createSave     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from your notes",
	Long: `Answer a question using the notes in the vault as context.

Documents are selected by the scope settings (include folder, excluded
folders, current document only). Use --current to name the note you are
looking at. Its path is passed to the model, and it becomes the only
context when the scope is set to --current-only.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var createCmd = &cobra.Command{
	Use:   "create [topic]",
	Short: "Draft a new note on a topic",
	Long: `Generate a new Markdown note on a topic, using related notes as context.

The note is printed. Use --save to write it into the notes folder; an
existing file is never overwritten.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func init() {
	for _, c := range []*cobra.Command{askCmd, createCmd} {
		c.Flags().StringVarP(&askCurrent, "current", "c", "", "Vault path of the note you are viewing")
		c.Flags().StringVar(&askContextFile, "context-file", "", "File whose text is added as extra context")
		c.Flags().BoolVar(&askJSON, "json", false, "Output as JSON")
	}
	createCmd.Flags().BoolVarP(&createSave, "save", "s", false, "Write the note into the vault")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(createCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	result, err := runPipeline(cmd, args, domain.ModeQuery)
	if err != nil {
		return err
	}
	return outputResult(cmd, result, "")
}

func runCreate(cmd *cobra.Command, args []string) error {
	result, err := runPipeline(cmd, args, domain.ModeCreate)
	if err != nil {
		return err
	}

	notePath := ""
	if createSave && result.Succeeded() {
		notePath, err = assistantService.SaveNote(cmd.Context(), result)
		if err != nil {
			return fmt.Errorf("failed to save note: %w", err)
		}
	}
	return outputResult(cmd, result, notePath)
}

func runPipeline(cmd *cobra.Command, args []string, mode domain.Mode) (*domain.QueryResult, error) {
	if assistantService == nil {
		return nil, errors.New("assistant service not configured")
	}

	req := driving.AskRequest{
		Query:       strings.Join(args, " "),
		Mode:        mode,
		CurrentPath: askCurrent,
	}
	if askContextFile != "" {
		data, err := os.ReadFile(askContextFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read context file: %w", err)
		}
		req.ExtraContext = string(data)
	}

	result, err := assistantService.Ask(cmd.Context(), req)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resultJSON is the --json form of a result.
type resultJSON struct {
	ID         string          `json:"id"`
	Mode       domain.Mode     `json:"mode"`
	Provider   string          `json:"provider"`
	Model      string          `json:"model"`
	Title      string          `json:"title,omitempty"`
	Text       string          `json:"text,omitempty"`
	Sources    []string        `json:"sources"`
	References []referenceJSON `json:"references,omitempty"`
	NotePath   string          `json:"note_path,omitempty"`
	Error      *errorJSON      `json:"error,omitempty"`
}

type referenceJSON struct {
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
	Broken bool   `json:"broken,omitempty"`
}

type errorJSON struct {
	Kind    domain.ErrorKind `json:"kind"`
	Status  int              `json:"status"`
	Message string           `json:"message"`
}

func outputResult(cmd *cobra.Command, result *domain.QueryResult, notePath string) error {
	if askJSON {
		if err := outputResultJSON(cmd, result, notePath); err != nil {
			return err
		}
	} else {
		outputResultText(cmd, result, notePath)
	}

	if !result.Succeeded() {
		return errReported
	}
	return nil
}

func outputResultJSON(cmd *cobra.Command, result *domain.QueryResult, notePath string) error {
	out := resultJSON{
		ID:       result.ID,
		Mode:     result.Mode,
		Provider: result.Provider.String(),
		Model:    result.Model,
		Title:    result.Title,
		Text:     result.Text,
		Sources:  result.Sources,
		NotePath: notePath,
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	for _, ref := range result.References {
		out.References = append(out.References, referenceJSON{
			Target: ref.Target(),
			Label:  ref.Label,
			Broken: ref.Broken,
		})
	}
	if result.Err != nil {
		out.Error = &errorJSON{
			Kind:    result.Err.Kind,
			Status:  result.Err.Status,
			Message: result.Err.Error(),
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultText(cmd *cobra.Command, result *domain.QueryResult, notePath string) {
	if !result.Succeeded() {
		cmd.Println(renderGenerationError(result.Err))
		return
	}

	cmd.Println(renderResult(result))
	if notePath != "" {
		cmd.Println()
		cmd.Println(successStyle.Render("Saved to " + notePath))
	}
}
