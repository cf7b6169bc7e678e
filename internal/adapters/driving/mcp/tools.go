package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driving"
)

// AskInput is the input schema for the ask_vault tool.
type AskInput struct {
	Question     string `json:"question" jsonschema:"the question to answer from the vault notes"`
	CurrentPath  string `json:"current_path,omitempty" jsonschema:"vault path of the note being viewed"`
	ExtraContext string `json:"extra_context,omitempty" jsonschema:"additional text to include as context"`
}

// AskOutput is the output schema for the ask_vault tool.
type AskOutput struct {
	Answer     string            `json:"answer"`
	Sources    []string          `json:"sources"`
	References []ReferenceOutput `json:"references,omitempty"`
	Provider   string            `json:"provider"`
	Model      string            `json:"model"`
}

// ReferenceOutput is a citation found in generated text.
type ReferenceOutput struct {
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
	Broken bool   `json:"broken,omitempty"`
}

// CreateNoteInput is the input schema for the create_note tool.
type CreateNoteInput struct {
	Topic       string `json:"topic" jsonschema:"the subject of the note to generate"`
	CurrentPath string `json:"current_path,omitempty" jsonschema:"vault path of the note being viewed"`
	Save        bool   `json:"save,omitempty" jsonschema:"write the generated note into the vault"`
}

// CreateNoteOutput is the output schema for the create_note tool.
type CreateNoteOutput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Sources  []string `json:"sources"`
	NotePath string   `json:"note_path,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_vault",
		Description: "Answer a question using the notes in the vault",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_note",
		Description: "Generate a new note on a topic, optionally saving it to the vault",
	}, s.handleCreateNote)
}

// handleAsk handles the ask_vault tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return nil, AskOutput{}, errors.New("question is required")
	}

	result, err := s.run(ctx, driving.AskRequest{
		Query:        input.Question,
		Mode:         domain.ModeQuery,
		CurrentPath:  input.CurrentPath,
		ExtraContext: input.ExtraContext,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   result.Text,
		Sources:  nonNil(result.Sources),
		Provider: result.Provider.String(),
		Model:    result.Model,
	}
	for _, ref := range result.References {
		output.References = append(output.References, ReferenceOutput{
			Target: ref.Target(),
			Label:  ref.Label,
			Broken: ref.Broken,
		})
	}
	return nil, output, nil
}

// handleCreateNote handles the create_note tool invocation.
func (s *Server) handleCreateNote(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateNoteInput,
) (*mcp.CallToolResult, CreateNoteOutput, error) {
	if input.Topic == "" {
		return nil, CreateNoteOutput{}, errors.New("topic is required")
	}

	result, err := s.run(ctx, driving.AskRequest{
		Query:       input.Topic,
		Mode:        domain.ModeCreate,
		CurrentPath: input.CurrentPath,
	})
	if err != nil {
		return nil, CreateNoteOutput{}, err
	}

	output := CreateNoteOutput{
		Title:   result.Title,
		Content: result.Text,
		Sources: nonNil(result.Sources),
	}
	if input.Save {
		notePath, err := s.ports.Assistant.SaveNote(ctx, result)
		if err != nil {
			return nil, CreateNoteOutput{}, fmt.Errorf("saving note: %w", err)
		}
		output.NotePath = notePath
	}
	return nil, output, nil
}

// run executes the pipeline and turns a provider failure into a tool error.
func (s *Server) run(ctx context.Context, req driving.AskRequest) (*domain.QueryResult, error) {
	result, err := s.ports.Assistant.Ask(ctx, req)
	if err != nil {
		return nil, err
	}
	if result.Err != nil {
		return nil, result.Err
	}
	return result, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
