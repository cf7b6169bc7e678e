package driving

import (
	"context"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// AskRequest describes one pipeline run.
type AskRequest struct {
	// Query is the question (query mode) or topic (create mode).
	Query string

	// Mode overrides the configured mode when non-empty.
	Mode domain.Mode

	// CurrentPath is the document the user is looking at, if any.
	CurrentPath string

	// ExtraContext is prepended to the assembled vault context.
	ExtraContext string
}

// AssistantService runs the query/create pipeline over the vault.
type AssistantService interface {
	// Ask runs the pipeline once. A classified provider failure is reported
	// in QueryResult.Err; the returned error covers everything else.
	// Returns domain.ErrPipelineBusy if another request is in flight.
	Ask(ctx context.Context, req AskRequest) (*domain.QueryResult, error)

	// SaveNote writes a successful create-mode result as a new note and
	// returns the path written.
	SaveNote(ctx context.Context, result *domain.QueryResult) (string, error)
}
