package driven

import (
	"context"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// HistoryStore persists summaries of completed requests.
type HistoryStore interface {
	// Record stores an entry.
	Record(ctx context.Context, entry domain.HistoryEntry) error

	// SetNotePath attaches the written note path to an existing entry.
	SetNotePath(ctx context.Context, id, notePath string) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error)

	// Close releases resources.
	Close() error
}
