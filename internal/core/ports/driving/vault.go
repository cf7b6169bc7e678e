package driving

import (
	"context"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// VaultBrowser gives outer surfaces read access to vault documents.
type VaultBrowser interface {
	// ListDocuments returns the catalog in a stable order.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Read returns the text content of a document.
	Read(ctx context.Context, path string) (string, error)
}
