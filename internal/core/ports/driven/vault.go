package driven

import (
	"context"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// VaultStore provides read access to the documents in a vault.
// Paths are forward-slash, relative to the vault root, and treated as
// opaque prefix-matchable strings.
type VaultStore interface {
	// ListDocuments returns the catalog in a stable order.
	// Returned documents carry only their Path.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Read returns the text content of a document.
	// Returns domain.ErrNotFound if the path does not exist.
	Read(ctx context.Context, path string) (string, error)

	// Exists reports whether a path resolves to a document.
	Exists(ctx context.Context, path string) bool
}

// NoteSink writes new notes into the vault.
type NoteSink interface {
	// Create writes content to a new document at path.
	// Fails with domain.ErrAlreadyExists or domain.ErrPermissionDenied,
	// or another wrapped error.
	Create(ctx context.Context, path, content string) (*domain.Document, error)
}
