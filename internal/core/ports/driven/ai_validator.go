package driven

import (
	"context"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// CatalogValidator smoke-tests every catalog model of the given providers
// with a minimal generation request.
type CatalogValidator interface {
	// ValidateCatalog tests each model in catalog order. report, when non-nil,
	// is called as each result arrives. Stops early only if ctx is done.
	ValidateCatalog(
		ctx context.Context,
		providers []domain.AIProvider,
		report func(domain.ModelCheck),
	) ([]domain.ModelCheck, error)
}
