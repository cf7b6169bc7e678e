package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
	"github.com/custodia-labs/vaultqa/internal/logger"
)

// SelectDocuments returns the documents to use as context, in catalog order,
// with their content read.
//
// Context disabled yields nothing. Current-document-only mode with a current
// path yields that document alone, bypassing folder filters. Otherwise the
// include prefix is applied first, then every exclude prefix. Documents that
// fail to read are skipped.
func SelectDocuments(
	ctx context.Context,
	store driven.VaultStore,
	settings domain.Settings,
	currentPath string,
) ([]domain.Document, error) {
	if !settings.IncludeContext {
		logger.Debug("Context disabled, selecting no documents")
		return nil, nil
	}

	var candidates []domain.Document
	if settings.CurrentDocumentOnly && currentPath != "" {
		logger.Debug("Current document only: %s", currentPath)
		candidates = []domain.Document{{Path: currentPath}}
	} else {
		all, err := store.ListDocuments(ctx)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		candidates = FilterDocuments(all, settings.IncludeFolder, settings.ExcludeFolders)
		logger.Debug("Catalog: %d documents, %d after filters", len(all), len(candidates))
	}

	selected := make([]domain.Document, 0, len(candidates))
	for _, doc := range candidates {
		content, err := store.Read(ctx, doc.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Skipping %s: %v", doc.Path, err)
			continue
		}
		selected = append(selected, domain.Document{Path: doc.Path, Content: content})
	}

	return selected, nil
}

// FilterDocuments applies the include prefix and then removes any document
// matching an exclude prefix. Matching is case-sensitive exact-prefix.
// Order is preserved.
func FilterDocuments(docs []domain.Document, include string, exclude []string) []domain.Document {
	out := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if include != "" && !strings.HasPrefix(doc.Path, include) {
			continue
		}
		if hasAnyPrefix(doc.Path, exclude) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
