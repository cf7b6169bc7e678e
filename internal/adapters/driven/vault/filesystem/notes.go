package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
	"github.com/custodia-labs/vaultqa/internal/logger"
)

// Ensure NoteWriter implements the interface.
var _ driven.NoteSink = (*NoteWriter)(nil)

// NoteWriter creates notes inside a vault. It never overwrites.
type NoteWriter struct {
	store *Store
}

// NewNoteWriter creates a writer for the store's vault.
func NewNoteWriter(store *Store) *NoteWriter {
	return &NoteWriter{store: store}
}

// Create writes content to a new file, creating parent folders as needed.
// An existing file yields domain.ErrAlreadyExists.
func (w *NoteWriter) Create(ctx context.Context, notePath, content string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := w.store.resolve(notePath)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("create note folder: %w", mapFSError(err))
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, mapFSError(err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write note: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write note: %w", err)
	}

	w.store.Invalidate()
	logger.Debug("Created note %s", notePath)
	return &domain.Document{Path: notePath, Content: content}, nil
}
