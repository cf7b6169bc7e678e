package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Record stores an entry, replacing any entry with the same id.
func (s *historyStore) Record(ctx context.Context, entry domain.HistoryEntry) error {
	sources := entry.Sources
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO history (id, query, mode, provider, model, sources, title, status, error_kind, note_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			query = excluded.query,
			mode = excluded.mode,
			provider = excluded.provider,
			model = excluded.model,
			sources = excluded.sources,
			title = excluded.title,
			status = excluded.status,
			error_kind = excluded.error_kind,
			note_path = excluded.note_path,
			created_at = excluded.created_at
	`,
		entry.ID, entry.Query, string(entry.Mode), string(entry.Provider), entry.Model,
		string(sourcesJSON), entry.Title, entry.Status, string(entry.ErrorKind), entry.NotePath,
		createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording history: %w", err)
	}
	return nil
}

// SetNotePath attaches the written note path to an existing entry.
func (s *historyStore) SetNotePath(ctx context.Context, id, notePath string) error {
	res, err := s.store.db.ExecContext(ctx, "UPDATE history SET note_path = ? WHERE id = ?", notePath, id)
	if err != nil {
		return fmt.Errorf("updating note path: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating note path: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Recent returns up to limit entries, newest first. A non-positive limit
// returns nothing.
func (s *historyStore) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, query, mode, provider, model, sources, title, status, error_kind, note_path, created_at
		FROM history
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		entry, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *historyStore) Close() error {
	return s.store.Close()
}

func scanHistory(rows *sql.Rows) (*domain.HistoryEntry, error) {
	var (
		entry                         domain.HistoryEntry
		mode, provider, kind, sources string
		createdAt                     string
	)
	err := rows.Scan(&entry.ID, &entry.Query, &mode, &provider, &entry.Model,
		&sources, &entry.Title, &entry.Status, &kind, &entry.NotePath, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("scanning history: %w", err)
	}

	entry.Mode = domain.Mode(mode)
	entry.Provider = domain.AIProvider(provider)
	entry.ErrorKind = domain.ErrorKind(kind)
	if err := json.Unmarshal([]byte(sources), &entry.Sources); err != nil {
		return nil, fmt.Errorf("unmarshalling sources: %w", err)
	}
	if entry.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &entry, nil
}
