package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

var baseTime = time.Date(2026, 3, 7, 9, 30, 0, 0, time.UTC)

func entry(id string, offset time.Duration) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:        id,
		Query:     "What are stars?",
		Mode:      domain.ModeQuery,
		Provider:  domain.AIProviderOpenAI,
		Model:     "gpt-4o-mini",
		Sources:   []string{"Notes/Stars.md"},
		Status:    "ok",
		CreatedAt: baseTime.Add(offset),
	}
}

func TestHistoryStore_RecordAndRecent(t *testing.T) {
	history := newTestStore(t).HistoryStore()
	ctx := context.Background()

	require.NoError(t, history.Record(ctx, entry("a", 0)))
	require.NoError(t, history.Record(ctx, entry("b", 500*time.Millisecond)))
	require.NoError(t, history.Record(ctx, entry("c", time.Second)))

	got, err := history.Recent(ctx, 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, entry("c", time.Second), got[0])
}

func TestHistoryStore_Record_Failure(t *testing.T) {
	history := newTestStore(t).HistoryStore()
	ctx := context.Background()
	e := entry("f", 0)
	e.Status = "error:rate_limited"
	e.ErrorKind = domain.ErrorKindRateLimited
	e.Sources = nil
	e.Provider = domain.AIProviderGemini

	require.NoError(t, history.Record(ctx, e))

	got, err := history.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ErrorKindRateLimited, got[0].ErrorKind)
	assert.Equal(t, domain.AIProviderGemini, got[0].Provider)
	assert.Empty(t, got[0].Sources)
}

func TestHistoryStore_Record_ReplacesSameID(t *testing.T) {
	history := newTestStore(t).HistoryStore()
	ctx := context.Background()
	require.NoError(t, history.Record(ctx, entry("a", 0)))

	updated := entry("a", 0)
	updated.Title = "Stars"
	require.NoError(t, history.Record(ctx, updated))

	got, err := history.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Stars", got[0].Title)
}

func TestHistoryStore_Record_ZeroTimeDefaultsToNow(t *testing.T) {
	history := newTestStore(t).HistoryStore()
	ctx := context.Background()
	e := entry("a", 0)
	e.CreatedAt = time.Time{}

	require.NoError(t, history.Record(ctx, e))

	got, err := history.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.WithinDuration(t, time.Now(), got[0].CreatedAt, time.Minute)
}

func TestHistoryStore_SetNotePath(t *testing.T) {
	history := newTestStore(t).HistoryStore()
	ctx := context.Background()
	require.NoError(t, history.Record(ctx, entry("a", 0)))

	require.NoError(t, history.SetNotePath(ctx, "a", "Generated/Stars.md"))
	err := history.SetNotePath(ctx, "missing", "x.md")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	got, err := history.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Generated/Stars.md", got[0].NotePath)
}

func TestHistoryStore_Recent_Limits(t *testing.T) {
	history := newTestStore(t).HistoryStore()
	ctx := context.Background()

	got, err := history.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, history.Record(ctx, entry("a", 0)))
	got, err = history.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistoryStore_CancelledContext(t *testing.T) {
	history := newTestStore(t).HistoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, history.Record(ctx, entry("a", 0)))
}
