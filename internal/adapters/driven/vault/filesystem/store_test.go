package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
)

// writeVault creates files under a temp dir and returns its path.
func writeVault(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

func paths(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		dir := t.TempDir()

		s, err := New(dir)

		require.NoError(t, err)
		assert.Equal(t, dir, s.Root())
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "nope"))

		assert.Error(t, err)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		dir := writeVault(t, map[string]string{"a.md": "x"})

		_, err := New(filepath.Join(dir, "a.md"))

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStore_ListDocuments(t *testing.T) {
	dir := writeVault(t, map[string]string{
		"b.md":                 "b",
		"a.txt":                "a",
		"Notes/Stars.markdown": "stars",
		"Notes/image.png":      "binary",
		".obsidian/config.md":  "hidden dir",
		"Notes/.draft.md":      "hidden file",
		"Archive/2023/Old.MD":  "upper ext",
		"Projects/readme":      "no ext",
	})
	s, err := New(dir)
	require.NoError(t, err)

	docs, err := s.ListDocuments(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Archive/2023/Old.MD", "Notes/Stars.markdown", "a.txt", "b.md"}, paths(docs))
	for _, d := range docs {
		assert.Empty(t, d.Content)
	}
}

func TestStore_ListDocuments_Cached(t *testing.T) {
	dir := writeVault(t, map[string]string{"a.md": "a"})
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.ListDocuments(ctx)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("b"), 0o644))

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, paths(docs))

	s.Invalidate()
	docs, err = s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md"}, paths(docs))
}

func TestStore_ListDocuments_InvalidatedDuringScan(t *testing.T) {
	dir := writeVault(t, map[string]string{"a.md": "a"})
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	once := true
	s.scanned = func() {
		if once {
			once = false
			require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("b"), 0o644))
			s.Invalidate()
		}
	}

	docs, err := s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, paths(docs))

	docs, err = s.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "b.md"}, paths(docs))
}

func TestStore_ListDocuments_Cancelled(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.ListDocuments(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Read(t *testing.T) {
	dir := writeVault(t, map[string]string{"Notes/Stars.md": "Stars are suns."})
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		got, err := s.Read(ctx, "Notes/Stars.md")

		require.NoError(t, err)
		assert.Equal(t, "Stars are suns.", got)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := s.Read(ctx, "Notes/Moon.md")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("escape attempt stays inside vault", func(t *testing.T) {
		_, err := s.Read(ctx, "../../etc/passwd")

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := s.Read(ctx, "")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestStore_Exists(t *testing.T) {
	dir := writeVault(t, map[string]string{"Notes/Stars.md": "x"})
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	assert.True(t, s.Exists(ctx, "Notes/Stars.md"))
	assert.False(t, s.Exists(ctx, "Notes"))
	assert.False(t, s.Exists(ctx, "Notes/Moon.md"))
	assert.False(t, s.Exists(ctx, ""))
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{".hidden", true},
		{"path/to/.hidden", true},
		{"dir/.git/config", true},
		{".config/.cache/data", true},
		{"file.txt", false},
		{"path/to/file.txt", false},
		{".", false},
		{"..", false},
		{"path/./file", false},
		{"path/../file", false},
		{"", false},
		{"file.hidden", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isHidden(tt.path))
		})
	}
}
