package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.VaultStore = (*DocumentStore)(nil)
	_ driven.NoteSink   = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory vault. The catalog is kept in insertion order.
type DocumentStore struct {
	mu        sync.RWMutex
	order     []string
	documents map[string]string
	readErrs  map[string]error
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]string),
		readErrs:  make(map[string]error),
	}
}

// Put stores or replaces a document.
func (s *DocumentStore) Put(path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[path]; !ok {
		s.order = append(s.order, path)
	}
	s.documents[path] = content
}

// FailRead makes subsequent reads of path return err. Used to simulate
// unreadable files.
func (s *DocumentStore) FailRead(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErrs[path] = err
}

// ListDocuments returns the catalog in insertion order.
func (s *DocumentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]domain.Document, 0, len(s.order))
	for _, p := range s.order {
		docs = append(docs, domain.Document{Path: p})
	}
	return docs, nil
}

// Read returns the content of a document.
func (s *DocumentStore) Read(_ context.Context, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err, ok := s.readErrs[path]; ok {
		return "", err
	}
	content, ok := s.documents[path]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}

// Exists reports whether a document is stored at path.
func (s *DocumentStore) Exists(_ context.Context, path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.documents[path]
	return ok
}

// Create stores a new document, failing if path is taken.
func (s *DocumentStore) Create(_ context.Context, path, content string) (*domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[path]; ok {
		return nil, domain.ErrAlreadyExists
	}
	s.order = append(s.order, path)
	s.documents[path] = content
	return &domain.Document{Path: path, Content: content}, nil
}

// Count returns the number of stored documents.
func (s *DocumentStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
