package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/vaultqa/internal/core/domain"
	"github.com/custodia-labs/vaultqa/internal/core/ports/driven"
	"github.com/custodia-labs/vaultqa/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VaultStore = (*Store)(nil)

// documentExts are the file extensions treated as vault documents.
var documentExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Store reads documents from a vault directory.
type Store struct {
	root string

	mu      sync.RWMutex
	catalog []string
	stale   bool
	// gen counts invalidations. A scan only clears stale when none
	// happened while it ran.
	gen uint64

	// scanned runs after a scan, before its result is stored. Tests only.
	scanned func()
}

// New creates a store rooted at dir. The directory must exist.
func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory: %w", abs, domain.ErrInvalidInput)
	}
	return &Store{root: abs, stale: true}, nil
}

// Root returns the absolute vault directory.
func (s *Store) Root() string {
	return s.root
}

// ListDocuments returns every document path in lexical order. The catalog
// is cached until Invalidate is called or Watch observes a change.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	catalog, stale, gen := s.catalog, s.stale, s.gen
	s.mu.RUnlock()

	if stale {
		var err error
		catalog, err = s.scan(ctx)
		if err != nil {
			return nil, err
		}
		if s.scanned != nil {
			s.scanned()
		}
		s.mu.Lock()
		if s.gen == gen {
			s.catalog, s.stale = catalog, false
		}
		s.mu.Unlock()
	}

	docs := make([]domain.Document, len(catalog))
	for i, p := range catalog {
		docs[i] = domain.Document{Path: p}
	}
	return docs, nil
}

// Invalidate forces the next ListDocuments to rescan the directory.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.stale = true
	s.gen++
	s.mu.Unlock()
}

// scan walks the vault, skipping hidden files and directories.
func (s *Store) scan(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.root {
				return err
			}
			logger.Warn("Skipping %s: %v", p, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == s.root {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isDocument(p) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan vault: %w", err)
	}
	sort.Strings(paths)
	logger.Debug("Vault catalog: %d documents under %s", len(paths), s.root)
	return paths, nil
}

// Read returns the content of a document.
func (s *Store) Read(_ context.Context, docPath string) (string, error) {
	full, err := s.resolve(docPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", mapFSError(err)
	}
	return string(data), nil
}

// Exists reports whether a path names a regular file in the vault.
func (s *Store) Exists(_ context.Context, docPath string) bool {
	full, err := s.resolve(docPath)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && info.Mode().IsRegular()
}

// resolve maps a vault-relative path to an absolute one, refusing paths
// that leave the vault.
func (s *Store) resolve(docPath string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(docPath, "\\", "/"))
	if clean == "/" {
		return "", fmt.Errorf("empty document path: %w", domain.ErrInvalidInput)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean[1:])), nil
}

// mapFSError translates filesystem errors to domain errors.
func mapFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%w: %w", domain.ErrAlreadyExists, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", domain.ErrPermissionDenied, err)
	default:
		return err
	}
}

func isDocument(p string) bool {
	return documentExts[strings.ToLower(filepath.Ext(p))]
}

// isHidden reports whether any element of a path starts with a dot.
// "." and ".." are not hidden.
func isHidden(p string) bool {
	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
