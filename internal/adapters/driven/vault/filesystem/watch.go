package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/vaultqa/internal/logger"
)

// ChangeType describes what happened to a document.
type ChangeType string

// Change types reported by Watch.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change is a document event observed in the vault.
type Change struct {
	Type ChangeType
	Path string
}

// changeBuffer bounds queued changes. Events beyond it are dropped from the
// channel but still invalidate the catalog.
const changeBuffer = 64

// Watch observes the vault and invalidates the catalog whenever a document
// or folder changes. The returned channel reports document changes and is
// closed when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := s.addTree(watcher, s.root); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	changes := make(chan Change, changeBuffer)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != 0 && !isHidden(filepath.Base(event.Name)) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := s.addTree(watcher, event.Name); err != nil {
							logger.Warn("Cannot watch %s: %v", event.Name, err)
						}
						s.Invalidate()
						continue
					}
				}

				change := s.handleFsEvent(event)
				if change == nil {
					// Folder renames and removals alter the catalog too.
					if event.Op != fsnotify.Chmod && !isHidden(filepath.Base(event.Name)) {
						s.Invalidate()
					}
					continue
				}
				s.Invalidate()
				select {
				case changes <- *change:
				default:
					logger.Debug("Change buffer full, dropped %s", change.Path)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Vault watcher error: %v", err)
				s.Invalidate()
			}
		}
	}()

	logger.Debug("Watching vault %s", s.root)
	return changes, nil
}

// addTree registers dir and every non-hidden folder beneath it.
func (s *Store) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return fmt.Errorf("watch %s: %w", p, err)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != s.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// handleFsEvent converts a raw event into a document change. Events for
// folders, hidden files, non-document files and permission changes return nil.
func (s *Store) handleFsEvent(event fsnotify.Event) *Change {
	rel, err := filepath.Rel(s.root, event.Name)
	if err != nil || isHidden(rel) || !isDocument(event.Name) {
		return nil
	}
	rel = filepath.ToSlash(rel)

	switch {
	case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
		return &Change{Type: ChangeDeleted, Path: rel}
	case event.Op&fsnotify.Create != 0:
		if isDir(event.Name) {
			return nil
		}
		return &Change{Type: ChangeCreated, Path: rel}
	case event.Op&fsnotify.Write != 0:
		return &Change{Type: ChangeUpdated, Path: rel}
	default:
		return nil
	}
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
