package btcfolio

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound is returned by a Reader when the document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned by a Writer when the expected revision is not the current one.
	ErrConflict = errors.New("document revision conflict")
)

// Reader reads a document and its revision token.
type Reader interface {
	ReadFile(ctx context.Context, path string) (content []byte, revision string, err error)
}

// Writer creates or updates a document.
//
// revision must be the token returned by the last read, or "" to create the
// document. The new revision is returned.
type Writer interface {
	WriteFile(ctx context.Context, path string, content []byte, revision string) (string, error)
}

// Store is a remote document store.
type Store interface {
	Reader
	Writer
}

// FileStore is a Store backed by a local directory. Revisions are the sha1
// of the content.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

func revisionOf(content []byte) string { return fmt.Sprintf("%x", sha1.Sum(content)) }

func (s *FileStore) ReadFile(_ context.Context, path string) ([]byte, string, error) {
	content, err := os.ReadFile(filepath.Join(s.dir, path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, "", err
	}
	return content, revisionOf(content), nil
}

func (s *FileStore) WriteFile(ctx context.Context, path string, content []byte, revision string) (string, error) {
	_, current, err := s.ReadFile(ctx, path)
	switch {
	case errors.Is(err, ErrNotFound):
		if revision != "" {
			return "", fmt.Errorf("%s was deleted since revision %s: %w", path, revision, ErrConflict)
		}
	case err != nil:
		return "", err
	case current != revision:
		return "", fmt.Errorf("%s is at revision %s, not %q: %w", path, current, revision, ErrConflict)
	}

	file := filepath.Join(s.dir, path)
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return "", err
	}
	tmp := file + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, file); err != nil {
		return "", err
	}
	return revisionOf(content), nil
}
