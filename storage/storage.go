// Package storage is a filesystem blob store for generated and uploaded
// documents. Callers get back opaque handles; the directory layout behind
// them is an implementation detail.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes blobs under a single directory, one file per handle.
type Store struct {
	dir string
}

// New creates the blob directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating blob directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save stores data and returns a fresh opaque handle for it.
func (s *Store) Save(data []byte) (string, error) {
	handle := uuid.NewString()
	if err := os.WriteFile(s.path(handle), data, 0644); err != nil {
		return "", fmt.Errorf("writing blob: %w", err)
	}
	return handle, nil
}

// Read returns the blob for handle, or os.ErrNotExist if there is none.
func (s *Store) Read(handle string) ([]byte, error) {
	p, err := s.safePath(handle)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// Delete removes the blob for handle. Deleting a missing blob is not an
// error: delete is used for cleanup and must be retryable.
func (s *Store) Delete(handle string) error {
	p, err := s.safePath(handle)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}

// URL returns the serving path for handle, or "" when the blob is missing.
func (s *Store) URL(handle string) string {
	if _, err := s.Read(handle); err != nil {
		return ""
	}
	return "/api/v1/files/" + handle
}

func (s *Store) path(handle string) string {
	return filepath.Join(s.dir, handle)
}

// safePath validates the handle before touching the filesystem. Handles are
// always uuids, so anything else (../ traversal included) is rejected.
func (s *Store) safePath(handle string) (string, error) {
	if _, err := uuid.Parse(handle); err != nil {
		return "", os.ErrNotExist
	}
	return s.path(handle), nil
}
