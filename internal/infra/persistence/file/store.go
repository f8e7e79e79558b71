// Package file persists the document blob as a single JSON file, published
// atomically via write-to-temp-then-rename.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"farmcore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.Adapter = (*Store)(nil)

// Store reads and writes one file. A save streams to a temp file in the
// same directory, syncs it, and renames it into place, so a failure midway
// never touches the previously durable snapshot.
type Store struct {
	path string
}

// New returns a file adapter at path, creating parent directories as
// needed. An empty path defaults to ./farmcore.json.
func New(path string) (*Store, error) {
	if path == "" {
		path = "farmcore.json"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Path returns the configured file path.
func (s *Store) Path() string { return s.path }

// Load reads the stored blob. A missing file is not an error.
func (s *Store) Load(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Save atomically replaces the stored blob.
func (s *Store) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
