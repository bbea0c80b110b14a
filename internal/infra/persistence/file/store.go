// Package file stores the snapshot document as a single local file.
package file

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"

	"cinemacore/internal/infra/persistence"
)

// DefaultPath matches the historical snapshot file name.
const DefaultPath = "db.json"

// Store is a persistence.Backend over one file.
type Store struct {
	path string
}

var _ persistence.Backend = (*Store)(nil)

// New returns a store writing to path.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the snapshot file location.
func (s *Store) Path() string { return s.path }

// Load implements persistence.Backend.
func (s *Store) Load(context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", s.path, persistence.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Save implements persistence.Backend. The document is written beside the
// target and renamed over it.
func (s *Store) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dirs: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Close implements persistence.Backend.
func (s *Store) Close() error { return nil }
