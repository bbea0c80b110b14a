// Package persistence defines where encoded snapshots live. A Backend stores
// one opaque document and replaces it wholesale on every save.
package persistence

import (
	"context"
	"errors"
)

// ErrNotExist reports that no snapshot has been saved yet.
var ErrNotExist = errors.New("snapshot does not exist")

// Backend loads and saves a single encoded snapshot document.
type Backend interface {
	// Load returns the stored document or an error wrapping ErrNotExist.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored document.
	Save(ctx context.Context, data []byte) error
	Close() error
}
