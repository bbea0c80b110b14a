// Package blob stores the snapshot document as one object in a blob store.
package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	blobs "cinemacore/internal/blob"
	"cinemacore/internal/infra/persistence"
)

// DefaultKey is used when no object key is configured.
const DefaultKey = "snapshots/db.json"

// Store is a persistence.Backend over a blob.Store.
type Store struct {
	objects     blobs.Store
	key         string
	contentType string
}

var _ persistence.Backend = (*Store)(nil)

// New wraps objects, writing the document at key.
func New(objects blobs.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{objects: objects, key: key, contentType: "application/json"}
}

// Open opens the configured blob driver.
func Open(ctx context.Context, cfg blobs.Config, key string) (*Store, error) {
	objects, err := blobs.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return New(objects, key), nil
}

// Key returns the object key.
func (s *Store) Key() string { return s.key }

// Load implements persistence.Backend.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	_, body, err := s.objects.Get(ctx, s.key)
	if errors.Is(err, blobs.ErrNotFound) {
		return nil, fmt.Errorf("blob %s: %w", s.key, persistence.ErrNotExist)
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", s.key, err)
	}
	return data, nil
}

// Save implements persistence.Backend.
func (s *Store) Save(ctx context.Context, data []byte) error {
	_, err := s.objects.Put(ctx, s.key, bytes.NewReader(data), blobs.PutOptions{
		ContentType: s.contentType,
		Metadata:    map[string]string{"driver": string(s.objects.Driver())},
	})
	return err
}

// Close implements persistence.Backend.
func (s *Store) Close() error { return nil }
