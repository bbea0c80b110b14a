// Package redis stores the snapshot document under one Redis key.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"cinemacore/internal/infra/persistence"
)

// DefaultKey is used when no key is configured.
const DefaultKey = "cinemacore:snapshot"

// Config holds connection parameters.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Store is a persistence.Backend over a Redis string value.
type Store struct {
	client goredis.UniversalClient
	key    string
}

var _ persistence.Backend = (*Store)(nil)

// Open connects and pings the server.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, cfg.Key), nil
}

// New wraps an existing client.
func New(client goredis.UniversalClient, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{client: client, key: key}
}

// Key returns the key the document is stored under.
func (s *Store) Key() string { return s.key }

// Load implements persistence.Backend.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("redis key %s: %w", s.key, persistence.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}
	return data, nil
}

// Save implements persistence.Backend.
func (s *Store) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}

// Close implements persistence.Backend.
func (s *Store) Close() error { return s.client.Close() }
