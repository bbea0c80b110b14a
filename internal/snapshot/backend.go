package snapshot

import (
	"context"
	"fmt"
	"sync"

	blobs "cinemacore/internal/blob"
	"cinemacore/internal/core"
	"cinemacore/internal/infra/persistence"
	blobstate "cinemacore/internal/infra/persistence/blob"
	"cinemacore/internal/infra/persistence/file"
	"cinemacore/internal/infra/persistence/mysql"
	"cinemacore/internal/infra/persistence/postgres"
	"cinemacore/internal/infra/persistence/redis"
	"cinemacore/internal/infra/persistence/sqlite"
)

// BackendConfig selects and configures a snapshot backend.
type BackendConfig struct {
	Driver      core.StorageDriver
	FilePath    string
	SQLitePath  string
	PostgresDSN string
	MySQLDSN    string
	Redis       redis.Config
	Blob        blobs.Config
	BlobKey     string
}

// OpenBackend returns the backend for cfg.Driver. An empty driver means file.
func OpenBackend(ctx context.Context, cfg BackendConfig) (persistence.Backend, error) {
	var (
		backend persistence.Backend
		err     error
	)
	switch cfg.Driver {
	case "", core.StorageFile:
		return file.New(cfg.FilePath), nil
	case core.StorageMemory:
		return NewMemoryBackend(), nil
	case core.StorageSQLite:
		backend, err = sqlite.Open(ctx, cfg.SQLitePath)
	case core.StoragePostgres:
		backend, err = postgres.Open(ctx, cfg.PostgresDSN)
	case core.StorageMySQL:
		backend, err = mysql.Open(ctx, cfg.MySQLDSN)
	case core.StorageRedis:
		backend, err = redis.Open(ctx, cfg.Redis)
	case core.StorageBlob:
		backend, err = blobstate.Open(ctx, cfg.Blob, cfg.BlobKey)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Driver, err)
	}
	return backend, nil
}

// MemoryBackend keeps the document in process memory.
type MemoryBackend struct {
	mu   sync.Mutex
	data []byte
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

// Load implements persistence.Backend.
func (b *MemoryBackend) Load(context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, persistence.ErrNotExist
	}
	return append([]byte(nil), b.data...), nil
}

// Save implements persistence.Backend.
func (b *MemoryBackend) Save(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append([]byte{}, data...)
	return nil
}

// Close implements persistence.Backend.
func (b *MemoryBackend) Close() error { return nil }
