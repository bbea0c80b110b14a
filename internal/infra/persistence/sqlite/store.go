// Package sqlite stores snapshots in an SQLite database file.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"cinemacore/internal/infra/persistence/sqlstate"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "cinemacore.db"

// Open creates the database file and its directory when missing.
func Open(ctx context.Context, path string) (*sqlstate.Table, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return sqlstate.Open(ctx, sqlstate.SQLite, path)
}
