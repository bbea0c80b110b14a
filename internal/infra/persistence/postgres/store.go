// Package postgres stores snapshots in a Postgres table through pgx.
package postgres

import (
	"context"

	"cinemacore/internal/infra/persistence/sqlstate"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// DefaultDSN is used when no DSN is configured.
const DefaultDSN = "postgres://localhost/cinemacore?sslmode=disable"

// Open connects to dsn and ensures the state table.
func Open(ctx context.Context, dsn string) (*sqlstate.Table, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	return sqlstate.Open(ctx, sqlstate.Postgres, dsn)
}
