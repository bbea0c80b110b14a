// Package mysql stores snapshots in a MySQL table.
package mysql

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"cinemacore/internal/infra/persistence/sqlstate"
)

// DefaultDSN is used when no DSN is configured.
const DefaultDSN = "root@tcp(127.0.0.1:3306)/cinemacore"

// NormalizeDSN validates dsn and disables multi statements.
func NormalizeDSN(dsn string) (string, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.MultiStatements = false
	return cfg.FormatDSN(), nil
}

// Open connects to dsn and ensures the state table.
func Open(ctx context.Context, dsn string) (*sqlstate.Table, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	return sqlstate.Open(ctx, sqlstate.MySQL, normalized)
}
