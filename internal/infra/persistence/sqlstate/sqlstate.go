// Package sqlstate keeps encoded snapshots in a `state(bucket, payload)` table.
// The sqlite, postgres and mysql backends differ only in their Dialect.
package sqlstate

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"cinemacore/internal/infra/persistence"
)

// Bucket is the row key the snapshot document is stored under.
const Bucket = "snapshot"

// Dialect describes the statements one database needs.
type Dialect struct {
	Name        string
	DriverName  string
	CreateTable string
	Upsert      string
}

var (
	SQLite = Dialect{
		Name:       "sqlite",
		DriverName: "sqlite",
		CreateTable: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`,
		Upsert: `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`,
	}
	Postgres = Dialect{
		Name:       "postgres",
		DriverName: "pgx",
		CreateTable: `CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BYTEA NOT NULL
	)`,
		Upsert: `INSERT INTO state(bucket,payload) VALUES($1,$2) ON CONFLICT(bucket) DO UPDATE SET payload=EXCLUDED.payload`,
	}
	MySQL = Dialect{
		Name:       "mysql",
		DriverName: "mysql",
		CreateTable: `CREATE TABLE IF NOT EXISTS state (
		bucket VARCHAR(64) PRIMARY KEY,
		payload LONGBLOB NOT NULL
	)`,
		Upsert: `INSERT INTO state(bucket,payload) VALUES(?,?) ON DUPLICATE KEY UPDATE payload=VALUES(payload)`,
	}
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Table is a persistence.Backend over an open database.
type Table struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
}

var _ persistence.Backend = (*Table)(nil)

// Open connects with the dialect's driver, pings, and ensures the state table.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Table, error) {
	openMu.Lock()
	db, err := sqlOpen(dialect.DriverName, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}
	table, err := New(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return table, nil
}

// New wraps db and creates the state table when missing.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Table, error) {
	if _, err := db.ExecContext(ctx, dialect.CreateTable); err != nil {
		return nil, fmt.Errorf("ensure state table: %w", err)
	}
	return &Table{db: db, dialect: dialect}, nil
}

// Load implements persistence.Backend.
func (t *Table) Load(ctx context.Context) ([]byte, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return nil, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var (
		payload []byte
		found   bool
	)
	for rows.Next() {
		var bucket string
		var raw []byte
		if err := rows.Scan(&bucket, &raw); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		if bucket == Bucket {
			payload, found = raw, true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("%s state: %w", t.dialect.Name, persistence.ErrNotExist)
	}
	return payload, nil
}

// Save implements persistence.Backend.
func (t *Table) Save(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, t.dialect.Upsert, Bucket, data); err != nil {
		return fmt.Errorf("upsert %s: %w", Bucket, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// Close implements persistence.Backend.
func (t *Table) Close() error { return t.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (t *Table) DB() *sql.DB { return t.db }

// Dialect returns the statements the table runs.
func (t *Table) Dialect() Dialect { return t.dialect }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
