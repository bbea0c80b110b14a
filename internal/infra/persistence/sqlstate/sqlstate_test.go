package sqlstate

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"cinemacore/internal/infra/persistence"
	"cinemacore/internal/infra/persistence/sqlstate/testutil"
)

func TestTableSaveLoadRoundTrip(t *testing.T) {
	for _, dialect := range []Dialect{SQLite, Postgres, MySQL} {
		t.Run(dialect.Name, func(t *testing.T) {
			ctx := context.Background()
			db, conn := testutil.NewStubDB()
			table, err := New(ctx, db, dialect)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			if _, err := table.Load(ctx); !errors.Is(err, persistence.ErrNotExist) {
				t.Fatalf("expected ErrNotExist on empty table, got %v", err)
			}
			if err := table.Save(ctx, []byte("first")); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := table.Save(ctx, []byte("second")); err != nil {
				t.Fatalf("save: %v", err)
			}
			if rows := conn.Rows("state"); len(rows) != 1 {
				t.Fatalf("expected upsert to keep one row, got %d", len(rows))
			}
			got, err := table.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if string(got) != "second" {
				t.Fatalf("expected latest payload, got %q", got)
			}
			if stmts := conn.Statements(); !strings.Contains(stmts[0], "CREATE TABLE IF NOT EXISTS state") {
				t.Fatalf("expected DDL first, got %v", stmts)
			}
		})
	}
}

func TestOpenUsesDialectDriverAndReportsFailures(t *testing.T) {
	ctx := context.Background()
	db, conn := testutil.NewStubDB()
	var gotDriver, gotDSN string
	restore := OverrideSQLOpen(func(name, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = name, dsn
		return db, nil
	})
	defer restore()

	table, err := Open(ctx, Postgres, "postgres://example/cinema")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if gotDriver != "pgx" || gotDSN != "postgres://example/cinema" {
		t.Fatalf("unexpected driver %q dsn %q", gotDriver, gotDSN)
	}
	if table.DB() != db || table.Dialect().Name != "postgres" {
		t.Fatal("expected table to wrap the opened db")
	}

	conn.FailBegin = true
	if err := table.Save(ctx, []byte("x")); err == nil {
		t.Fatal("expected begin failure to surface")
	}
	conn.FailBegin = false
	conn.FailCommit = true
	if err := table.Save(ctx, []byte("x")); err == nil || !strings.Contains(err.Error(), "commit") {
		t.Fatalf("expected commit failure, got %v", err)
	}
	conn.FailCommit = false
	conn.FailQuery = true
	if _, err := table.Load(ctx); err == nil {
		t.Fatal("expected query failure to surface")
	}

	failing, failConn := testutil.NewStubDB()
	failConn.FailPing = true
	restoreFail := OverrideSQLOpen(func(string, string) (*sql.DB, error) { return failing, nil })
	defer restoreFail()
	if _, err := Open(ctx, MySQL, "dsn"); err == nil || !strings.Contains(err.Error(), "ping mysql") {
		t.Fatalf("expected ping failure, got %v", err)
	}
}
