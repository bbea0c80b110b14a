package postgres

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"cinemacore/internal/infra/persistence/sqlstate"
	"cinemacore/internal/infra/persistence/sqlstate/testutil"
)

func TestOpenDefaultsDSNAndUsesPgx(t *testing.T) {
	db, conn := testutil.NewStubDB()
	var driver, dsn string
	restore := sqlstate.OverrideSQLOpen(func(name, source string) (*sql.DB, error) {
		driver, dsn = name, source
		return db, nil
	})
	defer restore()

	table, err := Open(context.Background(), "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if driver != "pgx" || dsn != DefaultDSN {
		t.Fatalf("unexpected driver %q dsn %q", driver, dsn)
	}
	if err := table.Save(context.Background(), []byte("payload")); err != nil {
		t.Fatalf("save: %v", err)
	}
	var sawUpsert bool
	for _, stmt := range conn.Statements() {
		if strings.Contains(stmt, "$1") && strings.Contains(stmt, "EXCLUDED.payload") {
			sawUpsert = true
		}
	}
	if !sawUpsert {
		t.Fatalf("expected postgres upsert, got %v", conn.Statements())
	}
}

func TestOpenAgainstLiveDatabase(t *testing.T) {
	dsn := os.Getenv("CINEMACORE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CINEMACORE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	table, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer table.Close()
	if err := table.Save(ctx, []byte("live")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := table.Load(ctx)
	if err != nil || string(got) != "live" {
		t.Fatalf("load: %q %v", got, err)
	}
}
