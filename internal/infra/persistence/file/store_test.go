package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cinemacore/internal/infra/persistence"
)

func TestStoreSaveReplacesDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := New(filepath.Join(dir, "data", "db.json"))

	if _, err := store.Load(ctx); !errors.Is(err, persistence.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	for _, doc := range []string{`"{}"`, `"{\"users\":{}}"`} {
		if err := store.Save(ctx, []byte(doc)); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `"{\"users\":{}}"` {
		t.Fatalf("unexpected document %s", got)
	}
	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the snapshot file, got %d entries", len(entries))
	}
}

func TestStoreDefaultsPathAndReportsReadErrors(t *testing.T) {
	if New("").Path() != DefaultPath {
		t.Fatalf("expected default path %s", DefaultPath)
	}
	dir := t.TempDir()
	store := New(dir)
	if _, err := store.Load(context.Background()); err == nil || errors.Is(err, persistence.ErrNotExist) {
		t.Fatalf("expected a read error other than ErrNotExist, got %v", err)
	}
}
