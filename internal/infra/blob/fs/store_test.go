package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cinemacore/internal/blob/core"
)

func TestStorePutGetOverwrite(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	info, err := store.Put(ctx, "snapshots/db.json", strings.NewReader("first"), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 5 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	second, err := store.Put(ctx, "snapshots/db.json", strings.NewReader("second!"), core.PutOptions{})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if second.ETag == info.ETag {
		t.Fatal("expected etag to change with content")
	}
	got, body, err := store.Get(ctx, "snapshots/db.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "second!" || got.Size != 7 {
		t.Fatalf("unexpected blob %q %+v", data, got)
	}
	entries, err := os.ReadDir(filepath.Join(store.Root(), "snapshots"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestStoreListDeleteAndMissing(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"b/2", "a/1", "b/1"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{Metadata: map[string]string{"k": key}}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "b/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "b/1" || list[1].Key != "b/2" || list[1].Metadata["k"] != "b/2" {
		t.Fatalf("unexpected listing %+v", list)
	}
	if ok, err := store.Delete(ctx, "b/1"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "b/1"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
	if _, _, err := store.Get(ctx, "b/1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.Head(ctx, "zzz"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	for _, key := range []string{"", "/etc/passwd", "../escape"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}
