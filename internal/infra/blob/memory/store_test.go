package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"cinemacore/internal/blob/core"
)

func TestStoreCopiesMetadataAndOverwrites(t *testing.T) {
	store := New()
	ctx := context.Background()
	md := map[string]string{"format": "v1"}
	if _, err := store.Put(ctx, "k", strings.NewReader("one"), core.PutOptions{Metadata: md}); err != nil {
		t.Fatalf("put: %v", err)
	}
	md["format"] = "mutated"
	info, err := store.Head(ctx, "k")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if info.Metadata["format"] != "v1" {
		t.Fatalf("metadata aliased caller map: %+v", info.Metadata)
	}
	info.Metadata["format"] = "changed"
	if again, _ := store.Head(ctx, "k"); again.Metadata["format"] != "v1" {
		t.Fatalf("metadata aliased returned map: %+v", again.Metadata)
	}

	if _, err := store.Put(ctx, "k", strings.NewReader("two"), core.PutOptions{}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	_, body, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	data, _ := io.ReadAll(body)
	if string(data) != "two" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}

func TestStoreListAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()
	for _, key := range []string{"x/2", "x/1", "y/1"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	list, err := store.List(ctx, "x/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "x/1" {
		t.Fatalf("unexpected listing %+v", list)
	}
	if ok, _ := store.Delete(ctx, "x/1"); !ok {
		t.Fatal("expected delete to report existing key")
	}
	if ok, _ := store.Delete(ctx, "x/1"); ok {
		t.Fatal("expected delete of missing key to report false")
	}
	if _, _, err := store.Get(ctx, "x/1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
