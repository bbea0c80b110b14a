package blob

import (
	"context"
	"errors"
	"testing"

	blobs "cinemacore/internal/blob"
	"cinemacore/internal/infra/persistence"
)

func TestStoreRoundTripOnEachLocalDriver(t *testing.T) {
	cases := map[string]blobs.Config{
		"memory": {Driver: blobs.DriverMemory},
		"fs":     {Driver: blobs.DriverFilesystem, FSRoot: t.TempDir()},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store, err := Open(ctx, cfg, "")
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if store.Key() != DefaultKey {
				t.Fatalf("expected default key, got %s", store.Key())
			}
			if _, err := store.Load(ctx); !errors.Is(err, persistence.ErrNotExist) {
				t.Fatalf("expected ErrNotExist, got %v", err)
			}
			if err := store.Save(ctx, []byte("one")); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.Save(ctx, []byte("two")); err != nil {
				t.Fatalf("save again: %v", err)
			}
			got, err := store.Load(ctx)
			if err != nil || string(got) != "two" {
				t.Fatalf("load: %q %v", got, err)
			}
		})
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), blobs.Config{Driver: "tape"}, "k"); err == nil {
		t.Fatal("expected unknown driver to fail")
	}
}
