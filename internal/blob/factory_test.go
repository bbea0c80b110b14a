package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		cfg  Config
		want Driver
	}{
		{"default", Config{FSRoot: t.TempDir()}, DriverFilesystem},
		{"fs", Config{Driver: DriverFilesystem, FSRoot: t.TempDir()}, DriverFilesystem},
		{"memory", Config{Driver: DriverMemory}, DriverMemory},
		{"s3", Config{Driver: DriverS3, S3: S3Config{Bucket: "snapshots", AccessKeyID: "a", SecretAccessKey: "b"}}, DriverS3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, err := Open(ctx, tc.cfg)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if store.Driver() != tc.want {
				t.Fatalf("want %s, got %s", tc.want, store.Driver())
			}
		})
	}
	if _, err := Open(ctx, Config{Driver: "tape"}); err == nil {
		t.Fatal("expected unknown driver to fail")
	}
}

func TestOpenedStoreReportsNotFound(t *testing.T) {
	store, err := Open(context.Background(), Config{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.Put(context.Background(), "a", strings.NewReader("x"), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, _, err := store.Get(context.Background(), "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
