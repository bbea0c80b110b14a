package core

import "testing"

func TestParseStorageDriver(t *testing.T) {
	cases := map[string]StorageDriver{
		"":         StorageFile,
		"file":     StorageFile,
		" SQLite ": StorageSQLite,
		"postgres": StoragePostgres,
		"mysql":    StorageMySQL,
		"redis":    StorageRedis,
		"blob":     StorageBlob,
		"memory":   StorageMemory,
	}
	for in, want := range cases {
		got, err := ParseStorageDriver(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStorageDriver("leveldb"); err == nil {
		t.Fatal("expected unknown driver to fail")
	}
}
