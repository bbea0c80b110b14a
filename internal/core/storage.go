package core

import (
	"fmt"
	"strings"
)

// StorageDriver identifies where whole-database snapshots are kept.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // no persistence (tests / ephemeral)
	StorageFile     StorageDriver = "file"     // JSON document on local disk
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageMySQL    StorageDriver = "mysql"    // MySQL server
	StorageRedis    StorageDriver = "redis"    // single redis key
	StorageBlob     StorageDriver = "blob"     // object in a blob store (fs, memory, s3)
)

// StorageDrivers lists every supported driver.
func StorageDrivers() []StorageDriver {
	return []StorageDriver{StorageMemory, StorageFile, StorageSQLite, StoragePostgres, StorageMySQL, StorageRedis, StorageBlob}
}

// ParseStorageDriver validates a driver name. Empty selects the file driver.
func ParseStorageDriver(name string) (StorageDriver, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StorageFile, nil
	}
	for _, d := range StorageDrivers() {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown storage driver %s", name)
}
