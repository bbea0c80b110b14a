// Package blob selects a blob store driver. Packages outside the blob tree
// depend on this package rather than on the infra drivers.
package blob

import (
	"context"
	"fmt"

	"cinemacore/internal/blob/core"
	blobfs "cinemacore/internal/infra/blob/fs"
	blobmemory "cinemacore/internal/infra/blob/memory"
	blobs3 "cinemacore/internal/infra/blob/s3"
)

type (
	Store      = core.Store
	Info       = core.Info
	PutOptions = core.PutOptions
	Driver     = core.Driver
	S3Config   = blobs3.Config
)

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// ErrNotFound reports a missing key.
var ErrNotFound = core.ErrNotFound

// Config selects and configures a driver. An empty Driver means fs.
type Config struct {
	Driver Driver
	FSRoot string
	S3     S3Config
}

// Open returns the store described by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return blobfs.New(cfg.FSRoot)
	case DriverS3:
		return blobs3.New(ctx, cfg.S3)
	case DriverMemory:
		return blobmemory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
