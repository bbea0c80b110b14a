// Package core defines the blob storage contract shared by the drivers.
package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// Driver identifies a blob storage implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local directory
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // process memory (tests)
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is a minimal S3-like object store. Put replaces an existing object.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns blobs under prefix sorted by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// ErrNotFound reports a missing key.
var ErrNotFound = errors.New("blob: not found")

// ValidateKey rejects empty, absolute and traversing keys.
func ValidateKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return errors.New("blob: empty key")
	case strings.HasPrefix(key, "/"):
		return errors.New("blob: absolute key")
	case strings.Contains(key, ".."):
		return errors.New("blob: key contains '..'")
	}
	return nil
}
