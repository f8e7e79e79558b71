// Package backup stores farm snapshot archives outside the live document,
// on the local filesystem, in memory, or in an S3-compatible bucket.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Driver identifies a backup storage backend.
type Driver string

const (
	// DriverFilesystem writes archives under a local directory (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 writes archives to an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps archives in memory (tests).
	DriverMemory Driver = "memory"
)

// Info describes a stored archive.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the interface backup backends implement. Archives are
// write-once: Put fails when the key already exists.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// ErrExists indicates an archive with the same key is already stored.
var ErrExists = errors.New("backup: archive already exists")

// ArchiveKey builds the canonical key for a snapshot taken at ts.
func ArchiveKey(ts time.Time) string {
	return fmt.Sprintf("backups/farmcore-%s.json", ts.UTC().Format("20060102T150405Z"))
}
