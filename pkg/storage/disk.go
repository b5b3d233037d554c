// Package storage stores uploaded files (product cover images) on a local
// directory or an S3-compatible bucket.
//
//	storage.Connect(ctx)
//	disk := storage.Default()
//	disk.Put(ctx, "products/12/cover.png", file)
//	url := disk.URL("products/12/cover.png")
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned by Get for missing files.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is implemented by every storage driver.
type Disk interface {
	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader) error

	// Get opens path for reading. The caller closes it.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes path. Missing files are not an error.
	Delete(ctx context.Context, path string) error

	// URL returns the public URL for path.
	URL(path string) string
}
