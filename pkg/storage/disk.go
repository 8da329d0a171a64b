// Package storage is the file store behind product images.
//
// Two drivers are available:
//   - "local"  local filesystem, served by the app under /storage (default)
//   - "s3"     S3-compatible object storage (AWS S3, MinIO, R2)
//
// Boot once at startup, then use the default disk:
//
//	storage.Connect()
//	storage.Default().Put("products/abc.png", data)
//	url := storage.Default().URL("products/abc.png")
package storage

import "errors"

// ErrNotExist is returned by Get and Size for a missing path.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the filesystem driver interface.
type Disk interface {
	// Put writes content to path, replacing anything already there.
	Put(path string, content []byte) error

	// Get returns the full content of the file at path.
	Get(path string) ([]byte, error)

	Exists(path string) bool

	Size(path string) (int64, error)

	// URL returns the public URL for path.
	URL(path string) string

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(path string) error
}
