// Package blobstore provides read access to model artifacts on the local
// file system, in memory, or in object storage, and transparently unwraps
// zstd or lz4 compressed artifacts.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// BlobStore opens immutable blobs by name.
type BlobStore interface {
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to one blob.
type Blob interface {
	io.Closer
	// ReadAt reads len(p) bytes starting at off. It returns io.EOF when
	// fewer bytes are available.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// Size returns the size of the blob in bytes.
	Size() int64
}

// Mappable is implemented by blobs that can expose their content without a
// copy. The slice is valid until the blob is closed.
type Mappable interface {
	Bytes() ([]byte, error)
}
