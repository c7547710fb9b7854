package blobstore

import (
	"context"
	"io"

	"github.com/YuminosukeSato/gbtree/pkg/errors"
)

// View opens name, unwraps any zstd or lz4 framing, and calls fn with the
// raw bytes. For uncompressed mappable blobs the slice aliases the mapping
// and is only valid inside fn.
func View(ctx context.Context, store BlobStore, name string, fn func(data []byte) error) (err error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := blob.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	data, err := contents(ctx, blob)
	if err != nil {
		return errors.Wrapf(err, "blobstore: read %s", name)
	}
	data, err = Decompress(data, Detect(data))
	if err != nil {
		return errors.Wrapf(err, "blobstore: decompress %s", name)
	}
	return fn(data)
}

// ReadAll returns a private copy of the unwrapped content of name.
func ReadAll(ctx context.Context, store BlobStore, name string) ([]byte, error) {
	var out []byte
	err := View(ctx, store, name, func(data []byte) error {
		out = append([]byte(nil), data...)
		return nil
	})
	return out, err
}

func contents(ctx context.Context, blob Blob) ([]byte, error) {
	if m, ok := blob.(Mappable); ok {
		return m.Bytes()
	}
	size := blob.Size()
	if size < 0 || int64(int(size)) != size {
		return nil, errors.Newf("blob size %d out of range", size)
	}
	buf := make([]byte, size)
	n, err := blob.ReadAt(ctx, buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && int64(n) == size) {
		return nil, err
	}
	if int64(n) != size {
		return nil, io.ErrUnexpectedEOF
	}
	return buf, nil
}
