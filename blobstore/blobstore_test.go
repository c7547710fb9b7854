package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload() []byte {
	// Repetitive enough for both codecs to shrink it.
	return bytes.Repeat([]byte("gbtree-model-section-"), 64)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := []byte("abcdef")
	store.Put("m.bin", data)
	data[0] = 'X' // Put keeps its own copy

	blob, err := store.Open(ctx, "m.bin")
	require.NoError(t, err)
	defer blob.Close()
	assert.Equal(t, int64(6), blob.Size())

	p := make([]byte, 4)
	n, err := blob.ReadAt(ctx, p, 4)
	assert.Equal(t, 2, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, []byte("ef"), p[:n])

	_, err = store.Open(ctx, "other.bin")
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Open(cancelled, "m.bin")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model.bin"), payload(), 0o600))
	store := NewLocalStore(dir)

	got, err := ReadAll(context.Background(), store, "model.bin")
	require.NoError(t, err)
	assert.Equal(t, payload(), got)

	_, err = store.Open(context.Background(), "missing.bin")
	assert.ErrorIs(t, err, ErrNotFound)

	// Names cannot escape the root.
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o700))
	_, err = NewLocalStore(sub).Open(context.Background(), "../model.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCodecRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZSTD, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			packed, err := Compress(payload(), c)
			require.NoError(t, err)
			assert.Equal(t, c, Detect(packed))
			if c != CompressionNone {
				assert.Less(t, len(packed), len(payload()))
			}

			raw, err := Decompress(packed, Detect(packed))
			require.NoError(t, err)
			assert.Equal(t, payload(), raw)
		})
	}
}

func TestDecompressCorrupt(t *testing.T) {
	bad := append(append([]byte(nil), zstdMagic...), 0xff, 0xff, 0xff)
	_, err := Decompress(bad, CompressionZSTD)
	assert.Error(t, err)

	_, err = Decompress(nil, Compression(9))
	assert.Error(t, err)
}

func TestViewUnwrapsCompressedBlobs(t *testing.T) {
	store := NewMemoryStore()
	for _, c := range []Compression{CompressionZSTD, CompressionLZ4} {
		packed, err := Compress(payload(), c)
		require.NoError(t, err)
		store.Put("model.bin."+c.String(), packed)
	}

	for _, name := range []string{"model.bin.zstd", "model.bin.lz4"} {
		var seen int
		err := View(context.Background(), store, name, func(data []byte) error {
			seen = len(data)
			assert.Equal(t, payload(), data)
			return nil
		})
		require.NoError(t, err, name)
		assert.Equal(t, len(payload()), seen)
	}
}

func TestViewPropagatesCallbackError(t *testing.T) {
	store := NewMemoryStore()
	store.Put("m.bin", []byte{1, 2, 3})
	sentinel := errors.New("decode failed")

	err := View(context.Background(), store, "m.bin", func([]byte) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

// readerOnlyBlob hides Mappable so contents goes through ReadAt.
type readerOnlyBlob struct {
	Blob
}

type readerOnlyStore struct {
	inner *MemoryStore
}

func (s readerOnlyStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return readerOnlyBlob{Blob: b}, nil
}

func TestReadAllWithoutMapping(t *testing.T) {
	inner := NewMemoryStore()
	inner.Put("m.bin", payload())

	got, err := ReadAll(context.Background(), readerOnlyStore{inner: inner}, "m.bin")
	require.NoError(t, err)
	assert.Equal(t, payload(), got)
}

func TestDecompressSizeCap(t *testing.T) {
	prev := decompressLimit
	decompressLimit = 100
	t.Cleanup(func() { decompressLimit = prev })

	for _, c := range []Compression{CompressionZSTD, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			wrapped, err := Compress(payload(), c)
			require.NoError(t, err)
			require.Less(t, len(wrapped), len(payload()))

			_, err = Decompress(wrapped, c)
			assert.ErrorIs(t, err, ErrTooLarge)

			small, err := Compress(payload()[:50], c)
			require.NoError(t, err)
			got, err := Decompress(small, c)
			require.NoError(t, err)
			assert.Equal(t, payload()[:50], got)
		})
	}
}
