package blobstore

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/YuminosukeSato/gbtree/pkg/errors"
)

// Compression identifies how an artifact is wrapped.
type Compression uint8

const (
	// CompressionNone is a raw model buffer.
	CompressionNone Compression = iota
	// CompressionZSTD is a zstd frame.
	CompressionZSTD
	// CompressionLZ4 is an lz4 frame.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZSTD:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Detect inspects the frame magic at the start of data.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZSTD
	case bytes.HasPrefix(data, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// MaxDecompressedSize caps how large an unwrapped artifact may grow. A
// decoded model is held in memory whole, so the cap bounds what a small
// hostile frame can allocate.
const MaxDecompressedSize = 1 << 30

// ErrTooLarge is returned when an artifact decompresses past the size cap.
var ErrTooLarge = errors.New("blobstore: decompressed artifact exceeds size cap")

// decompressLimit is MaxDecompressedSize outside tests.
var decompressLimit int64 = MaxDecompressedSize

var zstdDecoderPool sync.Pool

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(MaxDecompressedSize),
	)
}

// Decompress unwraps data according to c. CompressionNone returns data as is.
func Decompress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			if errors.Is(err, zstd.ErrDecoderSizeExceeded) {
				return nil, ErrTooLarge
			}
			return nil, errors.Wrap(err, "zstd")
		}
		if int64(len(out)) > decompressLimit {
			return nil, ErrTooLarge
		}
		return out, nil
	case CompressionLZ4:
		out, err := io.ReadAll(io.LimitReader(lz4.NewReader(bytes.NewReader(data)), decompressLimit+1))
		if err != nil {
			return nil, errors.Wrap(err, "lz4")
		}
		if int64(len(out)) > decompressLimit {
			return nil, ErrTooLarge
		}
		return out, nil
	default:
		return nil, errors.Newf("blobstore: unknown compression %d", uint8(c))
	}
}

// Compress wraps data in a frame of kind c. It is the inverse of Decompress
// and is used to publish compressed artifacts.
func Compress(data []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, errors.Newf("blobstore: unknown compression %d", uint8(c))
	}
}
