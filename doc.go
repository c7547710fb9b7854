// Package gbtree is a Go runtime for gradient-boosted tree ensembles
// trained by XGBoost, designed for backend services that score requests in
// process.
//
// It reads the binary model format directly, keeps no cgo dependency on the
// training library, and returns the raw margin so callers apply their own
// link function.
//
// # Features
//
//   - Bounds-checked decoding: a truncated or corrupt buffer is an error, never a panic
//   - Structural validation of every tree before it is used
//   - Lock-free concurrent prediction with per-goroutine feature vectors
//   - Batch scoring of gonum matrices and LIBSVM records across CPU cores
//   - Model artifacts from local files (mmap), S3, or MinIO, optionally zstd or lz4 compressed
//
// # Installation
//
//	go get github.com/YuminosukeSato/gbtree
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "encoding/binary"
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/gbtree/blobstore"
//	    "github.com/YuminosukeSato/gbtree/xgboost"
//	)
//
//	func main() {
//	    store := blobstore.NewLocalStore("/var/models")
//	    model, err := xgboost.LoadFromBlob(context.Background(), store, "ctr.bin.zst",
//	        xgboost.WithByteOrder(binary.LittleEndian))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    f := model.NewFVec()
//	    idx := []uint32{0, 7, 12}
//	    f.Set(idx, []float32{0.31, 4, 1})
//	    fmt.Println("margin:", model.PredictValue(f, 0))
//	    f.Reset(idx)
//	}
//
// # Packages
//
//   - xgboost: model decoding, traversal, and the batch Predictor
//   - blobstore: byte sources for model artifacts (local, memory, s3, minio) and frame codecs
//   - dataset/libsvm: LIBSVM text rows as sparse index/value pairs
//   - core/parallel: row-range fan-out used by batch prediction
//   - pkg/errors: error types, warnings, and panic recovery
//   - pkg/log: structured logging over slog or zerolog
//
// # Missing values
//
// A feature value of exactly 0 is treated as missing and routed to the
// node's default child. Inputs where 0 is a meaningful value must be shifted
// or encoded before prediction.
package gbtree
