package xgboost

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/gbtree/blobstore"
	"github.com/YuminosukeSato/gbtree/pkg/errors"
	"github.com/YuminosukeSato/gbtree/pkg/log"
)

// Load decodes a model buffer. Decode failures return a nil Model and an
// error satisfying errors.Is(err, errors.ErrMalformedModel); a partially
// decoded model is never returned. buf is not retained.
func Load(buf []byte, opts ...Option) (m *Model, err error) {
	cfg := newLoadConfig(opts)
	start := time.Now()
	defer func() {
		if err != nil {
			m = nil
			cfg.logger.Error("model load failed", err,
				log.OperationKey, log.OperationLoad,
				log.DataSizeKey, len(buf),
				log.ErrorCodeKey, log.ErrorMalformedModel,
			)
		}
	}()
	defer errors.Recover(&err, "xgboost.Load")

	m, err = decodeModel(buf, cfg)
	if err != nil {
		return nil, err
	}

	if m.size < len(buf) {
		cfg.logger.Debug("trailing bytes after last tree",
			log.OffsetKey, m.size,
			log.DataSizeKey, len(buf),
		)
	}
	cfg.logger.Info("model loaded",
		log.OperationKey, log.OperationLoad,
		log.NumTreesKey, m.NumTrees(),
		log.FeaturesKey, m.NumFeatures(),
		log.ObjectiveKey, m.ObjectiveName(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return m, nil
}

// LoadFromBlob reads name from store, unwrapping zstd or lz4 framing, and
// decodes it. Mapped local files are decoded in place without a copy.
func LoadFromBlob(ctx context.Context, store blobstore.BlobStore, name string, opts ...Option) (*Model, error) {
	var m *Model
	opts = append([]Option{WithSourceName(name)}, opts...)
	err := blobstore.View(ctx, store, name, func(data []byte) error {
		var err error
		m, err = Load(data, opts...)
		return err
	})
	if err != nil {
		if errors.Is(err, errors.ErrMalformedModel) {
			return nil, err
		}
		return nil, errors.NewModelError("xgboost.LoadFromBlob", "read "+name, err)
	}
	return m, nil
}

// LoadAll loads several models concurrently and returns them in the order of
// names. The first failure cancels the remaining loads.
func LoadAll(ctx context.Context, store blobstore.BlobStore, names []string, opts ...Option) ([]*Model, error) {
	models := make([]*Model, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, name := range names {
		g.Go(func() error {
			m, err := LoadFromBlob(ctx, store, name, opts...)
			if err != nil {
				return err
			}
			models[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return models, nil
}
