package xgboost

import (
	"encoding/binary"

	"github.com/YuminosukeSato/gbtree/pkg/log"
)

// Option configures Load.
type Option func(*loadConfig)

type loadConfig struct {
	order    binary.ByteOrder
	logger   log.Logger
	validate bool
	source   string
}

func newLoadConfig(opts []Option) *loadConfig {
	cfg := &loadConfig{
		order:    binary.NativeEndian,
		validate: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.GetLogger()
	}
	cfg.logger = cfg.logger.With(log.ComponentKey, "xgboost")
	if cfg.source != "" {
		cfg.logger = cfg.logger.With(log.SourceKey, cfg.source)
	}
	return cfg
}

// WithByteOrder sets the byte order of every multi-byte field. The default is
// binary.NativeEndian, which matches a model written on the same
// architecture; trainers on x86-64 and arm64 write binary.LittleEndian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(c *loadConfig) {
		if order != nil {
			c.order = order
		}
	}
}

// WithLogger sets the logger used for decode diagnostics. The default is
// log.GetLogger().
func WithLogger(logger log.Logger) Option {
	return func(c *loadConfig) {
		c.logger = logger
	}
}

// WithValidation toggles the structural check that every reachable node has
// in-range children and that no node is reached twice. It is on by default;
// turning it off trades safety for load speed on trusted buffers.
func WithValidation(validate bool) Option {
	return func(c *loadConfig) {
		c.validate = validate
	}
}

// WithSourceName labels log records with where the buffer came from.
func WithSourceName(name string) Option {
	return func(c *loadConfig) {
		c.source = name
	}
}
