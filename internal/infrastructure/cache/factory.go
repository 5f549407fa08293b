package cache

import (
	"fmt"
	"io"

	"github.com/erp/subcontracting/internal/domain/subcontracting"
	"github.com/erp/subcontracting/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Store is a worksheet store that owns resources
type Store interface {
	subcontracting.WorksheetStore
	io.Closer
}

// WorksheetStoreFactory creates worksheet stores based on configuration
type WorksheetStoreFactory struct {
	redisConfig           config.RedisConfig
	worksheetConfig       config.WorksheetConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// WorksheetStoreFactoryOption is a functional option for configuring the factory
type WorksheetStoreFactoryOption func(*WorksheetStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) WorksheetStoreFactoryOption {
	return func(f *WorksheetStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store when Redis is unavailable
func WithInMemoryFallback(allow bool) WorksheetStoreFactoryOption {
	return func(f *WorksheetStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewWorksheetStoreFactory creates a new factory
func NewWorksheetStoreFactory(redisCfg config.RedisConfig, worksheetCfg config.WorksheetConfig, opts ...WorksheetStoreFactoryOption) *WorksheetStoreFactory {
	f := &WorksheetStoreFactory{
		redisConfig:     redisCfg,
		worksheetConfig: worksheetCfg,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates the configured store. A Redis backend that cannot be
// reached falls back to memory only when the fallback is allowed.
func (f *WorksheetStoreFactory) CreateStore() (Store, error) {
	if f.worksheetConfig.Store != config.WorksheetStoreRedis {
		f.logger.Info("Using in-memory worksheet store", zap.Duration("ttl", f.worksheetConfig.TTL))
		return NewInMemoryWorksheetStore(f.worksheetConfig.TTL), nil
	}

	client, err := NewRedisClient(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("failed to create Redis worksheet store: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory worksheet store",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port),
			zap.Error(err),
		)
		return NewInMemoryWorksheetStore(f.worksheetConfig.TTL), nil
	}

	f.logger.Info("Using Redis worksheet store",
		zap.String("host", f.redisConfig.Host),
		zap.String("key_prefix", f.worksheetConfig.KeyPrefix),
	)
	return NewRedisWorksheetStore(client, f.worksheetConfig.KeyPrefix, f.worksheetConfig.TTL), nil
}
