package cache

import (
	"context"
	"fmt"

	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/ryznreal/offers/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Idempotency store kinds accepted by event.idempotency_store
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// RedisConnector opens a Redis-backed store
type RedisConnector func(ctx context.Context, cfg config.RedisConfig) (shared.IdempotencyStore, error)

// IdempotencyStoreFactory creates idempotency stores based on configuration
type IdempotencyStoreFactory struct {
	eventConfig           config.EventConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	connectRedis          RedisConnector
}

// IdempotencyStoreFactoryOption is a functional option for configuring the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithRedisConnector replaces how the Redis store is opened
func WithRedisConnector(connect RedisConnector) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.connectRedis = connect
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(eventCfg config.EventConfig, redisCfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		eventConfig:           eventCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connectRedis: func(ctx context.Context, cfg config.RedisConfig) (shared.IdempotencyStore, error) {
			return NewRedisIdempotencyStore(ctx, cfg)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore creates the configured store. With the redis kind it falls
// back to memory when Redis is unreachable and fallback is allowed.
func (f *IdempotencyStoreFactory) CreateStore(ctx context.Context) (shared.IdempotencyStore, error) {
	switch f.eventConfig.IdempotencyStore {
	case "", StoreMemory:
		f.logger.Info("Using in-memory idempotency store")
		return NewInMemoryIdempotencyStore(), nil
	case StoreRedis:
	default:
		return nil, fmt.Errorf("unknown idempotency store %q", f.eventConfig.IdempotencyStore)
	}

	store, err := f.connectRedis(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis idempotency store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}
	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"Events may be forwarded twice across instances.",
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
