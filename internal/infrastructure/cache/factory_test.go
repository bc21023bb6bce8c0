package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ryznreal/offers/internal/domain/shared"
	"github.com/ryznreal/offers/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failingConnector(ctx context.Context, cfg config.RedisConfig) (shared.IdempotencyStore, error) {
	return nil, errors.New("connection refused")
}

func TestIdempotencyStoreFactory_CreateStore(t *testing.T) {
	ctx := context.Background()
	redisCfg := config.RedisConfig{Enabled: true, Host: "localhost", Port: 6379}

	t.Run("memory kind", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(config.EventConfig{IdempotencyStore: StoreMemory}, redisCfg)
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("redis kind uses the connector", func(t *testing.T) {
		memory := NewInMemoryIdempotencyStore()
		defer memory.Close()
		var got config.RedisConfig
		f := NewIdempotencyStoreFactory(config.EventConfig{IdempotencyStore: StoreRedis}, redisCfg,
			WithRedisConnector(func(ctx context.Context, cfg config.RedisConfig) (shared.IdempotencyStore, error) {
				got = cfg
				return memory, nil
			}),
		)
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		assert.Same(t, memory, store)
		assert.Equal(t, redisCfg, got)
	})

	t.Run("redis unavailable falls back to memory", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(config.EventConfig{IdempotencyStore: StoreRedis}, redisCfg,
			WithRedisConnector(failingConnector))
		store, err := f.CreateStore(ctx)
		require.NoError(t, err)
		defer store.Close()

		isNew, err := store.MarkProcessed(ctx, "e1", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("redis unavailable without fallback", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(config.EventConfig{IdempotencyStore: StoreRedis}, redisCfg,
			WithRedisConnector(failingConnector), WithInMemoryFallback(false))
		_, err := f.CreateStore(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("unknown kind", func(t *testing.T) {
		f := NewIdempotencyStoreFactory(config.EventConfig{IdempotencyStore: "etcd"}, redisCfg)
		_, err := f.CreateStore(ctx)
		require.Error(t, err)
	})
}
