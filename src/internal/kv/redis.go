package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisClient is the subset of *redis.Client the backend needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Keys(ctx context.Context, pattern string) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisBackend struct {
	client redisClient
	prefix string
	log    *zap.Logger
}

func NewRedisBackend(client redisClient, prefix string, logger *zap.Logger) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix, log: logger}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.client.Get(ctx, b.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMissing
		}
		b.log.Error("RedisBackend.Get: failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}
	return v, nil
}

func (b *RedisBackend) Put(ctx context.Context, key string, value []byte) error {
	if err := b.client.Set(ctx, b.prefix+key, value, 0).Err(); err != nil {
		b.log.Error("RedisBackend.Put: failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func (b *RedisBackend) Clear(ctx context.Context) error {
	keys, err := b.client.Keys(ctx, b.prefix+"*").Result()
	if err != nil {
		b.log.Error("RedisBackend.Clear: list keys failed", zap.Error(err))
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := b.client.Del(ctx, keys...).Err(); err != nil {
		b.log.Error("RedisBackend.Clear: delete failed", zap.Int("keys", len(keys)), zap.Error(err))
		return err
	}
	b.log.Info("RedisBackend.Clear: success", zap.Int("deleted", len(keys)))
	return nil
}
