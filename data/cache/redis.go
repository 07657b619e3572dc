package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

const (
	keyPrefix = "qc"
	scanCount = 200
)

// RedisCache is the query cache. Entries are JSON documents keyed by scope and query key.
type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

func cacheKey(scope, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, scope, key)
}

// Get loads the entry for key in the context's scope into dest.
func (r *RedisCache) Get(ctx context.Context, key string, dest any) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	fullKey := cacheKey(utils.GetCacheScopeFromCtx(ctx), key)
	slog.Debug("Get start", slog.String("rqID", rqID), slog.String("key", fullKey))

	res, err := r.redis.Get(ctx, fullKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", fullKey))
		return err
	}

	err = json.Unmarshal(res, dest)
	if err != nil {
		slog.Error(
			"can't unmarshall cached value",
			slog.String("rqID", rqID),
			slog.String("err", err.Error()),
			slog.String("key", fullKey),
		)
		return fmt.Errorf("can't unmarshall cached value: %w", err)
	}

	slog.Debug("Get completed", slog.String("rqID", rqID), slog.String("key", fullKey))

	return nil
}

// Set stores value under key in the context's scope. A zero ttl uses the configured default.
func (r *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	fullKey := cacheKey(utils.GetCacheScopeFromCtx(ctx), key)
	slog.Debug("Set start", slog.String("rqID", rqID), slog.String("key", fullKey))

	if ttl == 0 {
		ttl = r.cfg.Cache.QueryTTL
	}

	valueJson, err := json.Marshal(value)
	if err != nil {
		slog.Error("can't marshall value in Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return fmt.Errorf("can't marshall value: %w", err)
	}

	err = r.redis.Set(ctx, fullKey, valueJson, ttl).Err()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", fullKey))
		return err
	}

	slog.Debug("Set completed", slog.String("rqID", rqID), slog.String("key", fullKey))

	return nil
}

// Invalidate drops keys in every scope so that all sessions refetch after a mutation.
func (r *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("Invalidate start", slog.String("rqID", rqID), slog.Any("keys", keys))

	for _, key := range keys {
		if err := r.deleteByPattern(ctx, cacheKey("*", key)); err != nil {
			slog.Error("failed to invalidate key", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("key", key))
			return err
		}
	}

	slog.Debug("Invalidate completed", slog.String("rqID", rqID))

	return nil
}

// FlushScope drops every entry of a scope, used when a session ends.
func (r *RedisCache) FlushScope(ctx context.Context, scope string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("FlushScope start", slog.String("rqID", rqID), slog.String("scope", scope))

	if err := r.deleteByPattern(ctx, cacheKey(scope, "*")); err != nil {
		slog.Error("failed to flush scope", slog.String("rqID", rqID), slog.String("err", err.Error()), slog.String("scope", scope))
		return err
	}

	slog.Debug("FlushScope completed", slog.String("rqID", rqID), slog.String("scope", scope))

	return nil
}

func (r *RedisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := r.redis.Scan(ctx, 0, pattern, scanCount).Iterator()

	pipe := r.redis.Pipeline()
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if pipe.Len() == 0 {
		return nil
	}

	_, err := pipe.Exec(ctx)
	return err
}
