package portfolioService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/vc_portfolio_dashboard/data/cache"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
)

// fetch serves key from the query cache, otherwise loads it once per scope no matter how many
// callers ask concurrently, and stores the result. Cache failures only degrade to a direct load.
// A load that overlaps an invalidation is returned to its callers but never left in the cache.
func fetch[T any](ctx context.Context, s *PortfolioService, key string, load func(ctx context.Context) (T, error)) (T, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	scope := utils.GetCacheScopeFromCtx(ctx)

	var cached T
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		slog.Warn("query cache get failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
	}

	epoch := s.epoch.Load()
	v, err, shared := s.group.Do(fmt.Sprintf("%s|%s|%d", scope, key, epoch), func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, loaded, epoch)
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, mapRepoErr(err)
	}
	if shared {
		slog.Debug("query deduplicated", slog.String("rqID", rqID), slog.String("key", key))
	}

	return v.(T), nil
}

// store caches value under key unless an invalidation happened since epoch was read.
func (s *PortfolioService) store(ctx context.Context, key string, value any, epoch uint64) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	if s.epoch.Load() != epoch {
		slog.Debug("query invalidated while loading", slog.String("rqID", rqID), slog.String("key", key))
		return
	}
	if err := s.cache.Set(ctx, key, value, 0); err != nil {
		slog.Warn("query cache set failed", slog.String("rqID", rqID), slog.String("key", key), slog.String("err", err.Error()))
		return
	}
	// an invalidation between the check and Set may have run its delete first
	if s.epoch.Load() != epoch {
		s.dropKeys(ctx, key)
	}
}

// invalidate drops keys after a successful mutation. The epoch moves first so loads already in
// flight neither cache their result nor share it with later reads. A failure is logged: stale
// entries expire by TTL.
func (s *PortfolioService) invalidate(ctx context.Context, keys ...string) {
	s.epoch.Add(1)
	s.dropKeys(ctx, keys...)
}

func (s *PortfolioService) dropKeys(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		slog.Warn("query cache invalidate failed", slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
			slog.Any("keys", keys), slog.String("err", err.Error()))
	}
}
