package cache

import (
	"context"
	"testing"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/internal/model"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cfg := &config.Config{Cache: config.Cache{QueryTTL: 5 * time.Minute}}
	return NewRedisCache(client, cfg), mr
}

func sessionCtx(id string) context.Context {
	return utils.WithSession(context.Background(), model.Session{ID: id})
}

func TestRedisCache_GetSet(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := sessionCtx("s1")

	var got []string
	require.ErrorIs(t, c.Get(ctx, "companies", &got), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "companies", []string{"Acme"}, 0))
	require.NoError(t, c.Get(ctx, "companies", &got))
	require.Equal(t, []string{"Acme"}, got)
	require.Equal(t, 5*time.Minute, mr.TTL("qc:s1:companies"))

	require.ErrorIs(t, c.Get(sessionCtx("s2"), "companies", &got), ErrCacheMiss)
}

func TestRedisCache_InvalidateAcrossScopes(t *testing.T) {
	c, _ := newTestCache(t)
	contexts := []context.Context{sessionCtx("s1"), sessionCtx("s2"), context.Background()}

	for _, ctx := range contexts {
		require.NoError(t, c.Set(ctx, "company:1", "acme", 0))
		require.NoError(t, c.Set(ctx, "companies", "all", 0))
	}

	require.NoError(t, c.Invalidate(context.Background(), "company:1"))

	var v string
	for _, ctx := range contexts {
		require.ErrorIs(t, c.Get(ctx, "company:1", &v), ErrCacheMiss)
		require.NoError(t, c.Get(ctx, "companies", &v))
	}
}

func TestRedisCache_InvalidatePattern(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := sessionCtx("s1")

	for _, key := range []string{
		"company-metrics:1",
		"company-metrics:1:latest",
		"company-metrics:1:count",
		"company-metrics:2:latest",
	} {
		require.NoError(t, c.Set(ctx, key, 1, 0))
	}
	require.NoError(t, c.Set(context.Background(), "company-metrics:1:latest", 1, 0))

	require.NoError(t, c.Invalidate(ctx, "company-metrics:1*"))

	require.ElementsMatch(t, []string{"qc:s1:company-metrics:2:latest"}, mr.Keys())
}

func TestRedisCache_FlushScope(t *testing.T) {
	c, mr := newTestCache(t)

	require.NoError(t, c.Set(sessionCtx("s1"), "companies", 1, 0))
	require.NoError(t, c.Set(sessionCtx("s1"), "company:1", 1, 0))
	require.NoError(t, c.Set(sessionCtx("s2"), "companies", 1, 0))

	require.NoError(t, c.FlushScope(context.Background(), "s1"))
	require.ElementsMatch(t, []string{"qc:s2:companies"}, mr.Keys())

	// nothing left to flush
	require.NoError(t, c.FlushScope(context.Background(), "s1"))
}
