package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gear-guard/pkg/constants"
)

func TestDashboardStatsCache_LateSnapshotIsNotServed(t *testing.T) {
	ctx := context.Background()
	stats := NewDashboardStatsCache(NewMemoryCacheRepository(time.Minute, time.Minute), time.Minute)
	require.True(t, stats.Enabled())

	gen, err := stats.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, stats.Invalidate(ctx))
	// снимок, посчитанный до сброса, записан после него
	require.NoError(t, stats.Put(ctx, gen, []byte(`{"old":true}`)))

	current, err := stats.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)
	_, err = stats.Get(ctx, current)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, stats.Put(ctx, current, []byte(`{"new":true}`)))
	raw, err := stats.Get(ctx, current)
	require.NoError(t, err)
	assert.Equal(t, `{"new":true}`, raw)
}

func TestDashboardStatsCache_BrokenGeneration(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCacheRepository(time.Minute, time.Minute)
	require.NoError(t, cache.Set(ctx, constants.CacheKeyDashboardGeneration, "abc", 0))

	_, err := NewDashboardStatsCache(cache, time.Minute).Generation(ctx)
	assert.Error(t, err)
	assert.False(t, NewDashboardStatsCache(cache, 0).Enabled())
}
