package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gear-guard/pkg/constants"
)

// DashboardStatsCache хранит статистику дашборда под ключом текущего поколения.
// Invalidate увеличивает поколение: снимок, посчитанный до сброса, больше никто не прочитает,
// даже если он будет записан уже после сброса.
type DashboardStatsCache struct {
	cache CacheRepositoryInterface
	ttl   time.Duration
}

func NewDashboardStatsCache(cache CacheRepositoryInterface, ttl time.Duration) *DashboardStatsCache {
	return &DashboardStatsCache{cache: cache, ttl: ttl}
}

// Enabled — false, когда TTL не задан и статистика всегда считается заново.
func (c *DashboardStatsCache) Enabled() bool {
	return c.ttl > 0
}

// Generation читает текущее поколение. До первого сброса оно равно 0.
func (c *DashboardStatsCache) Generation(ctx context.Context) (int64, error) {
	raw, err := c.cache.Get(ctx, constants.CacheKeyDashboardGeneration)
	if errors.Is(err, ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("поколение кэша дашборда %q: %w", raw, err)
	}
	return gen, nil
}

func (c *DashboardStatsCache) Get(ctx context.Context, gen int64) (string, error) {
	return c.cache.Get(ctx, statsKey(gen))
}

func (c *DashboardStatsCache) Put(ctx context.Context, gen int64, raw []byte) error {
	return c.cache.Set(ctx, statsKey(gen), raw, c.ttl)
}

// Invalidate переводит кэш на новое поколение и удаляет снимок предыдущего.
func (c *DashboardStatsCache) Invalidate(ctx context.Context) error {
	gen, err := c.cache.Incr(ctx, constants.CacheKeyDashboardGeneration)
	if err != nil {
		return fmt.Errorf("сброс кэша дашборда: %w", err)
	}
	return c.cache.Del(ctx, statsKey(gen-1))
}

func statsKey(gen int64) string {
	return fmt.Sprintf("%s:%d", constants.CacheKeyDashboardStats, gen)
}
