package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss — ключа нет в кеше (или он истёк).
var ErrCacheMiss = errors.New("cache: ключ не найден")

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
}
