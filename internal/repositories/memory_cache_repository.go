package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryCacheRepository — кеш в памяти процесса, когда Redis выключен.
type MemoryCacheRepository struct {
	store *cache.Cache
}

func NewMemoryCacheRepository(defaultExpiration, cleanupInterval time.Duration) CacheRepositoryInterface {
	return &MemoryCacheRepository{store: cache.New(defaultExpiration, cleanupInterval)}
}

func (r *MemoryCacheRepository) Get(_ context.Context, key string) (string, error) {
	val, found := r.store.Get(key)
	if !found {
		return "", ErrCacheMiss
	}
	return val.(string), nil
}

// Set хранит значение строкой, как Redis.
func (r *MemoryCacheRepository) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	r.store.Set(key, s, expiration)
	return nil
}

func (r *MemoryCacheRepository) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		r.store.Delete(k)
	}
	return nil
}

// Incr, как и INCR в Redis, сохраняет оставшийся TTL ключа.
func (r *MemoryCacheRepository) Incr(_ context.Context, key string) (int64, error) {
	val, exp, found := r.store.GetWithExpiration(key)
	if !found {
		r.store.Set(key, "1", cache.NoExpiration)
		return 1, nil
	}
	var n int64
	if _, err := fmt.Sscan(val.(string), &n); err != nil {
		return 0, fmt.Errorf("значение %q не является числом: %w", key, err)
	}
	n++

	ttl := cache.NoExpiration
	if !exp.IsZero() {
		if ttl = time.Until(exp); ttl <= 0 {
			ttl = time.Millisecond
		}
	}
	r.store.Set(key, fmt.Sprint(n), ttl)
	return n, nil
}

func (r *MemoryCacheRepository) Expire(_ context.Context, key string, expiration time.Duration) error {
	val, found := r.store.Get(key)
	if !found {
		return ErrCacheMiss
	}
	if expiration <= 0 {
		expiration = cache.NoExpiration
	}
	r.store.Set(key, val, expiration)
	return nil
}
