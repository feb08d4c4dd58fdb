package listeners

import (
	"context"

	"go.uber.org/zap"

	"gear-guard/internal/events"
	"gear-guard/pkg/eventbus"
)

// DashboardInvalidator — кэш статистики, который умеет сбрасываться.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// CacheListener сбрасывает закэшированную статистику дашборда при любом изменении заявок.
type CacheListener struct {
	cache  DashboardInvalidator
	logger *zap.Logger
}

func NewCacheListener(cache DashboardInvalidator, logger *zap.Logger) *CacheListener {
	return &CacheListener{cache: cache, logger: logger}
}

// Register подписывается синхронно: ответ на изменение уходит клиенту уже после сброса.
func (l *CacheListener) Register(bus *eventbus.Bus) {
	bus.SubscribeSync(events.RequestsStaleName, l.handleRequestsStale)
}

func (l *CacheListener) handleRequestsStale(ctx context.Context, _ eventbus.Event) error {
	if err := l.cache.Invalidate(ctx); err != nil {
		return err
	}
	l.logger.Debug("Кэш дашборда сброшен")
	return nil
}
