package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const listenerTimeout = time.Minute

// Event представляет собой любое событие в системе.
type Event interface {
	Name() string
}

// Listener - это обработчик (слушатель) событий.
type Listener func(ctx context.Context, event Event) error

// Publisher — то, что нужно сервисам от шины.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Bus - это наша шина событий.
type Bus struct {
	listeners map[string][]Listener
	sync      map[string][]Listener
	mu        sync.RWMutex
	inflight  sync.WaitGroup
	logger    *zap.Logger
}

// New создает новую шину событий.
func New(logger *zap.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]Listener),
		sync:      make(map[string][]Listener),
		logger:    logger,
	}
}

// Subscribe подписывает слушателя на определенное событие.
func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// SubscribeSync подписывает слушателя, который выполняется внутри Publish,
// до возврата управления публикующему. Для коротких операций вроде сброса кэша.
func (b *Bus) SubscribeSync(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sync[eventName] = append(b.sync[eventName], listener)
}

// Publish сначала вызывает синхронных подписчиков, затем остальных асинхронно и не ждёт их.
// Асинхронным не передаётся контекст вызывающего: HTTP-запрос может завершиться раньше слушателя.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	syncListeners := b.sync[event.Name()]
	listeners := b.listeners[event.Name()]
	b.mu.RUnlock()

	for _, l := range syncListeners {
		if err := l(context.WithoutCancel(ctx), event); err != nil {
			b.logger.Error("Ошибка в синхронном обработчике события",
				zap.String("event", event.Name()),
				zap.Error(err),
			)
		}
	}

	for _, listener := range listeners {
		b.inflight.Add(1)
		go func(l Listener) {
			defer b.inflight.Done()

			ctxWithTimeout, cancel := context.WithTimeout(context.Background(), listenerTimeout)
			defer cancel()

			if err := l(ctxWithTimeout, event); err != nil {
				b.logger.Error("Ошибка в обработчике события",
					zap.String("event", event.Name()),
					zap.Error(err),
				)
			}
		}(listener)
	}
}

// Wait блокируется, пока не завершатся все запущенные обработчики. Вызывается при остановке сервера.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
