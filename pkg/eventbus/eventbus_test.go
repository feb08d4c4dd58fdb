package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pingEvent struct{}

func (pingEvent) Name() string { return "ping" }

type otherEvent struct{}

func (otherEvent) Name() string { return "other" }

func TestBus_PublishCallsEverySubscriber(t *testing.T) {
	bus := New(zap.NewNop())
	var calls atomic.Int32

	for i := 0; i < 3; i++ {
		bus.Subscribe("ping", func(ctx context.Context, e Event) error {
			calls.Add(1)
			return nil
		})
	}
	bus.Subscribe("other", func(ctx context.Context, e Event) error {
		t.Error("слушатель чужого события не должен вызываться")
		return nil
	})

	bus.Publish(context.Background(), pingEvent{})
	bus.Wait()

	assert.Equal(t, int32(3), calls.Load())
}

func TestBus_ListenerErrorDoesNotStopOthers(t *testing.T) {
	bus := New(zap.NewNop())
	var ok atomic.Bool

	bus.Subscribe("ping", func(ctx context.Context, e Event) error {
		return errors.New("boom")
	})
	bus.Subscribe("ping", func(ctx context.Context, e Event) error {
		ok.Store(true)
		return nil
	})

	bus.Publish(context.Background(), pingEvent{})
	bus.Wait()

	assert.True(t, ok.Load())
}

func TestBus_ListenerOutlivesCallerContext(t *testing.T) {
	bus := New(zap.NewNop())
	var ctxErr atomic.Value

	bus.Subscribe("other", func(ctx context.Context, e Event) error {
		ctxErr.Store(ctx.Err() == nil)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, otherEvent{})
	bus.Wait()

	assert.Equal(t, true, ctxErr.Load())
}

func TestBus_SyncListenerRunsBeforePublishReturns(t *testing.T) {
	bus := New(zap.NewNop())
	var order []string

	bus.SubscribeSync("ping", func(ctx context.Context, e Event) error {
		assert.NoError(t, ctx.Err())
		order = append(order, "sync")
		return errors.New("ошибка только логируется")
	})
	bus.SubscribeSync("ping", func(ctx context.Context, e Event) error {
		order = append(order, "sync-2")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pingEvent{})

	assert.Equal(t, []string{"sync", "sync-2"}, order)
}
