package listeners

import (
	"context"
	"fmt"

	"gear-guard/internal/events"
	"gear-guard/pkg/eventbus"
	"gear-guard/pkg/websocket"
)

// Broadcaster — то, что слушателю нужно от websocket-хаба.
type Broadcaster interface {
	Broadcast(ctx context.Context, messageType string, payload interface{}) error
}

// WebSocketListener рассылает клиентам сигналы "список устарел".
type WebSocketListener struct {
	hub Broadcaster
}

func NewWebSocketListener(hub Broadcaster) *WebSocketListener {
	return &WebSocketListener{hub: hub}
}

func (l *WebSocketListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.RequestsStaleName, l.handleStale)
	bus.Subscribe(events.EquipmentStaleName, l.handleStale)
}

// staleEvent — событие, которое знает, какой список устарел.
type staleEvent interface {
	List() string
}

func (l *WebSocketListener) handleStale(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(staleEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}
	return l.hub.Broadcast(ctx, websocket.TypeStale, websocket.StalePayload{List: event.List()})
}
