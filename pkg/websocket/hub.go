package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub держит все соединения и рассылает им сообщения.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
	now        func() time.Time
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
		now:        time.Now,
	}
}

// Register и Unregister не блокируются после остановки Run.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Run обслуживает регистрацию и рассылку, пока не отменён ctx. При выходе закрывает все соединения.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("websocket клиент зарегистрирован", zap.Uint64("userID", client.UserID))
		case client := <-h.unregister:
			h.remove(client)
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// медленный клиент отключается
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		h.logger.Debug("websocket клиент отсоединён", zap.Uint64("userID", client.UserID))
	}
}

// ClientCount — число активных соединений.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast отправляет сообщение всем подключённым клиентам. Не блокируется дольше ctx.
func (h *Hub) Broadcast(ctx context.Context, messageType string, payload interface{}) error {
	envelope := Envelope{
		ID:        uuid.NewString(),
		Type:      messageType,
		Payload:   payload,
		Timestamp: h.now().UTC(),
	}
	messageBytes, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- messageBytes:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
