package websocket

import "time"

// Типы сообщений, которые получает фронтенд.
const (
	TypeStale = "stale"
)

// Envelope — конверт для всех сообщений. ID позволяет клиенту отбрасывать дубли.
type Envelope struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// StalePayload: список (requests или equipment) устарел и его нужно перечитать.
// Идентификатор записи не передаётся: сигнал получают все клиенты, независимо от того, что им видно.
type StalePayload struct {
	List string `json:"list"`
}
