package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
)

// WSClient serializes writes: the hub's broadcasts and the controller's
// keep-alive pings run concurrently, and a websocket conn allows only one
// writer at a time.
type WSClient struct {
	UserID string
	Conn   *websocket.Conn

	writeMu sync.Mutex
}

func (c *WSClient) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// Ping sends a keep-alive control frame.
func (c *WSClient) Ping() error {
	return c.write(websocket.PingMessage, nil)
}

// SyncHub fans sync-status events out to each user's websocket subscribers.
// Observing it is optional; mutations never block on delivery.
type SyncHub struct {
	mu      sync.RWMutex
	clients map[string]map[*WSClient]struct{}
}

func NewSyncHub() *SyncHub {
	return &SyncHub{clients: make(map[string]map[*WSClient]struct{})}
}

func (h *SyncHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *SyncHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

func (h *SyncHub) Broadcast(userID string, payload any) {
	msg, _ := json.Marshal(payload)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		_ = c.write(websocket.TextMessage, msg)
	}
}
