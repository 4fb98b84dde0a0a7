package server

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Hub tracks which websocket connection is bound to which session id. One
// binding per id; a newer connection replaces the previous one.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*websocket.Conn
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		conns:  make(map[string]*websocket.Conn),
		logger: logger,
	}
}

// Bind associates the connection with the given id.
func (h *Hub) Bind(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = conn
}

// Unbind removes the association, but only if conn is still the bound one.
func (h *Hub) Unbind(id string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[id] == conn {
		delete(h.conns, id)
	}
}

// Conn returns the connection bound to the id, or nil.
func (h *Hub) Conn(id string) *websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[id]
}

// Send marshals the payload and writes it to the connection bound to the id.
// Returns false when no connection is bound.
func (h *Hub) Send(ctx context.Context, id string, payload any) bool {
	conn := h.Conn(id)
	if conn == nil {
		return false
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal push payload", zap.Error(err))
		return false
	}

	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		h.logger.Debug("push write failed", zap.String("client_id", id), zap.Error(err))
		return false
	}
	return true
}
