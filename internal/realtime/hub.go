package realtime

import (
	"encoding/json"
	"sync"

	"weighbridge-server/internal/logger"
	"weighbridge-server/internal/metrics"
)

// Hub is the registry of connected sessions. Broadcast never blocks on a slow
// session: a full outbound queue drops that message for that session only.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{clients: make(map[*Client]struct{}), metrics: m}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.SessionOpened()
	logger.WithSession(c.ID()).Info("Session connected", "sessions", count)
}

// Unregister removes c and closes it. Calling it more than once is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.close()
	if ok {
		h.metrics.SessionClosed()
		logger.WithSession(c.ID()).Info("Session disconnected", "sessions", count)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast encodes msg once and queues it for every session.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to encode broadcast", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(data) {
			h.metrics.BroadcastDropped()
			logger.WithSession(c.ID()).Warn("Outbound queue full, message dropped", "type", msg.Type)
		}
	}
}

// Close disconnects every session.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for c := range clients {
		c.close()
		h.metrics.SessionClosed()
	}
}
