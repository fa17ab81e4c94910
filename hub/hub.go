package hub

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/kudryaWW/drawing-app-simple/domain"
)

// Hub owns the live connection set. It is both the connection registry and
// the fan-out path: the presence count is derived from the set, never
// tracked as a separate counter, so duplicate lifecycle notifications cannot
// drive it negative.
type Hub struct {
	mu      sync.Mutex
	clients map[string]domain.Connection
}

func New() *Hub {
	return &Hub{
		clients: make(map[string]domain.Connection),
	}
}

// OnConnect registers the connection and announces the new presence count to
// everyone, including the connection that just joined.
func (h *Hub) OnConnect(conn domain.Connection) {
	h.mu.Lock()
	h.clients[conn.ID()] = conn
	count := len(h.clients)
	targets := h.snapshot()
	h.mu.Unlock()

	slog.Info("client connected", "clientId", conn.ID(), "clients", count)
	h.announceCount(count, targets)
}

// OnDisconnect removes the connection and announces the new count to the
// remaining connections. A disconnect for an unknown or already-removed ID
// is a no-op. Normal and abrupt closes count identically; reason is only
// logged.
func (h *Hub) OnDisconnect(connID string, reason error) {
	h.mu.Lock()
	if _, ok := h.clients[connID]; !ok {
		h.mu.Unlock()
		slog.Debug("duplicate disconnect ignored", "clientId", connID)
		return
	}
	delete(h.clients, connID)
	count := len(h.clients)
	targets := h.snapshot()
	h.mu.Unlock()

	slog.Info("client disconnected", "clientId", connID, "clients", count, "reason", reason)
	h.announceCount(count, targets)
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// BroadcastOthers delivers data to every connection except the sender.
func (h *Hub) BroadcastOthers(senderID string, data []byte) {
	h.mu.Lock()
	targets := make([]domain.Connection, 0, len(h.clients))
	for id, conn := range h.clients {
		if id == senderID {
			continue
		}
		targets = append(targets, conn)
	}
	h.mu.Unlock()

	deliver(targets, data)
}

// BroadcastAll delivers data to every connection, sender included.
func (h *Hub) BroadcastAll(data []byte) {
	h.mu.Lock()
	targets := h.snapshot()
	h.mu.Unlock()

	deliver(targets, data)
}

// snapshot copies the current target set. Caller must hold h.mu.
func (h *Hub) snapshot() []domain.Connection {
	targets := make([]domain.Connection, 0, len(h.clients))
	for _, conn := range h.clients {
		targets = append(targets, conn)
	}
	return targets
}

// deliver is fire-and-forget per recipient: a recipient that closed or fell
// behind is skipped, never aborting the rest. The read pump owns teardown,
// so a failed send is not unregistered here.
func deliver(targets []domain.Connection, data []byte) {
	for _, conn := range targets {
		if err := conn.Send(data); err != nil {
			slog.Debug("dropped delivery", "clientId", conn.ID(), "error", err)
		}
	}
}

func (h *Hub) announceCount(count int, targets []domain.Connection) {
	data, err := json.Marshal(domain.CountEvent{Type: domain.TypeUserCountUpdated, Count: count})
	if err != nil {
		slog.Warn("count event marshal error", "error", err)
		return
	}
	deliver(targets, data)
}
