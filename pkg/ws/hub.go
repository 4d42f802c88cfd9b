package ws

import (
	"sync"

	"github.com/autobotela-sys/zap-trading/pkg/logger"
)

// Conn is the subset of *websocket.Conn the hub needs.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub tracks the live websocket connections of each user and fans
// notification payloads out to them. Delivery is best-effort: a failed
// write drops that one connection and never fails the caller.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint][]Conn
	log     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients: make(map[uint][]Conn),
		log:     log,
	}
}

// Register adds a connection to the user's listener set.
func (h *Hub) Register(userID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[userID] = append(h.clients[userID], conn)
	h.log.Debug("websocket client connected", logger.UintField("user_id", userID))
}

// Unregister removes a connection from the user's listener set.
func (h *Hub) Unregister(userID uint, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.clients[userID]
	for i, c := range conns {
		if c == conn {
			h.clients[userID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// BroadcastToUser delivers message to every live connection of the user.
// Connections whose write fails are closed and dropped.
func (h *Hub) BroadcastToUser(userID uint, message interface{}) {
	h.mu.RLock()
	conns := make([]Conn, len(h.clients[userID]))
	copy(conns, h.clients[userID])
	h.mu.RUnlock()

	var dead []Conn
	for _, c := range conns {
		if err := c.WriteJSON(message); err != nil {
			dead = append(dead, c)
		}
	}

	for _, c := range dead {
		_ = c.Close()
		h.Unregister(userID, c)
	}
}

// ClientCount reports the number of live connections for a user.
func (h *Hub) ClientCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
