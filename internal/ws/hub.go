// Package ws adapts the game core's transport ports to WebSockets. It
// assigns connection identities, translates JSON frames to intents, and
// delivers outbound events; the game core never sees a socket.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kerimbalci/uno-online/internal/game"
)

const writeTimeout = 5 * time.Second

// Hub tracks live connections by their opaque ref and implements the
// dispatcher's Sender port.
type Hub struct {
	mu    sync.Mutex
	conns map[uuid.UUID]*websocket.Conn
	log   *logrus.Logger
}

// NewHub creates an empty hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]*websocket.Conn),
		log:   log,
	}
}

func (h *Hub) add(id uuid.UUID, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = c
}

func (h *Hub) remove(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

func (h *Hub) conn(id uuid.UUID) *websocket.Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.conns[id]
}

// Send delivers one event to one connection as a JSON text frame.
// Failures are logged and otherwise dropped; a broken connection will
// surface through its own read loop shortly after.
func (h *Hub) Send(id uuid.UUID, ev game.Event) {
	c := h.conn(id)
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, c, ev); err != nil {
		h.log.WithField("conn", id).Debugf("write failed: %v", err)
	}
}
