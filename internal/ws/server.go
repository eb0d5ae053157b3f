package ws

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kerimbalci/uno-online/internal/game"
)

// Server upgrades HTTP requests to game sessions: one connection, one
// read loop, one dispatcher call per frame.
type Server struct {
	hub        *Hub
	dispatcher *game.Dispatcher
	log        *logrus.Logger
}

// NewServer wires a hub and dispatcher into a WebSocket endpoint.
func NewServer(hub *Hub, dispatcher *game.Dispatcher, log *logrus.Logger) *Server {
	return &Server{hub: hub, dispatcher: dispatcher, log: log}
}

// ServeWS accepts a WebSocket connection, assigns it an opaque ref, and
// pumps inbound intents into the dispatcher until the connection closes.
// The close — clean or not — is the disconnect signal; there is no grace
// period.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Debugf("websocket accept failed: %v", err)
		return
	}

	id := uuid.New()
	s.hub.add(id, c)
	s.log.WithField("conn", id).Info("connection opened")

	defer func() {
		s.hub.remove(id)
		s.dispatcher.HandleDisconnect(id)
		c.Close(websocket.StatusNormalClosure, "")
		s.log.WithField("conn", id).Info("connection closed")
	}()

	ctx := r.Context()
	for {
		var in game.Intent
		if err := wsjson.Read(ctx, c, &in); err != nil {
			var closeErr websocket.CloseError
			if !errors.As(err, &closeErr) {
				s.log.WithField("conn", id).Debugf("read failed: %v", err)
			}
			return
		}
		s.dispatcher.HandleIntent(id, in)
	}
}
