package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/hupe1980/salesmesh/core"
	"github.com/hupe1980/salesmesh/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub broadcasts run progress events to every connected websocket client.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan core.Event
	logger    logging.Logger
	mu        sync.RWMutex
}

// NewHub creates an idle hub; call Run to start delivering.
func NewHub(logger logging.Logger) *Hub {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan core.Event, 256),
		logger:    logger,
	}
}

// Run delivers broadcast events to all clients until ctx is cancelled.
// Clients whose connection errors are closed and dropped.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}

			var dead []*websocket.Conn
			h.mu.RLock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
					dead = append(dead, client)
				}
			}
			h.mu.RUnlock()

			for _, client := range dead {
				client.Close()
				h.Unregister(client)
			}
		}
	}
}

// Broadcast queues an event for delivery without blocking. When the channel
// is full the event is dropped so slow websocket clients cannot stall runs.
func (h *Hub) Broadcast(ev core.Event) {
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn("websocket broadcast channel full, dropping %s", ev.Type)
	}
}

// Register adds a client connection.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

// Unregister removes a client connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed: %v", err)
		return
	}

	s.hub.Register(conn)
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	// Consume client frames until the connection drops; events flow one way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
