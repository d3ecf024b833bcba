package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ghostlabs/ghost-core/internal/model"
)

// hub fans out live updates to dashboard clients subscribed to one org's
// detected patterns, executions, and ghost lifecycle changes. A single
// broadcast channel per org is enough since this surface has no
// per-client RPC methods to route — it is push-only.
type hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{} // orgID -> client set
}

type wsClient struct {
	conn *websocket.Conn
	send chan liveEvent
}

type liveEvent struct {
	Type string `json:"type"` // pattern | execution | ghost
	Data any    `json:"data"`
}

func newHub() *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[string]map[*wsClient]struct{}),
	}
}

// handleLive upgrades to a websocket and streams live updates for the
// org named by the "orgId" query parameter until the client disconnects.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	orgID := r.URL.Query().Get("orgId")
	if orgID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ORG", "orgId query parameter is required")
		return
	}

	conn, err := s.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Error("httpapi: websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan liveEvent, 16)}
	s.hub.register(orgID, client)
	defer s.hub.unregister(orgID, client)

	go client.writePump()
	client.readPump()
}

func (h *hub) register(orgID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[orgID] == nil {
		h.clients[orgID] = make(map[*wsClient]struct{})
	}
	h.clients[orgID][c] = struct{}{}
}

func (h *hub) unregister(orgID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[orgID], c)
	close(c.send)
}

func (h *hub) broadcast(orgID string, ev liveEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[orgID] {
		select {
		case c.send <- ev:
		default:
			slog.Warn("httpapi: dropping live event, client send buffer full", "orgId", orgID)
		}
	}
}

func (h *hub) broadcastPatterns(orgID string, patterns []model.DetectedPattern) {
	if len(patterns) == 0 {
		return
	}
	h.broadcast(orgID, liveEvent{Type: "pattern", Data: patterns})
}

func (h *hub) broadcastExecution(orgID string, exec model.Execution) {
	h.broadcast(orgID, liveEvent{Type: "execution", Data: exec})
}

func (h *hub) broadcastGhost(orgID string, ghost model.Ghost) {
	h.broadcast(orgID, liveEvent{Type: "ghost", Data: ghost})
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains and discards inbound frames so the connection's pong
// handler keeps running; this surface takes no client commands.
func (c *wsClient) readPump() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
