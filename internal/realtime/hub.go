// Package realtime is the websocket layer for live table play: player
// presence, action draft editing, ready states, chat, and the server
// push side of the turn lifecycle.
package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/greymere/keeper-api/internal/clients/narrator"
	"github.com/greymere/keeper-api/internal/errors"
)

// Oracle answers private rules questions asked over the websocket.
// narrator.Client satisfies it.
type Oracle interface {
	AskRules(ctx context.Context, input *narrator.AskRulesInput) (*narrator.AskRulesOutput, error)
}

// Member is one player's presence entry in a session.
type Member struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Online     bool   `json:"online"`
}

// Config holds the dependencies for the hub.
type Config struct {
	// Oracle handles oracle_question events; nil disables the channel.
	Oracle Oracle
	Logger *slog.Logger
}

// Validate ensures the config is usable
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	return nil
}

// Hub tracks connected players per session and fans events out to
// session rooms. It owns the presence map; entries are inserted on
// join and removed on leave or disconnect.
type Hub struct {
	oracle   Oracle
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	rooms    map[string]map[*conn]struct{}
	presence map[string]map[string]Member
}

// NewHub creates a new websocket hub
func NewHub(cfg *Config) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		oracle: cfg.Oracle,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from a separate frontend origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		rooms:    make(map[string]map[*conn]struct{}),
		presence: make(map[string]map[string]Member),
	}, nil
}

// ServeHTTP upgrades the request and runs the connection until it
// drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := newConn(h, ws)
	c.sendEvent(EventConnected, map[string]string{"status": "ok"})

	go c.writePump()
	c.readPump()
}

// Broadcast pushes a server-side event to every connection in the
// session room.
func (h *Hub) Broadcast(sessionID, event string, data interface{}) error {
	msg, err := newEnvelope(event, data)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeInternal, "failed to encode event")
	}
	h.broadcastRaw(sessionID, msg, nil)
	return nil
}

// Presence returns a snapshot of the session's member list.
func (h *Hub) Presence(sessionID string) []Member {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := make([]Member, 0, len(h.presence[sessionID]))
	for _, m := range h.presence[sessionID] {
		members = append(members, m)
	}
	return members
}

func (h *Hub) broadcastRaw(sessionID string, msg []byte, skip *conn) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[sessionID] {
		if c == skip {
			continue
		}
		c.enqueue(msg)
	}
}

func (h *Hub) join(c *conn, sessionID, playerID, playerName string) {
	h.mu.Lock()
	if h.rooms[sessionID] == nil {
		h.rooms[sessionID] = make(map[*conn]struct{})
	}
	h.rooms[sessionID][c] = struct{}{}
	if h.presence[sessionID] == nil {
		h.presence[sessionID] = make(map[string]Member)
	}
	h.presence[sessionID][playerID] = Member{
		PlayerID:   playerID,
		PlayerName: playerName,
		Online:     true,
	}
	h.mu.Unlock()

	c.sessionID = sessionID
	c.playerID = playerID
	c.playerName = playerName
}

// remove drops the connection from its room and presence entry. The
// returned flag reports whether the player was actually tracked, so
// callers only announce departures once.
func (h *Hub) remove(c *conn) bool {
	if c.sessionID == "" {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[c.sessionID]
	if !ok {
		return false
	}
	if _, ok := room[c]; !ok {
		return false
	}

	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.sessionID)
	}
	if players, ok := h.presence[c.sessionID]; ok {
		delete(players, c.playerID)
		if len(players) == 0 {
			delete(h.presence, c.sessionID)
		}
	}
	return true
}
