package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/greymere/keeper-api/internal/clients/narrator"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 32
)

type conn struct {
	hub  *Hub
	ws   *websocket.Conn
	send chan []byte

	sessionID  string
	playerID   string
	playerName string
}

func newConn(h *Hub, ws *websocket.Conn) *conn {
	return &conn{
		hub:  h,
		ws:   ws,
		send: make(chan []byte, sendBuffer),
	}
}

// enqueue hands a message to the write pump. A full buffer drops the
// message rather than blocking the broadcaster on a slow consumer.
func (c *conn) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		c.hub.logger.Warn("dropping event for slow websocket consumer",
			"session_id", c.sessionID, "player_id", c.playerID)
	}
}

func (c *conn) sendEvent(event string, data interface{}) {
	msg, err := newEnvelope(event, data)
	if err != nil {
		c.hub.logger.Error("failed to encode websocket event", "event", event, "error", err)
		return
	}
	c.enqueue(msg)
}

func (c *conn) readPump() {
	defer func() {
		c.disconnect()
		close(c.send)
		_ = c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.sendEvent(EventError, map[string]string{"message": "malformed message"})
			continue
		}
		c.handle(env)
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *conn) handle(env Envelope) {
	switch env.Event {
	case EventJoinSession:
		c.handleJoin(env.Data)
	case EventLeaveSession:
		c.handleLeave()
	case EventActionDraftCreated, EventActionDraftUpdated,
		EventActionDraftDeleted, EventActionDraftReordered,
		EventReadyStateChanged, EventTurnSubmitted, EventRealmChatMessage:
		// Peer edits fan out to everyone else at the table.
		c.rebroadcast(env, true)
	case EventMasterTransferred:
		c.rebroadcast(env, false)
	case EventOracleQuestion:
		c.handleOracleQuestion(env.Data)
	default:
		c.sendEvent(EventError, map[string]string{"message": "unknown event: " + env.Event})
	}
}

type joinPayload struct {
	SessionID  string `json:"session_id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
}

func (c *conn) handleJoin(data json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.SessionID == "" || p.PlayerID == "" {
		c.sendEvent(EventError, map[string]string{"message": "missing session_id or player_id"})
		return
	}

	c.hub.join(c, p.SessionID, p.PlayerID, p.PlayerName)

	msg, err := newEnvelope(EventPlayerJoined, map[string]string{
		"player_id":   p.PlayerID,
		"player_name": p.PlayerName,
		"session_id":  p.SessionID,
	})
	if err == nil {
		c.hub.broadcastRaw(p.SessionID, msg, c)
	}

	c.sendEvent(EventSessionJoined, map[string]interface{}{
		"session_id":     p.SessionID,
		"players_online": c.hub.Presence(p.SessionID),
	})

	c.hub.logger.Info("player joined session",
		"session_id", p.SessionID, "player_id", p.PlayerID)
}

func (c *conn) handleLeave() {
	sessionID, playerID := c.sessionID, c.playerID
	if !c.hub.remove(c) {
		return
	}
	c.sessionID = ""

	_ = c.hub.Broadcast(sessionID, EventPlayerLeft, map[string]string{
		"player_id":  playerID,
		"session_id": sessionID,
	})
}

func (c *conn) disconnect() {
	sessionID, playerID := c.sessionID, c.playerID
	if !c.hub.remove(c) {
		return
	}

	_ = c.hub.Broadcast(sessionID, EventPlayerDisconnected, map[string]string{
		"player_id":  playerID,
		"session_id": sessionID,
	})
}

// rebroadcast forwards a client event to the sender's session room,
// optionally excluding the sender.
func (c *conn) rebroadcast(env Envelope, skipSender bool) {
	if c.sessionID == "" {
		c.sendEvent(EventError, map[string]string{"message": "join a session first"})
		return
	}

	msg, err := json.Marshal(env)
	if err != nil {
		return
	}
	skip := c
	if !skipSender {
		skip = nil
	}
	c.hub.broadcastRaw(c.sessionID, msg, skip)
}

type oracleQuestionPayload struct {
	PlayerID string `json:"player_id"`
	Question string `json:"question"`
}

// handleOracleQuestion answers privately: only the asking connection
// sees the response.
func (c *conn) handleOracleQuestion(data json.RawMessage) {
	if c.hub.oracle == nil {
		c.sendEvent(EventError, map[string]string{"message": "oracle is not available"})
		return
	}

	var p oracleQuestionPayload
	if err := json.Unmarshal(data, &p); err != nil || p.Question == "" {
		c.sendEvent(EventError, map[string]string{"message": "missing question"})
		return
	}

	out, err := c.hub.oracle.AskRules(context.Background(), &narrator.AskRulesInput{
		PlayerID: p.PlayerID,
		Question: p.Question,
	})
	if err != nil {
		c.hub.logger.Warn("oracle question failed", "player_id", p.PlayerID, "error", err)
		c.sendEvent(EventError, map[string]string{"message": "oracle is not answering"})
		return
	}

	c.sendEvent(EventOracleAnswer, out)
}
