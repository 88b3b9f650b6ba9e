package realtime

import "encoding/json"

// Client-to-server events.
const (
	EventJoinSession          = "join_session"
	EventLeaveSession         = "leave_session"
	EventActionDraftCreated   = "action_draft_created"
	EventActionDraftUpdated   = "action_draft_updated"
	EventActionDraftDeleted   = "action_draft_deleted"
	EventActionDraftReordered = "action_draft_reordered"
	EventReadyStateChanged    = "ready_state_changed"
	EventTurnSubmitted        = "turn_submitted"
	EventMasterTransferred    = "master_transferred"
	EventRealmChatMessage     = "realm_chat_message"
	EventOracleQuestion       = "oracle_question"
)

// Server-to-client events.
const (
	EventConnected          = "connected"
	EventError              = "error"
	EventSessionJoined      = "session_joined"
	EventPlayerJoined       = "player_joined"
	EventPlayerLeft         = "player_left"
	EventPlayerDisconnected = "player_disconnected"
	EventOracleAnswer       = "oracle_answer"
	EventTurnProcessing     = "turn_processing"
	EventTurnCompleted      = "turn_completed"
	EventTurnFailed         = "turn_failed"
	EventSceneCreated       = "scene_created"
	EventChapterCreated     = "chapter_created"
)

// Envelope is the wire format for every websocket message in both
// directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func newEnvelope(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
