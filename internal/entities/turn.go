package entities

// TurnStatus enumerates the turn state machine. Draft is the only state
// permitting action mutation; processing admits at most one in-flight
// generation request.
type TurnStatus string

// Turn statuses
const (
	TurnDraft          TurnStatus = "draft"
	TurnReadyForAgents TurnStatus = "ready_for_agents"
	TurnProcessing     TurnStatus = "processing"
	TurnCompleted      TurnStatus = "completed"
	TurnFailed         TurnStatus = "failed"
)

// Action is one character's contribution to a turn.
type Action struct {
	ActorID         string                 `json:"actor_id"`
	ControllerOwner string                 `json:"controller_owner,omitempty"`
	Speak           string                 `json:"speak,omitempty"`
	Act             string                 `json:"act,omitempty"`
	Appearance      string                 `json:"appearance,omitempty"`
	Emotion         string                 `json:"emotion,omitempty"`
	OOC             string                 `json:"ooc,omitempty"`
	Meta            map[string]interface{} `json:"meta,omitempty"`
}

// Reaction is the narrative response attached when a turn completes.
type Reaction struct {
	Description string `json:"description"`
	Summary     string `json:"summary,omitempty"`
}

// Turn is one round of player actions plus the narrator response within
// a scene. Order is strictly increasing per scene.
type Turn struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	SceneID   string     `json:"scene_id"`
	Order     int        `json:"order"`
	Actions   []Action   `json:"actions"`
	Reaction  *Reaction  `json:"reaction,omitempty"`
	Status    TurnStatus `json:"status"`
	Error     string     `json:"error,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
	Meta      Meta       `json:"meta"`
	Changes   []Change   `json:"changes"`
}
