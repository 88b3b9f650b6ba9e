// Package entities defines the persisted document types of the campaign
// store. Every document carries creation metadata and an append-only
// audit trail of Change records; repositories own serialization, these
// types own shape.
package entities

import "time"

// Kind classifies a persisted document.
type Kind string

// Document kinds
const (
	KindWorld       Kind = "world"
	KindRealm       Kind = "realm"
	KindCampaign    Kind = "campaign"
	KindChapter     Kind = "chapter"
	KindScene       Kind = "scene"
	KindTurn        Kind = "turn"
	KindSession     Kind = "session"
	KindPC          Kind = "pc"
	KindNPC         Kind = "npc"
	KindPlayer      Kind = "player"
	KindActionDraft Kind = "action_draft"
)

// Meta records who created a document and when.
type Meta struct {
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Change is one entry in a document's append-only audit trail.
type Change struct {
	By   string    `json:"by"`
	At   time.Time `json:"at"`
	Type string    `json:"type,omitempty"`
}

// Change types recorded in audit trails.
const (
	ChangeCreated       = "created"
	ChangeUpdated       = "updated"
	ChangeSubmitted     = "submitted"
	ChangeProcessing    = "processing"
	ChangeReactionAdded = "reaction_added"
	ChangeFailed        = "failed"
	ChangeCompleted     = "completed"
)
