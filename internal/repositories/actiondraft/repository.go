// Package actiondraft provides persistence for per-player action
// drafts. Drafts are upsert-only scratch state keyed by session and
// player, cleared when the turn they fed is submitted.
package actiondraft

//go:generate mockgen -destination=mock/mock_repository.go -package=actiondraftmock github.com/greymere/keeper-api/internal/repositories/actiondraft Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines action draft persistence.
type Repository interface {
	// Upsert writes a draft, replacing any existing draft for the same
	// session and player.
	Upsert(ctx context.Context, input UpsertInput) (*UpsertOutput, error)

	// Get retrieves a player's draft within a session.
	// Returns errors.NotFound if no draft exists
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// ListBySession returns all drafts in a session.
	ListBySession(ctx context.Context, input ListBySessionInput) (*ListBySessionOutput, error)

	// Delete removes a player's draft.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ClearSession removes every draft in a session.
	ClearSession(ctx context.Context, input ClearSessionInput) (*ClearSessionOutput, error)
}

// UpsertInput defines the input for writing a draft
type UpsertInput struct {
	Draft *entities.ActionDraft
}

// UpsertOutput defines the output for writing a draft
type UpsertOutput struct {
	Draft *entities.ActionDraft
}

// GetInput defines the input for getting a draft
type GetInput struct {
	SessionID string
	PlayerID  string
}

// GetOutput defines the output for getting a draft
type GetOutput struct {
	Draft *entities.ActionDraft
}

// ListBySessionInput defines the input for listing a session's drafts
type ListBySessionInput struct {
	SessionID string
}

// ListBySessionOutput defines the output for listing a session's drafts
type ListBySessionOutput struct {
	Drafts []*entities.ActionDraft
}

// DeleteInput defines the input for deleting a draft
type DeleteInput struct {
	SessionID string
	PlayerID  string
}

// DeleteOutput defines the output for deleting a draft
type DeleteOutput struct{}

// ClearSessionInput defines the input for clearing a session's drafts
type ClearSessionInput struct {
	SessionID string
}

// ClearSessionOutput reports how many drafts were removed
type ClearSessionOutput struct {
	Removed int
}
