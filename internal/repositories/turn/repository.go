// Package turn provides persistence for turn documents.
package turn

//go:generate mockgen -destination=mock/mock_repository.go -package=turnmock github.com/greymere/keeper-api/internal/repositories/turn Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines turn persistence. The scene's ordered turn index is
// maintained here alongside the documents; both ride one pipeline per
// mutation, but cross-key atomicity is best-effort.
type Repository interface {
	// Create stores a new turn and indexes it under its scene.
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if a turn with the same ID exists
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a turn by ID.
	// Returns errors.NotFound if the turn doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a turn document. Callers enforce the draft-only
	// mutation rule; this is a raw write.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a turn and de-indexes it from its scene.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByScene returns a scene's turns ordered by turn order.
	ListByScene(ctx context.Context, input ListBySceneInput) (*ListBySceneOutput, error)

	// ListPrevious returns up to Limit turns with order strictly below
	// BeforeOrder, newest first.
	ListPrevious(ctx context.Context, input ListPreviousInput) (*ListPreviousOutput, error)

	// CountCompleted counts a scene's completed turns.
	CountCompleted(ctx context.Context, input CountCompletedInput) (*CountCompletedOutput, error)

	// TransitionStatus is a compare-and-swap on the status field: the
	// turn moves to the target status only if its current status is in
	// From, otherwise errors.FailedPrecondition. A lost race against a
	// concurrent writer returns errors.Aborted.
	TransitionStatus(ctx context.Context, input TransitionStatusInput) (*TransitionStatusOutput, error)

	// SetReaction attaches the reaction and completes the turn.
	SetReaction(ctx context.Context, input SetReactionInput) (*SetReactionOutput, error)

	// SetFailed marks the turn failed with the upstream error message.
	SetFailed(ctx context.Context, input SetFailedInput) (*SetFailedOutput, error)

	// AppendChange records an audit entry without touching anything else.
	AppendChange(ctx context.Context, input AppendChangeInput) (*AppendChangeOutput, error)
}

// CreateInput defines the input for creating a turn
type CreateInput struct {
	Turn *entities.Turn
}

// CreateOutput defines the output for creating a turn
type CreateOutput struct {
	Turn *entities.Turn
}

// GetInput defines the input for getting a turn
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a turn
type GetOutput struct {
	Turn *entities.Turn
}

// UpdateInput defines the input for updating a turn
type UpdateInput struct {
	Turn *entities.Turn
}

// UpdateOutput defines the output for updating a turn
type UpdateOutput struct {
	Turn *entities.Turn
}

// DeleteInput defines the input for deleting a turn
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a turn
type DeleteOutput struct{}

// ListBySceneInput defines the input for listing a scene's turns
type ListBySceneInput struct {
	SceneID string
}

// ListBySceneOutput defines the output for listing a scene's turns
type ListBySceneOutput struct {
	Turns []*entities.Turn
}

// ListPreviousInput defines the window query for context assembly
type ListPreviousInput struct {
	SceneID     string
	BeforeOrder int
	Limit       int
}

// ListPreviousOutput holds the window, newest first
type ListPreviousOutput struct {
	Turns []*entities.Turn
}

// CountCompletedInput defines the input for counting completed turns
type CountCompletedInput struct {
	SceneID string
}

// CountCompletedOutput holds the completed turn count
type CountCompletedOutput struct {
	Count int
}

// TransitionStatusInput defines the conditional status update. When
// SessionID is non-empty it is recorded on the turn as part of the same
// write, so the completion callback can address the session room later.
type TransitionStatusInput struct {
	ID        string
	From      []entities.TurnStatus
	To        entities.TurnStatus
	Change    entities.Change
	SessionID string
}

// TransitionStatusOutput returns the updated turn
type TransitionStatusOutput struct {
	Turn *entities.Turn
}

// SetReactionInput defines the completion write
type SetReactionInput struct {
	ID       string
	Reaction entities.Reaction
	Change   entities.Change
}

// SetReactionOutput returns the updated turn
type SetReactionOutput struct {
	Turn *entities.Turn
}

// SetFailedInput defines the failure write
type SetFailedInput struct {
	ID     string
	Error  string
	Change entities.Change
}

// SetFailedOutput returns the updated turn
type SetFailedOutput struct {
	Turn *entities.Turn
}

// AppendChangeInput defines the audit append
type AppendChangeInput struct {
	ID     string
	Change entities.Change
}

// AppendChangeOutput returns the updated turn
type AppendChangeOutput struct {
	Turn *entities.Turn
}
