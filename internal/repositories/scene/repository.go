// Package scene provides persistence for scene documents.
package scene

//go:generate mockgen -destination=mock/mock_repository.go -package=scenemock github.com/greymere/keeper-api/internal/repositories/scene Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines scene persistence.
type Repository interface {
	// Create stores a new scene and indexes it under its chapter.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a scene by ID.
	// Returns errors.NotFound if the scene doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a scene document.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a scene and de-indexes it from its chapter.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByChapter returns a chapter's scenes in creation order.
	ListByChapter(ctx context.Context, input ListByChapterInput) (*ListByChapterOutput, error)

	// AddTurn appends a turn id to the scene's turn list.
	AddTurn(ctx context.Context, input AddTurnInput) (*AddTurnOutput, error)

	// RemoveTurn removes a turn id from the scene's turn list.
	RemoveTurn(ctx context.Context, input RemoveTurnInput) (*RemoveTurnOutput, error)

	// Close marks the scene completed and records its summary.
	// Returns errors.FailedPrecondition if the scene is already completed
	Close(ctx context.Context, input CloseInput) (*CloseOutput, error)
}

// CreateInput defines the input for creating a scene
type CreateInput struct {
	Scene *entities.Scene
}

// CreateOutput defines the output for creating a scene
type CreateOutput struct {
	Scene *entities.Scene
}

// GetInput defines the input for getting a scene
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a scene
type GetOutput struct {
	Scene *entities.Scene
}

// UpdateInput defines the input for updating a scene
type UpdateInput struct {
	Scene *entities.Scene
}

// UpdateOutput defines the output for updating a scene
type UpdateOutput struct {
	Scene *entities.Scene
}

// DeleteInput defines the input for deleting a scene
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a scene
type DeleteOutput struct{}

// ListByChapterInput defines the input for listing a chapter's scenes
type ListByChapterInput struct {
	ChapterID string
}

// ListByChapterOutput defines the output for listing a chapter's scenes
type ListByChapterOutput struct {
	Scenes []*entities.Scene
}

// AddTurnInput appends a turn reference to a scene
type AddTurnInput struct {
	SceneID string
	TurnID  string
	Change  entities.Change
}

// AddTurnOutput returns the updated scene
type AddTurnOutput struct {
	Scene *entities.Scene
}

// RemoveTurnInput removes a turn reference from a scene
type RemoveTurnInput struct {
	SceneID string
	TurnID  string
	Change  entities.Change
}

// RemoveTurnOutput returns the updated scene
type RemoveTurnOutput struct {
	Scene *entities.Scene
}

// CloseInput completes a scene with its closing summary
type CloseInput struct {
	ID      string
	Summary string
	Change  entities.Change
}

// CloseOutput returns the completed scene
type CloseOutput struct {
	Scene *entities.Scene
}
