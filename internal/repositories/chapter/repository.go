// Package chapter provides persistence for chapter documents.
package chapter

//go:generate mockgen -destination=mock/mock_repository.go -package=chaptermock github.com/greymere/keeper-api/internal/repositories/chapter Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines chapter persistence.
type Repository interface {
	// Create stores a new chapter and indexes it under its campaign.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a chapter by ID.
	// Returns errors.NotFound if the chapter doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a chapter document.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a chapter and de-indexes it from its campaign.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByCampaign returns a campaign's chapters ordered by chapter
	// order.
	ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error)

	// AddScene appends a scene id to the chapter's scene list.
	AddScene(ctx context.Context, input AddSceneInput) (*AddSceneOutput, error)

	// RemoveScene removes a scene id from the chapter's scene list.
	RemoveScene(ctx context.Context, input RemoveSceneInput) (*RemoveSceneOutput, error)

	// Close marks the chapter completed and records its summary.
	// Returns errors.FailedPrecondition if the chapter is already completed
	Close(ctx context.Context, input CloseInput) (*CloseOutput, error)
}

// CreateInput defines the input for creating a chapter
type CreateInput struct {
	Chapter *entities.Chapter
}

// CreateOutput defines the output for creating a chapter
type CreateOutput struct {
	Chapter *entities.Chapter
}

// GetInput defines the input for getting a chapter
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a chapter
type GetOutput struct {
	Chapter *entities.Chapter
}

// UpdateInput defines the input for updating a chapter
type UpdateInput struct {
	Chapter *entities.Chapter
}

// UpdateOutput defines the output for updating a chapter
type UpdateOutput struct {
	Chapter *entities.Chapter
}

// DeleteInput defines the input for deleting a chapter
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a chapter
type DeleteOutput struct{}

// ListByCampaignInput defines the input for listing a campaign's chapters
type ListByCampaignInput struct {
	CampaignID string
}

// ListByCampaignOutput defines the output for listing a campaign's chapters
type ListByCampaignOutput struct {
	Chapters []*entities.Chapter
}

// AddSceneInput appends a scene reference to a chapter
type AddSceneInput struct {
	ChapterID string
	SceneID   string
	Change    entities.Change
}

// AddSceneOutput returns the updated chapter
type AddSceneOutput struct {
	Chapter *entities.Chapter
}

// RemoveSceneInput removes a scene reference from a chapter
type RemoveSceneInput struct {
	ChapterID string
	SceneID   string
	Change    entities.Change
}

// RemoveSceneOutput returns the updated chapter
type RemoveSceneOutput struct {
	Chapter *entities.Chapter
}

// CloseInput completes a chapter with its closing summary
type CloseInput struct {
	ID      string
	Summary string
	Change  entities.Change
}

// CloseOutput returns the completed chapter
type CloseOutput struct {
	Chapter *entities.Chapter
}
