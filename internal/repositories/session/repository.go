// Package session provides persistence for play session documents.
package session

//go:generate mockgen -destination=mock/mock_repository.go -package=sessionmock github.com/greymere/keeper-api/internal/repositories/session Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines session persistence.
type Repository interface {
	// Create stores a new session and indexes it under its campaign.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a session by ID.
	// Returns errors.NotFound if the session doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a session document.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a session and de-indexes it from its campaign.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByCampaign returns a campaign's sessions.
	ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error)
}

// CreateInput defines the input for creating a session
type CreateInput struct {
	Session *entities.Session
}

// CreateOutput defines the output for creating a session
type CreateOutput struct {
	Session *entities.Session
}

// GetInput defines the input for getting a session
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a session
type GetOutput struct {
	Session *entities.Session
}

// UpdateInput defines the input for updating a session
type UpdateInput struct {
	Session *entities.Session
}

// UpdateOutput defines the output for updating a session
type UpdateOutput struct {
	Session *entities.Session
}

// DeleteInput defines the input for deleting a session
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a session
type DeleteOutput struct{}

// ListByCampaignInput defines the input for listing a campaign's sessions
type ListByCampaignInput struct {
	CampaignID string
}

// ListByCampaignOutput defines the output for listing a campaign's sessions
type ListByCampaignOutput struct {
	Sessions []*entities.Session
}
