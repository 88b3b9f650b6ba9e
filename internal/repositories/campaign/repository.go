// Package campaign provides persistence for campaign documents.
package campaign

//go:generate mockgen -destination=mock/mock_repository.go -package=campaignmock github.com/greymere/keeper-api/internal/repositories/campaign Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines campaign persistence.
type Repository interface {
	// Create stores a new campaign and indexes it under its realm.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a campaign by ID.
	// Returns errors.NotFound if the campaign doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a campaign document.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a campaign and de-indexes it from its realm.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByRealm returns a realm's campaigns.
	ListByRealm(ctx context.Context, input ListByRealmInput) (*ListByRealmOutput, error)

	// AppendChapterToArc adds a chapter id to the campaign's story arc.
	AppendChapterToArc(ctx context.Context, input AppendChapterToArcInput) (*AppendChapterToArcOutput, error)

	// RemoveChapterFromArc removes a chapter id from the campaign's story arc.
	RemoveChapterFromArc(ctx context.Context, input RemoveChapterFromArcInput) (*RemoveChapterFromArcOutput, error)
}

// CreateInput defines the input for creating a campaign
type CreateInput struct {
	Campaign *entities.Campaign
}

// CreateOutput defines the output for creating a campaign
type CreateOutput struct {
	Campaign *entities.Campaign
}

// GetInput defines the input for getting a campaign
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a campaign
type GetOutput struct {
	Campaign *entities.Campaign
}

// UpdateInput defines the input for updating a campaign
type UpdateInput struct {
	Campaign *entities.Campaign
}

// UpdateOutput defines the output for updating a campaign
type UpdateOutput struct {
	Campaign *entities.Campaign
}

// DeleteInput defines the input for deleting a campaign
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a campaign
type DeleteOutput struct{}

// ListByRealmInput defines the input for listing a realm's campaigns
type ListByRealmInput struct {
	RealmID string
}

// ListByRealmOutput defines the output for listing a realm's campaigns
type ListByRealmOutput struct {
	Campaigns []*entities.Campaign
}

// AppendChapterToArcInput adds a chapter to the story arc
type AppendChapterToArcInput struct {
	CampaignID string
	ChapterID  string
	Change     entities.Change
}

// AppendChapterToArcOutput returns the updated campaign
type AppendChapterToArcOutput struct {
	Campaign *entities.Campaign
}

// RemoveChapterFromArcInput removes a chapter from the story arc
type RemoveChapterFromArcInput struct {
	CampaignID string
	ChapterID  string
	Change     entities.Change
}

// RemoveChapterFromArcOutput returns the updated campaign
type RemoveChapterFromArcOutput struct {
	Campaign *entities.Campaign
}
