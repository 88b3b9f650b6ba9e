// Package npc provides persistence for narrator-driven character
// documents.
package npc

//go:generate mockgen -destination=mock/mock_repository.go -package=npcmock github.com/greymere/keeper-api/internal/repositories/npc Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines NPC persistence.
type Repository interface {
	// Create stores a new NPC and indexes it under its campaign.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves an NPC by ID.
	// Returns errors.NotFound if the NPC doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetMany retrieves NPCs by id, skipping missing ones.
	GetMany(ctx context.Context, input GetManyInput) (*GetManyOutput, error)

	// Update replaces an NPC document.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes an NPC and de-indexes it from its campaign.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByCampaign returns a campaign's NPCs.
	ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error)
}

// CreateInput defines the input for creating an NPC
type CreateInput struct {
	NPC *entities.NPC
}

// CreateOutput defines the output for creating an NPC
type CreateOutput struct {
	NPC *entities.NPC
}

// GetInput defines the input for getting an NPC
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an NPC
type GetOutput struct {
	NPC *entities.NPC
}

// GetManyInput defines the bulk fetch input
type GetManyInput struct {
	IDs []string
}

// GetManyOutput holds the found NPCs in input order
type GetManyOutput struct {
	NPCs []*entities.NPC
}

// UpdateInput defines the input for updating an NPC
type UpdateInput struct {
	NPC *entities.NPC
}

// UpdateOutput defines the output for updating an NPC
type UpdateOutput struct {
	NPC *entities.NPC
}

// DeleteInput defines the input for deleting an NPC
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting an NPC
type DeleteOutput struct{}

// ListByCampaignInput defines the input for listing a campaign's NPCs
type ListByCampaignInput struct {
	CampaignID string
}

// ListByCampaignOutput defines the output for listing a campaign's NPCs
type ListByCampaignOutput struct {
	NPCs []*entities.NPC
}
