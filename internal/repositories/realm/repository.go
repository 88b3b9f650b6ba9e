// Package realm provides persistence for realm documents.
package realm

//go:generate mockgen -destination=mock/mock_repository.go -package=realmmock github.com/greymere/keeper-api/internal/repositories/realm Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines realm persistence.
type Repository interface {
	// Create stores a new realm and indexes it under its world.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a realm by ID.
	// Returns errors.NotFound if the realm doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a realm document.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a realm and de-indexes it from its world.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByWorld returns a world's realms.
	ListByWorld(ctx context.Context, input ListByWorldInput) (*ListByWorldOutput, error)

	// AddCampaign appends a campaign id to the realm's campaign list.
	AddCampaign(ctx context.Context, input AddCampaignInput) (*AddCampaignOutput, error)

	// RemoveCampaign removes a campaign id from the realm's campaign list.
	RemoveCampaign(ctx context.Context, input RemoveCampaignInput) (*RemoveCampaignOutput, error)

	// AddCharacter appends a character id to the realm's character list.
	AddCharacter(ctx context.Context, input AddCharacterInput) (*AddCharacterOutput, error)

	// RemoveCharacter removes a character id from the realm's character list.
	RemoveCharacter(ctx context.Context, input RemoveCharacterInput) (*RemoveCharacterOutput, error)
}

// CreateInput defines the input for creating a realm
type CreateInput struct {
	Realm *entities.Realm
}

// CreateOutput defines the output for creating a realm
type CreateOutput struct {
	Realm *entities.Realm
}

// GetInput defines the input for getting a realm
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a realm
type GetOutput struct {
	Realm *entities.Realm
}

// UpdateInput defines the input for updating a realm
type UpdateInput struct {
	Realm *entities.Realm
}

// UpdateOutput defines the output for updating a realm
type UpdateOutput struct {
	Realm *entities.Realm
}

// DeleteInput defines the input for deleting a realm
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a realm
type DeleteOutput struct{}

// ListByWorldInput defines the input for listing a world's realms
type ListByWorldInput struct {
	WorldID string
}

// ListByWorldOutput defines the output for listing a world's realms
type ListByWorldOutput struct {
	Realms []*entities.Realm
}

// AddCampaignInput appends a campaign reference to a realm
type AddCampaignInput struct {
	RealmID    string
	CampaignID string
	Change     entities.Change
}

// AddCampaignOutput returns the updated realm
type AddCampaignOutput struct {
	Realm *entities.Realm
}

// RemoveCampaignInput removes a campaign reference from a realm
type RemoveCampaignInput struct {
	RealmID    string
	CampaignID string
	Change     entities.Change
}

// RemoveCampaignOutput returns the updated realm
type RemoveCampaignOutput struct {
	Realm *entities.Realm
}

// AddCharacterInput appends a character reference to a realm
type AddCharacterInput struct {
	RealmID     string
	CharacterID string
	Change      entities.Change
}

// AddCharacterOutput returns the updated realm
type AddCharacterOutput struct {
	Realm *entities.Realm
}

// RemoveCharacterInput removes a character reference from a realm
type RemoveCharacterInput struct {
	RealmID     string
	CharacterID string
	Change      entities.Change
}

// RemoveCharacterOutput returns the updated realm
type RemoveCharacterOutput struct {
	Realm *entities.Realm
}
