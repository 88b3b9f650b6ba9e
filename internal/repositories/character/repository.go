// Package character provides persistence for player character
// documents.
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/greymere/keeper-api/internal/repositories/character Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines character persistence.
type Repository interface {
	// Create stores a new character and indexes it under its realm.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by ID.
	// Returns errors.NotFound if the character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// GetMany retrieves characters by id, skipping missing ones.
	GetMany(ctx context.Context, input GetManyInput) (*GetManyOutput, error)

	// Update replaces a character document.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a character and de-indexes it from its realm.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByRealm returns a realm's characters.
	ListByRealm(ctx context.Context, input ListByRealmInput) (*ListByRealmOutput, error)
}

// CreateInput defines the input for creating a character
type CreateInput struct {
	Character *entities.Character
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	Character *entities.Character
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *entities.Character
}

// GetManyInput defines the bulk fetch input
type GetManyInput struct {
	IDs []string
}

// GetManyOutput holds the found characters in input order
type GetManyOutput struct {
	Characters []*entities.Character
}

// UpdateInput defines the input for updating a character
type UpdateInput struct {
	Character *entities.Character
}

// UpdateOutput defines the output for updating a character
type UpdateOutput struct {
	Character *entities.Character
}

// DeleteInput defines the input for deleting a character
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a character
type DeleteOutput struct{}

// ListByRealmInput defines the input for listing a realm's characters
type ListByRealmInput struct {
	RealmID string
}

// ListByRealmOutput defines the output for listing a realm's characters
type ListByRealmOutput struct {
	Characters []*entities.Character
}
