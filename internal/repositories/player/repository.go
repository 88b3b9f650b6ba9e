// Package player provides persistence for registered players. Players
// live in the shared system store.
package player

//go:generate mockgen -destination=mock/mock_repository.go -package=playermock github.com/greymere/keeper-api/internal/repositories/player Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines player persistence.
type Repository interface {
	// Create stores a new player.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a player by ID.
	// Returns errors.NotFound if the player doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a player document.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a player.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns all players.
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// CreateInput defines the input for creating a player
type CreateInput struct {
	Player *entities.Player
}

// CreateOutput defines the output for creating a player
type CreateOutput struct {
	Player *entities.Player
}

// GetInput defines the input for getting a player
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a player
type GetOutput struct {
	Player *entities.Player
}

// UpdateInput defines the input for updating a player
type UpdateInput struct {
	Player *entities.Player
}

// UpdateOutput defines the output for updating a player
type UpdateOutput struct {
	Player *entities.Player
}

// DeleteInput defines the input for deleting a player
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a player
type DeleteOutput struct{}

// ListInput defines the input for listing players
type ListInput struct{}

// ListOutput defines the output for listing players
type ListOutput struct {
	Players []*entities.Player
}
