// Package world provides persistence for world documents. Worlds live
// in the shared system store, not the gamerecords store.
package world

//go:generate mockgen -destination=mock/mock_repository.go -package=worldmock github.com/greymere/keeper-api/internal/repositories/world Repository

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// Repository defines world persistence.
type Repository interface {
	// Create stores a new world.
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a world by ID.
	// Returns errors.NotFound if the world doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces a world document.
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete removes a world.
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns all worlds.
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// CreateInput defines the input for creating a world
type CreateInput struct {
	World *entities.World
}

// CreateOutput defines the output for creating a world
type CreateOutput struct {
	World *entities.World
}

// GetInput defines the input for getting a world
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a world
type GetOutput struct {
	World *entities.World
}

// UpdateInput defines the input for updating a world
type UpdateInput struct {
	World *entities.World
}

// UpdateOutput defines the output for updating a world
type UpdateOutput struct {
	World *entities.World
}

// DeleteInput defines the input for deleting a world
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a world
type DeleteOutput struct{}

// ListInput defines the input for listing worlds
type ListInput struct{}

// ListOutput defines the output for listing worlds
type ListOutput struct {
	Worlds []*entities.World
}
