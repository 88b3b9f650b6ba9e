package assembly

//go:generate mockgen -destination=mock/mock_lore.go -package=assemblymock github.com/greymere/keeper-api/internal/engine/assembly LoreProvider

import (
	"context"

	"github.com/greymere/keeper-api/internal/entities"
)

// LoreProvider retrieves lore passages relevant to the current actions.
// The default wiring is NoopLore until a retrieval backend lands.
type LoreProvider interface {
	Fetch(ctx context.Context, actions []entities.Action, limit int) ([]LoreChunk, error)
}

// NoopLore returns no lore.
type NoopLore struct{}

// Fetch implements LoreProvider.
func (NoopLore) Fetch(_ context.Context, _ []entities.Action, _ int) ([]LoreChunk, error) {
	return nil, nil
}
