package entities

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
)

// GetID implements core.Entity
func (w *World) GetID() string { return w.ID }

// GetType implements core.Entity
func (w *World) GetType() string { return string(KindWorld) }

// GetID implements core.Entity
func (r *Realm) GetID() string { return r.ID }

// GetType implements core.Entity
func (r *Realm) GetType() string { return string(KindRealm) }

// GetID implements core.Entity
func (c *Campaign) GetID() string { return c.ID }

// GetType implements core.Entity
func (c *Campaign) GetType() string { return string(KindCampaign) }

// GetID implements core.Entity
func (c *Chapter) GetID() string { return c.ID }

// GetType implements core.Entity
func (c *Chapter) GetType() string { return string(KindChapter) }

// GetID implements core.Entity
func (s *Scene) GetID() string { return s.ID }

// GetType implements core.Entity
func (s *Scene) GetType() string { return string(KindScene) }

// GetID implements core.Entity
func (t *Turn) GetID() string { return t.ID }

// GetType implements core.Entity
func (t *Turn) GetType() string { return string(KindTurn) }

// GetID implements core.Entity
func (c *Character) GetID() string { return c.ID }

// GetType implements core.Entity
func (c *Character) GetType() string { return string(KindPC) }

// GetID implements core.Entity
func (n *NPC) GetID() string { return n.ID }

// GetType implements core.Entity
func (n *NPC) GetType() string { return string(KindNPC) }

// GetID implements core.Entity
func (s *Session) GetID() string { return s.ID }

// GetType implements core.Entity
func (s *Session) GetType() string { return string(KindSession) }

// Compile-time checks that persisted documents satisfy core.Entity, so
// generic audit and logging helpers can accept any of them.
var (
	_ core.Entity = (*World)(nil)
	_ core.Entity = (*Realm)(nil)
	_ core.Entity = (*Campaign)(nil)
	_ core.Entity = (*Chapter)(nil)
	_ core.Entity = (*Scene)(nil)
	_ core.Entity = (*Turn)(nil)
	_ core.Entity = (*Character)(nil)
	_ core.Entity = (*NPC)(nil)
	_ core.Entity = (*Session)(nil)
)

// LogRef returns the slog fields identifying an entity in log output.
func LogRef(e core.Entity) []any {
	return []any{"entity_id", e.GetID(), "entity_type", e.GetType()}
}
