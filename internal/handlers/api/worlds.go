package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/repositories/world"
)

// change builds an audit trail entry stamped with the handler clock.
func (h *Handler) change(by, changeType string) entities.Change {
	return entities.Change{By: by, At: h.clock.Now(), Type: changeType}
}

func (h *Handler) listWorlds(w http.ResponseWriter, r *http.Request) {
	out, err := h.worldRepo.List(r.Context(), world.ListInput{})
	if err != nil {
		h.respondError(w, err)
		return
	}
	worlds := out.Worlds
	if worlds == nil {
		worlds = []*entities.World{}
	}
	h.respond(w, http.StatusOK, worlds)
}

func (h *Handler) createWorld(w http.ResponseWriter, r *http.Request) {
	var wd entities.World
	if err := h.decode(r, &wd); err != nil {
		h.respondError(w, err)
		return
	}
	wd.ID = h.worldIDs.Generate()
	wd.Kind = entities.KindWorld
	wd.Meta.CreatedAt = h.clock.Now()
	wd.Changes = []entities.Change{h.change(wd.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.worldRepo.Create(r.Context(), world.CreateInput{World: &wd})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.World)
}

func (h *Handler) getWorld(w http.ResponseWriter, r *http.Request) {
	out, err := h.worldRepo.Get(r.Context(), world.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.World)
}

func (h *Handler) updateWorld(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.worldRepo.Get(r.Context(), world.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	wd := existing.World
	if err := h.decode(r, wd); err != nil {
		h.respondError(w, err)
		return
	}
	wd.ID = id
	wd.Kind = entities.KindWorld
	wd.Changes = append(wd.Changes, h.change(wd.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.worldRepo.Update(r.Context(), world.UpdateInput{World: wd})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.World)
}

func (h *Handler) deleteWorld(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, err := h.worldRepo.Delete(r.Context(), world.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
