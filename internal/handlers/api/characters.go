package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/repositories/character"
	"github.com/greymere/keeper-api/internal/repositories/realm"
)

func (h *Handler) listCharacters(w http.ResponseWriter, r *http.Request) {
	realmID, err := requiredQuery(r, "realm_id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	out, err := h.characterRepo.ListByRealm(r.Context(), character.ListByRealmInput{RealmID: realmID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	characters := out.Characters
	if characters == nil {
		characters = []*entities.Character{}
	}
	h.respond(w, http.StatusOK, characters)
}

func (h *Handler) createCharacter(w http.ResponseWriter, r *http.Request) {
	var c entities.Character
	if err := h.decode(r, &c); err != nil {
		h.respondError(w, err)
		return
	}
	if c.RealmID == "" {
		h.respondError(w, errors.InvalidArgument("realm_id is required"))
		return
	}
	if _, err := h.realmRepo.Get(r.Context(), realm.GetInput{ID: c.RealmID}); err != nil {
		h.respondError(w, err)
		return
	}

	c.ID = h.characterIDs.Generate()
	c.Kind = entities.KindPC
	if c.Controller.Mode == "" {
		c.Controller.Mode = entities.ControlPlayer
	}
	c.Meta.CreatedAt = h.clock.Now()
	c.Changes = []entities.Change{h.change(c.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.characterRepo.Create(r.Context(), character.CreateInput{Character: &c})
	if err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.realmRepo.AddCharacter(r.Context(), realm.AddCharacterInput{
		RealmID:     c.RealmID,
		CharacterID: c.ID,
		Change:      h.change(c.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.Character)
}

func (h *Handler) getCharacter(w http.ResponseWriter, r *http.Request) {
	out, err := h.characterRepo.Get(r.Context(), character.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Character)
}

func (h *Handler) updateCharacter(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.characterRepo.Get(r.Context(), character.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	c := existing.Character
	if err := h.decode(r, c); err != nil {
		h.respondError(w, err)
		return
	}
	c.ID = id
	c.Kind = entities.KindPC
	c.Changes = append(c.Changes, h.change(c.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.characterRepo.Update(r.Context(), character.UpdateInput{Character: c})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Character)
}

func (h *Handler) deleteCharacter(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.characterRepo.Get(r.Context(), character.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.characterRepo.Delete(r.Context(), character.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.realmRepo.RemoveCharacter(r.Context(), realm.RemoveCharacterInput{
		RealmID:     existing.Character.RealmID,
		CharacterID: id,
		Change:      h.change(existing.Character.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.logger.Warn("failed to remove character from realm", "character_id", id,
			"realm_id", existing.Character.RealmID, "error", err)
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
