package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/repositories/realm"
	"github.com/greymere/keeper-api/internal/repositories/world"
)

func (h *Handler) listRealms(w http.ResponseWriter, r *http.Request) {
	worldID, err := requiredQuery(r, "world_id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	out, err := h.realmRepo.ListByWorld(r.Context(), realm.ListByWorldInput{WorldID: worldID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	realms := out.Realms
	if realms == nil {
		realms = []*entities.Realm{}
	}
	h.respond(w, http.StatusOK, realms)
}

func (h *Handler) createRealm(w http.ResponseWriter, r *http.Request) {
	var rm entities.Realm
	if err := h.decode(r, &rm); err != nil {
		h.respondError(w, err)
		return
	}
	if rm.WorldID == "" {
		h.respondError(w, errors.InvalidArgument("world_id is required"))
		return
	}
	if _, err := h.worldRepo.Get(r.Context(), world.GetInput{ID: rm.WorldID}); err != nil {
		h.respondError(w, err)
		return
	}

	rm.ID = h.realmIDs.Generate()
	rm.Kind = entities.KindRealm
	if rm.Players == nil {
		rm.Players = []entities.PlayerRef{}
	}
	if rm.Characters == nil {
		rm.Characters = []string{}
	}
	if rm.Campaigns == nil {
		rm.Campaigns = []string{}
	}
	rm.Meta.CreatedAt = h.clock.Now()
	rm.Changes = []entities.Change{h.change(rm.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.realmRepo.Create(r.Context(), realm.CreateInput{Realm: &rm})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.Realm)
}

func (h *Handler) getRealm(w http.ResponseWriter, r *http.Request) {
	out, err := h.realmRepo.Get(r.Context(), realm.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Realm)
}

func (h *Handler) updateRealm(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.realmRepo.Get(r.Context(), realm.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	rm := existing.Realm
	if err := h.decode(r, rm); err != nil {
		h.respondError(w, err)
		return
	}
	rm.ID = id
	rm.Kind = entities.KindRealm
	rm.Changes = append(rm.Changes, h.change(rm.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.realmRepo.Update(r.Context(), realm.UpdateInput{Realm: rm})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Realm)
}

func (h *Handler) deleteRealm(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, err := h.realmRepo.Delete(r.Context(), realm.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
