package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/repositories/player"
)

func (h *Handler) listPlayers(w http.ResponseWriter, r *http.Request) {
	out, err := h.playerRepo.List(r.Context(), player.ListInput{})
	if err != nil {
		h.respondError(w, err)
		return
	}
	players := out.Players
	if players == nil {
		players = []*entities.Player{}
	}
	h.respond(w, http.StatusOK, players)
}

func (h *Handler) createPlayer(w http.ResponseWriter, r *http.Request) {
	var p entities.Player
	if err := h.decode(r, &p); err != nil {
		h.respondError(w, err)
		return
	}
	p.ID = h.playerIDs.Generate()
	p.Kind = entities.KindPlayer
	p.Meta.CreatedAt = h.clock.Now()
	p.Changes = []entities.Change{h.change(p.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.playerRepo.Create(r.Context(), player.CreateInput{Player: &p})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.Player)
}

func (h *Handler) getPlayer(w http.ResponseWriter, r *http.Request) {
	out, err := h.playerRepo.Get(r.Context(), player.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Player)
}

func (h *Handler) updatePlayer(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.playerRepo.Get(r.Context(), player.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	p := existing.Player
	if err := h.decode(r, p); err != nil {
		h.respondError(w, err)
		return
	}
	p.ID = id
	p.Kind = entities.KindPlayer
	p.Changes = append(p.Changes, h.change(p.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.playerRepo.Update(r.Context(), player.UpdateInput{Player: p})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Player)
}

func (h *Handler) deletePlayer(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, err := h.playerRepo.Delete(r.Context(), player.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
