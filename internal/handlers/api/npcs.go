package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/npc"
)

func (h *Handler) listNPCs(w http.ResponseWriter, r *http.Request) {
	campaignID, err := requiredQuery(r, "campaign_id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	out, err := h.npcRepo.ListByCampaign(r.Context(), npc.ListByCampaignInput{CampaignID: campaignID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	npcs := out.NPCs
	if npcs == nil {
		npcs = []*entities.NPC{}
	}
	h.respond(w, http.StatusOK, npcs)
}

func (h *Handler) createNPC(w http.ResponseWriter, r *http.Request) {
	var n entities.NPC
	if err := h.decode(r, &n); err != nil {
		h.respondError(w, err)
		return
	}
	if n.CampaignID == "" {
		h.respondError(w, errors.InvalidArgument("campaign_id is required"))
		return
	}
	if _, err := h.campaignRepo.Get(r.Context(), campaign.GetInput{ID: n.CampaignID}); err != nil {
		h.respondError(w, err)
		return
	}

	n.ID = h.npcIDs.Generate()
	n.Kind = entities.KindNPC
	n.Meta.CreatedAt = h.clock.Now()
	n.Changes = []entities.Change{h.change(n.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.npcRepo.Create(r.Context(), npc.CreateInput{NPC: &n})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.NPC)
}

func (h *Handler) getNPC(w http.ResponseWriter, r *http.Request) {
	out, err := h.npcRepo.Get(r.Context(), npc.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.NPC)
}

func (h *Handler) updateNPC(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.npcRepo.Get(r.Context(), npc.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	n := existing.NPC
	if err := h.decode(r, n); err != nil {
		h.respondError(w, err)
		return
	}
	n.ID = id
	n.Kind = entities.KindNPC
	n.Changes = append(n.Changes, h.change(n.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.npcRepo.Update(r.Context(), npc.UpdateInput{NPC: n})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.NPC)
}

func (h *Handler) deleteNPC(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, err := h.npcRepo.Delete(r.Context(), npc.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
