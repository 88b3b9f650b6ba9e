package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/realm"
)

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	realmID, err := requiredQuery(r, "realm_id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	out, err := h.campaignRepo.ListByRealm(r.Context(), campaign.ListByRealmInput{RealmID: realmID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	campaigns := out.Campaigns
	if campaigns == nil {
		campaigns = []*entities.Campaign{}
	}
	h.respond(w, http.StatusOK, campaigns)
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var c entities.Campaign
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

	c.ID = h.campaignIDs.Generate()
	c.Kind = entities.KindCampaign
	if c.Status == "" {
		c.Status = entities.CampaignPlanning
	}
	if c.StoryArc == nil {
		c.StoryArc = &entities.StoryArc{Chapters: []string{}}
	}
	c.Meta.CreatedAt = h.clock.Now()
	c.Changes = []entities.Change{h.change(c.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.campaignRepo.Create(r.Context(), campaign.CreateInput{Campaign: &c})
	if err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.realmRepo.AddCampaign(r.Context(), realm.AddCampaignInput{
		RealmID:    c.RealmID,
		CampaignID: c.ID,
		Change:     h.change(c.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.Campaign)
}

func (h *Handler) getCampaign(w http.ResponseWriter, r *http.Request) {
	out, err := h.campaignRepo.Get(r.Context(), campaign.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Campaign)
}

func (h *Handler) updateCampaign(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.campaignRepo.Get(r.Context(), campaign.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	c := existing.Campaign
	if err := h.decode(r, c); err != nil {
		h.respondError(w, err)
		return
	}
	c.ID = id
	c.Kind = entities.KindCampaign
	c.Changes = append(c.Changes, h.change(c.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.campaignRepo.Update(r.Context(), campaign.UpdateInput{Campaign: c})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Campaign)
}

func (h *Handler) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.campaignRepo.Get(r.Context(), campaign.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.campaignRepo.Delete(r.Context(), campaign.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}

	// De-reference from the owning realm. The realm may already be gone;
	// the campaign itself is deleted either way.
	if _, err := h.realmRepo.RemoveCampaign(r.Context(), realm.RemoveCampaignInput{
		RealmID:    existing.Campaign.RealmID,
		CampaignID: id,
		Change:     h.change(existing.Campaign.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.logger.Warn("failed to remove campaign from realm", "campaign_id", id,
			"realm_id", existing.Campaign.RealmID, "error", err)
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
