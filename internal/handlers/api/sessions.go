package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/session"
)

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	campaignID, err := requiredQuery(r, "campaign_id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	out, err := h.sessionRepo.ListByCampaign(r.Context(), session.ListByCampaignInput{CampaignID: campaignID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	sessions := out.Sessions
	if sessions == nil {
		sessions = []*entities.Session{}
	}
	h.respond(w, http.StatusOK, sessions)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var s entities.Session
	if err := h.decode(r, &s); err != nil {
		h.respondError(w, err)
		return
	}
	if s.CampaignID == "" {
		h.respondError(w, errors.InvalidArgument("campaign_id is required"))
		return
	}
	parent, err := h.campaignRepo.Get(r.Context(), campaign.GetInput{ID: s.CampaignID})
	if err != nil {
		h.respondError(w, err)
		return
	}

	s.ID = h.sessionIDs.Generate()
	s.Kind = entities.KindSession
	if s.RealmID == "" {
		s.RealmID = parent.Campaign.RealmID
	}
	if s.SessionNumber == 0 {
		existing, err := h.sessionRepo.ListByCampaign(r.Context(), session.ListByCampaignInput{CampaignID: s.CampaignID})
		if err != nil {
			h.respondError(w, err)
			return
		}
		s.SessionNumber = len(existing.Sessions) + 1
	}
	s.Meta.CreatedAt = h.clock.Now()
	s.Changes = []entities.Change{h.change(s.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.sessionRepo.Create(r.Context(), session.CreateInput{Session: &s})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.Session)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.sessionRepo.Get(r.Context(), session.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Session)
}

func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.sessionRepo.Get(r.Context(), session.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	s := existing.Session
	if err := h.decode(r, s); err != nil {
		h.respondError(w, err)
		return
	}
	s.ID = id
	s.Kind = entities.KindSession
	s.Changes = append(s.Changes, h.change(s.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.sessionRepo.Update(r.Context(), session.UpdateInput{Session: s})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Session)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if _, err := h.sessionRepo.Delete(r.Context(), session.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
