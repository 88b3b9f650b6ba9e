package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/chapter"
)

func (h *Handler) listChapters(w http.ResponseWriter, r *http.Request) {
	campaignID, err := requiredQuery(r, "campaign_id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	out, err := h.chapterRepo.ListByCampaign(r.Context(), chapter.ListByCampaignInput{CampaignID: campaignID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	chapters := out.Chapters
	if chapters == nil {
		chapters = []*entities.Chapter{}
	}
	h.respond(w, http.StatusOK, chapters)
}

func (h *Handler) createChapter(w http.ResponseWriter, r *http.Request) {
	var c entities.Chapter
	if err := h.decode(r, &c); err != nil {
		h.respondError(w, err)
		return
	}
	if c.CampaignID == "" {
		h.respondError(w, errors.InvalidArgument("campaign_id is required"))
		return
	}
	parent, err := h.campaignRepo.Get(r.Context(), campaign.GetInput{ID: c.CampaignID})
	if err != nil {
		h.respondError(w, err)
		return
	}

	c.ID = h.chapterIDs.Generate()
	c.Kind = entities.KindChapter
	if c.Status == "" {
		c.Status = entities.NarrativeActive
	}
	if c.Scenes == nil {
		c.Scenes = []string{}
	}
	if c.Order == 0 {
		if arc := parent.Campaign.StoryArc; arc != nil {
			c.Order = len(arc.Chapters) + 1
		} else {
			c.Order = 1
		}
	}
	c.Meta.CreatedAt = h.clock.Now()
	c.Changes = []entities.Change{h.change(c.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.chapterRepo.Create(r.Context(), chapter.CreateInput{Chapter: &c})
	if err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.campaignRepo.AppendChapterToArc(r.Context(), campaign.AppendChapterToArcInput{
		CampaignID: c.CampaignID,
		ChapterID:  c.ID,
		Change:     h.change(c.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.Chapter)
}

func (h *Handler) getChapter(w http.ResponseWriter, r *http.Request) {
	out, err := h.chapterRepo.Get(r.Context(), chapter.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Chapter)
}

func (h *Handler) updateChapter(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.chapterRepo.Get(r.Context(), chapter.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	c := existing.Chapter
	if err := h.decode(r, c); err != nil {
		h.respondError(w, err)
		return
	}
	c.ID = id
	c.Kind = entities.KindChapter
	c.Changes = append(c.Changes, h.change(c.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.chapterRepo.Update(r.Context(), chapter.UpdateInput{Chapter: c})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Chapter)
}

func (h *Handler) deleteChapter(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.chapterRepo.Get(r.Context(), chapter.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.chapterRepo.Delete(r.Context(), chapter.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.campaignRepo.RemoveChapterFromArc(r.Context(), campaign.RemoveChapterFromArcInput{
		CampaignID: existing.Chapter.CampaignID,
		ChapterID:  id,
		Change:     h.change(existing.Chapter.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.logger.Warn("failed to remove chapter from story arc", "chapter_id", id,
			"campaign_id", existing.Chapter.CampaignID, "error", err)
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
