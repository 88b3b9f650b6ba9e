package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/repositories/actiondraft"
)

func draftPath(r *http.Request) (sessionID, playerID string) {
	vars := mux.Vars(r)
	return vars["session_id"], vars["player_id"]
}

func (h *Handler) listActionDrafts(w http.ResponseWriter, r *http.Request) {
	sessionID, err := requiredQuery(r, "session_id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	out, err := h.draftRepo.ListBySession(r.Context(), actiondraft.ListBySessionInput{SessionID: sessionID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	drafts := out.Drafts
	if drafts == nil {
		drafts = []*entities.ActionDraft{}
	}
	h.respond(w, http.StatusOK, drafts)
}

func (h *Handler) getActionDraft(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := draftPath(r)
	out, err := h.draftRepo.Get(r.Context(), actiondraft.GetInput{SessionID: sessionID, PlayerID: playerID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Draft)
}

func (h *Handler) upsertActionDraft(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := draftPath(r)
	var d entities.ActionDraft
	if err := h.decode(r, &d); err != nil {
		h.respondError(w, err)
		return
	}
	d.ID = sessionID + ":" + playerID
	d.SessionID = sessionID
	d.PlayerID = playerID
	d.UpdatedAt = h.clock.Now()

	out, err := h.draftRepo.Upsert(r.Context(), actiondraft.UpsertInput{Draft: &d})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Draft)
}

func (h *Handler) deleteActionDraft(w http.ResponseWriter, r *http.Request) {
	sessionID, playerID := draftPath(r)
	if _, err := h.draftRepo.Delete(r.Context(), actiondraft.DeleteInput{SessionID: sessionID, PlayerID: playerID}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) clearActionDrafts(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["session_id"]
	out, err := h.draftRepo.ClearSession(r.Context(), actiondraft.ClearSessionInput{SessionID: sessionID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]int{"removed": out.Removed})
}
