package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	turnorch "github.com/greymere/keeper-api/internal/orchestrators/turn"
	"github.com/greymere/keeper-api/internal/repositories/scene"
	turnrepo "github.com/greymere/keeper-api/internal/repositories/turn"
)

func (h *Handler) listTurns(w http.ResponseWriter, r *http.Request) {
	sceneID, err := requiredQuery(r, "scene_id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	out, err := h.turnRepo.ListByScene(r.Context(), turnrepo.ListBySceneInput{SceneID: sceneID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	turns := out.Turns
	if turns == nil {
		turns = []*entities.Turn{}
	}
	h.respond(w, http.StatusOK, turns)
}

func (h *Handler) createTurn(w http.ResponseWriter, r *http.Request) {
	var t entities.Turn
	if err := h.decode(r, &t); err != nil {
		h.respondError(w, err)
		return
	}
	if t.SceneID == "" {
		h.respondError(w, errors.InvalidArgument("scene_id is required"))
		return
	}
	parent, err := h.sceneRepo.Get(r.Context(), scene.GetInput{ID: t.SceneID})
	if err != nil {
		h.respondError(w, err)
		return
	}

	t.ID = h.turnIDs.Generate()
	t.Kind = entities.KindTurn
	t.Status = entities.TurnDraft
	t.Reaction = nil
	t.Error = ""
	if t.Actions == nil {
		t.Actions = []entities.Action{}
	}
	if t.Order == 0 {
		t.Order = len(parent.Scene.Turns) + 1
	}
	t.Meta.CreatedAt = h.clock.Now()
	t.Changes = []entities.Change{h.change(t.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.turnRepo.Create(r.Context(), turnrepo.CreateInput{Turn: &t})
	if err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.sceneRepo.AddTurn(r.Context(), scene.AddTurnInput{
		SceneID: t.SceneID,
		TurnID:  t.ID,
		Change:  h.change(t.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.Turn)
}

func (h *Handler) getTurn(w http.ResponseWriter, r *http.Request) {
	out, err := h.turnRepo.Get(r.Context(), turnrepo.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Turn)
}

func (h *Handler) updateTurn(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.turnRepo.Get(r.Context(), turnrepo.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}
	if existing.Turn.Status != entities.TurnDraft {
		h.respondError(w, errors.FailedPreconditionf(
			"turn %s is %s; only draft turns can be edited", id, existing.Turn.Status))
		return
	}

	t := existing.Turn
	if err := h.decode(r, t); err != nil {
		h.respondError(w, err)
		return
	}
	t.ID = id
	t.Kind = entities.KindTurn
	t.Status = entities.TurnDraft
	t.Changes = append(t.Changes, h.change(t.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.turnRepo.Update(r.Context(), turnrepo.UpdateInput{Turn: t})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Turn)
}

func (h *Handler) deleteTurn(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.turnRepo.Get(r.Context(), turnrepo.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}
	if existing.Turn.Status != entities.TurnDraft {
		h.respondError(w, errors.FailedPreconditionf(
			"turn %s is %s; only draft turns can be deleted", id, existing.Turn.Status))
		return
	}

	if _, err := h.turnRepo.Delete(r.Context(), turnrepo.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.sceneRepo.RemoveTurn(r.Context(), scene.RemoveTurnInput{
		SceneID: existing.Turn.SceneID,
		TurnID:  id,
		Change:  h.change(existing.Turn.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.logger.Warn("failed to remove turn from scene", "turn_id", id,
			"scene_id", existing.Turn.SceneID, "error", err)
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// submitBody is the optional request body for submit and ready. An
// empty body submits anonymously with no session room to notify.
type submitBody struct {
	SessionID   string `json:"session_id"`
	SubmittedBy string `json:"submitted_by"`
}

func (h *Handler) readSubmitBody(r *http.Request) (*submitBody, error) {
	var body submitBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		return nil, errors.InvalidArgumentf("invalid request body: %v", err)
	}
	return &body, nil
}

func (h *Handler) submitTurn(w http.ResponseWriter, r *http.Request) {
	body, err := h.readSubmitBody(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out, err := h.turns.ProcessTurn(r.Context(), &turnorch.ProcessTurnInput{
		TurnID:      pathID(r),
		SessionID:   body.SessionID,
		SubmittedBy: body.SubmittedBy,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusAccepted, map[string]interface{}{
		"turn_id": out.Turn.ID,
		"status":  out.Turn.Status,
	})
}

func (h *Handler) markTurnReady(w http.ResponseWriter, r *http.Request) {
	body, err := h.readSubmitBody(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out, err := h.turns.Submit(r.Context(), &turnorch.SubmitInput{
		TurnID:      pathID(r),
		SessionID:   body.SessionID,
		SubmittedBy: body.SubmittedBy,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Turn)
}

// completeResponse acknowledges the narrator callback.
type completeResponse struct {
	Status    entities.TurnStatus `json:"status"`
	TurnID    string              `json:"turn_id"`
	SceneID   string              `json:"scene_id"`
	ChapterID string              `json:"chapter_id"`
}

func (h *Handler) completeTurn(w http.ResponseWriter, r *http.Request) {
	var payload turnorch.CallbackPayload
	if err := h.decode(r, &payload); err != nil {
		h.respondError(w, err)
		return
	}

	out, err := h.turns.Complete(r.Context(), &turnorch.CompleteInput{
		TurnID:  pathID(r),
		Payload: payload,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, completeResponse{
		Status:    out.Status,
		TurnID:    out.TurnID,
		SceneID:   out.SceneID,
		ChapterID: out.ChapterID,
	})
}

type statusResponse struct {
	TurnID      string              `json:"turn_id"`
	Status      entities.TurnStatus `json:"status"`
	HasReaction bool                `json:"has_reaction"`
	Error       string              `json:"error,omitempty"`
}

func (h *Handler) turnStatus(w http.ResponseWriter, r *http.Request) {
	out, err := h.turns.GetStatus(r.Context(), &turnorch.GetStatusInput{TurnID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, statusResponse{
		TurnID:      out.TurnID,
		Status:      out.Status,
		HasReaction: out.HasReaction,
		Error:       out.Error,
	})
}
