package api

import (
	"net/http"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/repositories/chapter"
	"github.com/greymere/keeper-api/internal/repositories/scene"
)

func (h *Handler) listScenes(w http.ResponseWriter, r *http.Request) {
	chapterID, err := requiredQuery(r, "chapter_id")
	if err != nil {
		h.respondError(w, err)
		return
	}
	out, err := h.sceneRepo.ListByChapter(r.Context(), scene.ListByChapterInput{ChapterID: chapterID})
	if err != nil {
		h.respondError(w, err)
		return
	}
	scenes := out.Scenes
	if scenes == nil {
		scenes = []*entities.Scene{}
	}
	h.respond(w, http.StatusOK, scenes)
}

func (h *Handler) createScene(w http.ResponseWriter, r *http.Request) {
	var s entities.Scene
	if err := h.decode(r, &s); err != nil {
		h.respondError(w, err)
		return
	}
	if s.ChapterID == "" {
		h.respondError(w, errors.InvalidArgument("chapter_id is required"))
		return
	}
	if _, err := h.chapterRepo.Get(r.Context(), chapter.GetInput{ID: s.ChapterID}); err != nil {
		h.respondError(w, err)
		return
	}

	s.ID = h.sceneIDs.Generate()
	s.Kind = entities.KindScene
	if s.Status == "" {
		s.Status = entities.NarrativeActive
	}
	if s.Turns == nil {
		s.Turns = []string{}
	}
	s.Meta.CreatedAt = h.clock.Now()
	s.Changes = []entities.Change{h.change(s.Meta.CreatedBy, entities.ChangeCreated)}

	out, err := h.sceneRepo.Create(r.Context(), scene.CreateInput{Scene: &s})
	if err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.chapterRepo.AddScene(r.Context(), chapter.AddSceneInput{
		ChapterID: s.ChapterID,
		SceneID:   s.ID,
		Change:    h.change(s.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, out.Scene)
}

func (h *Handler) getScene(w http.ResponseWriter, r *http.Request) {
	out, err := h.sceneRepo.Get(r.Context(), scene.GetInput{ID: pathID(r)})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Scene)
}

func (h *Handler) updateScene(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.sceneRepo.Get(r.Context(), scene.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	s := existing.Scene
	if err := h.decode(r, s); err != nil {
		h.respondError(w, err)
		return
	}
	s.ID = id
	s.Kind = entities.KindScene
	s.Changes = append(s.Changes, h.change(s.Meta.CreatedBy, entities.ChangeUpdated))

	out, err := h.sceneRepo.Update(r.Context(), scene.UpdateInput{Scene: s})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, out.Scene)
}

func (h *Handler) deleteScene(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	existing, err := h.sceneRepo.Get(r.Context(), scene.GetInput{ID: id})
	if err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.sceneRepo.Delete(r.Context(), scene.DeleteInput{ID: id}); err != nil {
		h.respondError(w, err)
		return
	}

	if _, err := h.chapterRepo.RemoveScene(r.Context(), chapter.RemoveSceneInput{
		ChapterID: existing.Scene.ChapterID,
		SceneID:   id,
		Change:    h.change(existing.Scene.Meta.CreatedBy, entities.ChangeUpdated),
	}); err != nil {
		h.logger.Warn("failed to remove scene from chapter", "scene_id", id,
			"chapter_id", existing.Scene.ChapterID, "error", err)
	}
	h.respond(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
