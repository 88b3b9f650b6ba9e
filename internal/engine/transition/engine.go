// Package transition interprets narrator-declared scene and chapter
// transitions and performs the resulting narrative bookkeeping: closing
// the finished unit with a derived summary and opening its successor.
package transition

//go:generate mockgen -destination=mock/mock_engine.go -package=transitionmock github.com/greymere/keeper-api/internal/engine/transition Engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/pkg/clock"
	"github.com/greymere/keeper-api/internal/pkg/idgen"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/chapter"
	"github.com/greymere/keeper-api/internal/repositories/scene"
)

// Transition types.
const (
	TypeNone    = "none"
	TypeScene   = "scene"
	TypeChapter = "chapter"
)

// NarrativeAgent is the audit identity for transition writes.
const NarrativeAgent = "KeeperAI"

// Info is the transition declaration parsed from a narrator response.
type Info struct {
	Type          string `json:"type"`
	Reason        string `json:"reason,omitempty"`
	SuggestedName string `json:"suggested_name,omitempty"`
}

// Result reports what a processed transition created.
type Result struct {
	Occurred     bool   `json:"transition_occurred"`
	Type         string `json:"transition_type,omitempty"`
	NewSceneID   string `json:"new_scene_id,omitempty"`
	NewChapterID string `json:"new_chapter_id,omitempty"`
	SceneName    string `json:"scene_name,omitempty"`
	ChapterName  string `json:"chapter_name,omitempty"`
}

// Parse extracts transition info from a raw narrator payload. Missing
// or malformed declarations degrade to type "none" rather than erroring
// so a sloppy narrator response never blocks turn completion.
func Parse(payload map[string]interface{}) Info {
	raw, ok := payload["transition"].(map[string]interface{})
	if !ok {
		return Info{Type: TypeNone}
	}

	info := Info{Type: TypeNone}
	if t, ok := raw["type"].(string); ok {
		switch t {
		case TypeNone, TypeScene, TypeChapter:
			info.Type = t
		}
	}
	if r, ok := raw["reason"].(string); ok {
		info.Reason = r
	}
	if n, ok := raw["suggested_name"].(string); ok {
		info.SuggestedName = n
	}
	return info
}

// Engine processes transitions.
type Engine interface {
	// Process closes and creates narrative units per the declared
	// transition. A "none" transition is a no-op.
	Process(ctx context.Context, input ProcessInput) (*ProcessOutput, error)
}

// ProcessInput locates the transition within the narrative hierarchy
type ProcessInput struct {
	Info       Info
	TurnID     string
	SceneID    string
	ChapterID  string
	CampaignID string
}

// ProcessOutput reports what was created
type ProcessOutput struct {
	Result Result
}

// Config holds the dependencies for the transition engine.
type Config struct {
	SceneRepo    scene.Repository
	ChapterRepo  chapter.Repository
	CampaignRepo campaign.Repository
	SceneIDs     idgen.Generator
	ChapterIDs   idgen.Generator
	Clock        clock.Clock
	Logger       *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	if c.SceneRepo == nil {
		vb.RequiredField("SceneRepo")
	}
	if c.ChapterRepo == nil {
		vb.RequiredField("ChapterRepo")
	}
	if c.CampaignRepo == nil {
		vb.RequiredField("CampaignRepo")
	}
	if c.SceneIDs == nil {
		vb.RequiredField("SceneIDs")
	}
	if c.ChapterIDs == nil {
		vb.RequiredField("ChapterIDs")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

type engine struct {
	sceneRepo    scene.Repository
	chapterRepo  chapter.Repository
	campaignRepo campaign.Repository
	sceneIDs     idgen.Generator
	chapterIDs   idgen.Generator
	clock        clock.Clock
	logger       *slog.Logger
}

// New creates a new transition engine
func New(cfg *Config) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &engine{
		sceneRepo:    cfg.SceneRepo,
		chapterRepo:  cfg.ChapterRepo,
		campaignRepo: cfg.CampaignRepo,
		sceneIDs:     cfg.SceneIDs,
		chapterIDs:   cfg.ChapterIDs,
		clock:        cfg.Clock,
		logger:       logger,
	}, nil
}

func (e *engine) Process(ctx context.Context, input ProcessInput) (*ProcessOutput, error) {
	switch input.Info.Type {
	case TypeScene:
		return e.sceneTransition(ctx, input)
	case TypeChapter:
		return e.chapterTransition(ctx, input)
	default:
		return &ProcessOutput{Result: Result{Occurred: false}}, nil
	}
}

func (e *engine) sceneTransition(ctx context.Context, input ProcessInput) (*ProcessOutput, error) {
	current, err := e.sceneRepo.Get(ctx, scene.GetInput{ID: input.SceneID})
	if err != nil {
		return nil, err
	}

	reason := input.Info.Reason
	if reason == "" {
		reason = "Scene transition"
	}

	if err := e.closeScene(ctx, current.Scene, reason); err != nil {
		return nil, err
	}

	name := input.Info.SuggestedName
	if name == "" {
		name = "Untitled Scene"
	}

	newScene := &entities.Scene{
		ID:           e.sceneIDs.Generate(),
		Kind:         entities.KindScene,
		ChapterID:    input.ChapterID,
		Name:         name,
		Description:  fmt.Sprintf("Transition from previous scene. Reason: %s", reason),
		Summary:      "Scene in progress",
		Participants: current.Scene.Participants,
		Turns:        []string{},
		Status:       entities.NarrativeActive,
		Meta:         entities.Meta{CreatedBy: NarrativeAgent, CreatedAt: e.clock.Now()},
		Changes:      []entities.Change{e.change(entities.ChangeCreated)},
	}
	if _, err := e.sceneRepo.Create(ctx, scene.CreateInput{Scene: newScene}); err != nil {
		return nil, err
	}

	if _, err := e.chapterRepo.AddScene(ctx, chapter.AddSceneInput{
		ChapterID: input.ChapterID,
		SceneID:   newScene.ID,
		Change:    e.change(entities.ChangeUpdated),
	}); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "scene transition processed",
		"turn_id", input.TurnID, "closed_scene", input.SceneID, "new_scene", newScene.ID)

	return &ProcessOutput{Result: Result{
		Occurred:   true,
		Type:       TypeScene,
		NewSceneID: newScene.ID,
		SceneName:  name,
	}}, nil
}

func (e *engine) chapterTransition(ctx context.Context, input ProcessInput) (*ProcessOutput, error) {
	current, err := e.sceneRepo.Get(ctx, scene.GetInput{ID: input.SceneID})
	if err != nil {
		return nil, err
	}

	reason := input.Info.Reason
	if reason == "" {
		reason = "Chapter transition"
	}

	if err := e.closeScene(ctx, current.Scene, reason); err != nil {
		return nil, err
	}
	if current.Scene.ChapterID != "" {
		if err := e.closeChapter(ctx, current.Scene.ChapterID, reason); err != nil {
			return nil, err
		}
	}

	campaignOut, err := e.campaignRepo.Get(ctx, campaign.GetInput{ID: input.CampaignID})
	if err != nil {
		return nil, err
	}

	order := 1
	if arc := campaignOut.Campaign.StoryArc; arc != nil {
		order = len(arc.Chapters) + 1
	}

	chapterName := input.Info.SuggestedName
	if chapterName == "" {
		chapterName = "Untitled Chapter"
	}

	newChapterID := e.chapterIDs.Generate()
	newSceneID := e.sceneIDs.Generate()

	newChapter := &entities.Chapter{
		ID:          newChapterID,
		Kind:        entities.KindChapter,
		CampaignID:  input.CampaignID,
		Name:        chapterName,
		Description: fmt.Sprintf("New chapter. Reason: %s", reason),
		Summary:     "Chapter in progress",
		Scenes:      []string{newSceneID},
		Status:      entities.NarrativeActive,
		Order:       order,
		Meta:        entities.Meta{CreatedBy: NarrativeAgent, CreatedAt: e.clock.Now()},
		Changes:     []entities.Change{e.change(entities.ChangeCreated)},
	}
	if _, err := e.chapterRepo.Create(ctx, chapter.CreateInput{Chapter: newChapter}); err != nil {
		return nil, err
	}

	openingScene := &entities.Scene{
		ID:           newSceneID,
		Kind:         entities.KindScene,
		ChapterID:    newChapterID,
		Name:         "Opening Scene",
		Description:  fmt.Sprintf("Opening scene of %s", chapterName),
		Summary:      "Scene in progress",
		Participants: current.Scene.Participants,
		Turns:        []string{},
		Status:       entities.NarrativeActive,
		Meta:         entities.Meta{CreatedBy: NarrativeAgent, CreatedAt: e.clock.Now()},
		Changes:      []entities.Change{e.change(entities.ChangeCreated)},
	}
	if _, err := e.sceneRepo.Create(ctx, scene.CreateInput{Scene: openingScene}); err != nil {
		return nil, err
	}

	if _, err := e.campaignRepo.AppendChapterToArc(ctx, campaign.AppendChapterToArcInput{
		CampaignID: input.CampaignID,
		ChapterID:  newChapterID,
		Change:     e.change(entities.ChangeUpdated),
	}); err != nil {
		return nil, err
	}

	e.logger.InfoContext(ctx, "chapter transition processed",
		"turn_id", input.TurnID, "new_chapter", newChapterID, "new_scene", newSceneID)

	return &ProcessOutput{Result: Result{
		Occurred:     true,
		Type:         TypeChapter,
		NewChapterID: newChapterID,
		NewSceneID:   newSceneID,
		ChapterName:  chapterName,
		SceneName:    "Opening Scene",
	}}, nil
}

func (e *engine) closeScene(ctx context.Context, sc *entities.Scene, reason string) error {
	summary := fmt.Sprintf("%s completed. %d turns. %s", sc.Name, len(sc.Turns), reason)
	_, err := e.sceneRepo.Close(ctx, scene.CloseInput{
		ID:      sc.ID,
		Summary: summary,
		Change:  e.change(entities.ChangeCompleted),
	})
	return err
}

func (e *engine) closeChapter(ctx context.Context, chapterID, reason string) error {
	out, err := e.chapterRepo.Get(ctx, chapter.GetInput{ID: chapterID})
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}

	summary := fmt.Sprintf("%s completed. %d scenes. %s",
		out.Chapter.Name, len(out.Chapter.Scenes), reason)
	_, err = e.chapterRepo.Close(ctx, chapter.CloseInput{
		ID:      chapterID,
		Summary: summary,
		Change:  e.change(entities.ChangeCompleted),
	})
	return err
}

func (e *engine) change(changeType string) entities.Change {
	return entities.Change{By: NarrativeAgent, At: e.clock.Now(), Type: changeType}
}
