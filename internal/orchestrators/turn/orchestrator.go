// Package turn implements the turn submission state machine: draft
// turns enter narrator processing, and the narrator's callback (or a
// blocking generation call) completes or fails them.
package turn

//go:generate mockgen -destination=mock/mock_service.go -package=turnorchmock github.com/greymere/keeper-api/internal/orchestrators/turn Service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/greymere/keeper-api/internal/clients/narrator"
	"github.com/greymere/keeper-api/internal/engine/assembly"
	"github.com/greymere/keeper-api/internal/engine/skillcheck"
	"github.com/greymere/keeper-api/internal/engine/transition"
	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/pkg/clock"
	"github.com/greymere/keeper-api/internal/relay"
	"github.com/greymere/keeper-api/internal/repositories/chapter"
	"github.com/greymere/keeper-api/internal/repositories/character"
	"github.com/greymere/keeper-api/internal/repositories/scene"
	turnrepo "github.com/greymere/keeper-api/internal/repositories/turn"
)

// Service defines the turn submission operations
type Service interface {
	// Submit moves a draft turn to ready_for_agents. Legacy path kept
	// for tables that run the narrator out of band.
	Submit(ctx context.Context, input *SubmitInput) (*SubmitOutput, error)

	// ProcessTurn moves a draft or failed turn into processing and
	// hands it to the narrator. In async mode it returns as soon as
	// the bundle is dispatched; in sync mode it blocks for the full
	// generation and applies the completion inline.
	ProcessTurn(ctx context.Context, input *ProcessTurnInput) (*ProcessTurnOutput, error)

	// Complete ingests the narrator callback for a processing turn.
	// Repeated callbacks re-apply the payload; deduplication is the
	// narrator's responsibility.
	Complete(ctx context.Context, input *CompleteInput) (*CompleteOutput, error)

	// GetStatus reports the polling view of a turn.
	GetStatus(ctx context.Context, input *GetStatusInput) (*GetStatusOutput, error)
}

// SubmitInput identifies the turn and who submitted it
type SubmitInput struct {
	TurnID      string
	SessionID   string
	SubmittedBy string
}

// SubmitOutput returns the submitted turn
type SubmitOutput struct {
	Turn *entities.Turn
}

// ProcessTurnInput identifies the turn and the session watching it
type ProcessTurnInput struct {
	TurnID      string
	SessionID   string
	SubmittedBy string
}

// ProcessTurnOutput reports how far processing got. Dispatch is set in
// async mode; Completion is set in sync mode.
type ProcessTurnOutput struct {
	Turn       *entities.Turn
	Dispatch   narrator.DispatchOutcome
	Completion *CompleteOutput
}

// CallbackPayload is the narrator's completion body.
type CallbackPayload struct {
	TurnID   string                 `json:"turn_id"`
	Success  bool                   `json:"success"`
	Result   *CallbackResult        `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// CallbackResult carries the narrative and an optional transition
// directive.
type CallbackResult struct {
	Narrative  string                 `json:"narrative"`
	Summary    string                 `json:"summary,omitempty"`
	Transition map[string]interface{} `json:"transition,omitempty"`
}

// CompleteInput carries the callback payload for a turn
type CompleteInput struct {
	TurnID  string
	Payload CallbackPayload
}

// CompleteOutput reports where play stands after the callback
type CompleteOutput struct {
	Status    entities.TurnStatus
	TurnID    string
	SceneID   string
	ChapterID string
}

// GetStatusInput identifies the turn to poll
type GetStatusInput struct {
	TurnID string
}

// GetStatusOutput is the polling view of a turn
type GetStatusOutput struct {
	TurnID      string
	Status      entities.TurnStatus
	HasReaction bool
	Error       string
}

// Config holds the dependencies for the turn orchestrator
type Config struct {
	TurnRepo      turnrepo.Repository
	SceneRepo     scene.Repository
	ChapterRepo   chapter.Repository
	CharacterRepo character.Repository

	Assembler   assembly.Engine
	SkillChecks *skillcheck.Engine
	Transitions transition.Engine
	Narrator    narrator.Client
	Relay       relay.Relay
	Clock       clock.Clock

	// CallbackURL builds the completion callback embedded in each
	// dispatched bundle.
	CallbackURL func(turnID string) string

	// Async selects the callback flow; false blocks on generation.
	Async bool

	Logger *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()

	if c.TurnRepo == nil {
		vb.RequiredField("TurnRepo")
	}
	if c.SceneRepo == nil {
		vb.RequiredField("SceneRepo")
	}
	if c.ChapterRepo == nil {
		vb.RequiredField("ChapterRepo")
	}
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.Assembler == nil {
		vb.RequiredField("Assembler")
	}
	if c.SkillChecks == nil {
		vb.RequiredField("SkillChecks")
	}
	if c.Transitions == nil {
		vb.RequiredField("Transitions")
	}
	if c.Narrator == nil {
		vb.RequiredField("Narrator")
	}
	if c.Relay == nil {
		vb.RequiredField("Relay")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.CallbackURL == nil {
		vb.RequiredField("CallbackURL")
	}

	return vb.Build()
}

type orchestrator struct {
	turnRepo      turnrepo.Repository
	sceneRepo     scene.Repository
	chapterRepo   chapter.Repository
	characterRepo character.Repository
	assembler     assembly.Engine
	skillChecks   *skillcheck.Engine
	transitions   transition.Engine
	narrator      narrator.Client
	relay         relay.Relay
	clock         clock.Clock
	callbackURL   func(turnID string) string
	async         bool
	logger        *slog.Logger
}

// NewOrchestrator creates a new turn orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &orchestrator{
		turnRepo:      cfg.TurnRepo,
		sceneRepo:     cfg.SceneRepo,
		chapterRepo:   cfg.ChapterRepo,
		characterRepo: cfg.CharacterRepo,
		assembler:     cfg.Assembler,
		skillChecks:   cfg.SkillChecks,
		transitions:   cfg.Transitions,
		narrator:      cfg.Narrator,
		relay:         cfg.Relay,
		clock:         cfg.Clock,
		callbackURL:   cfg.CallbackURL,
		async:         cfg.Async,
		logger:        logger,
	}, nil
}

func (o *orchestrator) Submit(ctx context.Context, input *SubmitInput) (*SubmitOutput, error) {
	if input == nil || input.TurnID == "" {
		return nil, errors.InvalidArgument("turn id is required")
	}

	out, err := o.turnRepo.TransitionStatus(ctx, turnrepo.TransitionStatusInput{
		ID:        input.TurnID,
		From:      []entities.TurnStatus{entities.TurnDraft},
		To:        entities.TurnReadyForAgents,
		Change:    entities.Change{By: input.SubmittedBy, At: o.clock.Now(), Type: entities.ChangeSubmitted},
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, err
	}

	o.logger.InfoContext(ctx, "turn submitted",
		append(entities.LogRef(out.Turn), "submitted_by", input.SubmittedBy)...)

	return &SubmitOutput{Turn: out.Turn}, nil
}

func (o *orchestrator) ProcessTurn(ctx context.Context, input *ProcessTurnInput) (*ProcessTurnOutput, error) {
	if input == nil || input.TurnID == "" {
		return nil, errors.InvalidArgument("turn id is required")
	}

	// The status guard: only one submission wins the move into
	// processing. A failed turn may be resubmitted.
	casOut, err := o.turnRepo.TransitionStatus(ctx, turnrepo.TransitionStatusInput{
		ID:        input.TurnID,
		From:      []entities.TurnStatus{entities.TurnDraft, entities.TurnFailed},
		To:        entities.TurnProcessing,
		Change:    entities.Change{By: input.SubmittedBy, At: o.clock.Now(), Type: entities.ChangeProcessing},
		SessionID: input.SessionID,
	})
	if err != nil {
		return nil, err
	}
	t := casOut.Turn

	o.relay.TurnProcessing(ctx, t.SessionID, t.ID)

	sceneOut, err := o.sceneRepo.Get(ctx, scene.GetInput{ID: t.SceneID})
	if err != nil {
		return nil, o.failTurn(ctx, t, "scene not found: "+t.SceneID, err)
	}

	characters, err := o.loadCharacters(ctx, sceneOut.Scene.Participants)
	if err != nil {
		return nil, o.failTurn(ctx, t, "failed to load participants", err)
	}

	detected := o.skillChecks.Detect(ctx, t.Actions, characters)
	checks, err := o.skillChecks.Roll(ctx, detected, characters)
	if err != nil {
		return nil, o.failTurn(ctx, t, "skill check resolution failed", err)
	}

	bundleOut, err := o.assembler.Assemble(ctx, assembly.AssembleInput{
		TurnID:      t.ID,
		CallbackURL: o.callbackURL(t.ID),
		SkillChecks: checks,
	})
	if err != nil {
		return nil, o.failTurn(ctx, t, "context assembly failed", err)
	}

	if o.async {
		// At-most-once send. Non-delivery is logged, never surfaced:
		// the caller already holds a processing turn and recovers via
		// polling or resubmission.
		outcome, dispatchErr := o.narrator.Dispatch(ctx, bundleOut.Bundle)
		if dispatchErr != nil {
			o.logger.WarnContext(ctx, "turn dispatch failed",
				"turn_id", t.ID, "outcome", string(outcome), "error", dispatchErr)
		}
		return &ProcessTurnOutput{Turn: t, Dispatch: outcome}, nil
	}

	payload, err := o.narrator.Generate(ctx, bundleOut.Bundle)
	if err != nil {
		return nil, o.failTurn(ctx, t, errors.GetMessage(err), err)
	}

	decoded, err := decodePayload(payload)
	if err != nil {
		return nil, o.failTurn(ctx, t, "narrator returned malformed payload", err)
	}

	completion, err := o.Complete(ctx, &CompleteInput{TurnID: t.ID, Payload: decoded})
	if err != nil {
		return nil, err
	}
	return &ProcessTurnOutput{Turn: t, Completion: completion}, nil
}

func (o *orchestrator) Complete(ctx context.Context, input *CompleteInput) (*CompleteOutput, error) {
	if input == nil || input.TurnID == "" {
		return nil, errors.InvalidArgument("turn id is required")
	}

	getOut, err := o.turnRepo.Get(ctx, turnrepo.GetInput{ID: input.TurnID})
	if err != nil {
		return nil, err
	}
	t := getOut.Turn

	if !input.Payload.Success || input.Payload.Result == nil {
		reason := input.Payload.Error
		if reason == "" {
			reason = "narrator reported failure"
		}

		if _, err := o.turnRepo.SetFailed(ctx, turnrepo.SetFailedInput{
			ID:     t.ID,
			Error:  reason,
			Change: o.agentChange(entities.ChangeFailed),
		}); err != nil {
			return nil, err
		}
		o.relay.TurnFailed(ctx, t.SessionID, t.ID, reason)

		o.logger.WarnContext(ctx, "turn failed by narrator callback",
			"turn_id", t.ID, "error", reason)

		return &CompleteOutput{
			Status:  entities.TurnFailed,
			TurnID:  t.ID,
			SceneID: t.SceneID,
		}, nil
	}

	result := input.Payload.Result
	reaction := entities.Reaction{
		Description: result.Narrative,
		Summary:     result.Summary,
	}
	if _, err := o.turnRepo.SetReaction(ctx, turnrepo.SetReactionInput{
		ID:       t.ID,
		Reaction: reaction,
		Change:   o.agentChange(entities.ChangeReactionAdded),
	}); err != nil {
		return nil, err
	}

	currentSceneID, currentChapterID := o.applyTransition(ctx, t, result)

	o.relay.TurnCompleted(ctx, t.SessionID, t.ID, currentSceneID, map[string]interface{}{
		"description": reaction.Description,
		"summary":     reaction.Summary,
	})

	o.logger.InfoContext(ctx, "turn completed",
		append(entities.LogRef(t), "scene_id", currentSceneID)...)

	return &CompleteOutput{
		Status:    entities.TurnCompleted,
		TurnID:    t.ID,
		SceneID:   currentSceneID,
		ChapterID: currentChapterID,
	}, nil
}

func (o *orchestrator) GetStatus(ctx context.Context, input *GetStatusInput) (*GetStatusOutput, error) {
	if input == nil || input.TurnID == "" {
		return nil, errors.InvalidArgument("turn id is required")
	}

	out, err := o.turnRepo.Get(ctx, turnrepo.GetInput{ID: input.TurnID})
	if err != nil {
		return nil, err
	}

	return &GetStatusOutput{
		TurnID:      out.Turn.ID,
		Status:      out.Turn.Status,
		HasReaction: out.Turn.Reaction != nil,
		Error:       out.Turn.Error,
	}, nil
}

// applyTransition runs any transition directive in the result. The
// turn is already completed, so transition failures are logged and the
// current scene stands.
func (o *orchestrator) applyTransition(ctx context.Context, t *entities.Turn, result *CallbackResult) (sceneID, chapterID string) {
	sceneID = t.SceneID

	info := transition.Parse(map[string]interface{}{"transition": result.Transition})
	if info.Type == transition.TypeNone {
		return sceneID, ""
	}

	sceneOut, err := o.sceneRepo.Get(ctx, scene.GetInput{ID: t.SceneID})
	if err != nil {
		o.logger.WarnContext(ctx, "transition skipped, scene missing",
			"turn_id", t.ID, "scene_id", t.SceneID, "error", err)
		return sceneID, ""
	}
	chapterID = sceneOut.Scene.ChapterID

	var campaignID string
	if chapterID != "" {
		if chapterOut, err := o.chapterRepo.Get(ctx, chapter.GetInput{ID: chapterID}); err == nil {
			campaignID = chapterOut.Chapter.CampaignID
		}
	}

	procOut, err := o.transitions.Process(ctx, transition.ProcessInput{
		Info:       info,
		TurnID:     t.ID,
		SceneID:    t.SceneID,
		ChapterID:  chapterID,
		CampaignID: campaignID,
	})
	if err != nil {
		o.logger.ErrorContext(ctx, "transition processing failed",
			"turn_id", t.ID, "type", info.Type, "error", err)
		return sceneID, chapterID
	}
	if !procOut.Result.Occurred {
		return sceneID, chapterID
	}

	sceneID = procOut.Result.NewSceneID
	switch procOut.Result.Type {
	case transition.TypeScene:
		o.relay.SceneCreated(ctx, t.SessionID, procOut.Result.NewSceneID, procOut.Result.SceneName)
	case transition.TypeChapter:
		chapterID = procOut.Result.NewChapterID
		o.relay.ChapterCreated(ctx, t.SessionID,
			procOut.Result.NewChapterID, procOut.Result.NewSceneID, procOut.Result.ChapterName)
	}
	return sceneID, chapterID
}

// failTurn records the failure and notifies the session, then returns
// the original error for the caller.
func (o *orchestrator) failTurn(ctx context.Context, t *entities.Turn, reason string, cause error) error {
	if _, err := o.turnRepo.SetFailed(ctx, turnrepo.SetFailedInput{
		ID:     t.ID,
		Error:  reason,
		Change: o.agentChange(entities.ChangeFailed),
	}); err != nil {
		o.logger.ErrorContext(ctx, "failed to mark turn failed",
			"turn_id", t.ID, "error", err)
	}
	o.relay.TurnFailed(ctx, t.SessionID, t.ID, reason)

	o.logger.ErrorContext(ctx, "turn processing failed",
		"turn_id", t.ID, "reason", reason, "error", cause)
	return cause
}

func (o *orchestrator) loadCharacters(ctx context.Context, participantIDs []string) ([]assembly.CharacterContext, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}

	out, err := o.characterRepo.GetMany(ctx, character.GetManyInput{IDs: participantIDs})
	if err != nil {
		return nil, err
	}

	contexts := make([]assembly.CharacterContext, 0, len(out.Characters))
	for _, c := range out.Characters {
		contexts = append(contexts, assembly.ProjectCharacter(c))
	}
	return contexts, nil
}

func (o *orchestrator) agentChange(changeType string) entities.Change {
	return entities.Change{By: transition.NarrativeAgent, At: o.clock.Now(), Type: changeType}
}

func decodePayload(raw map[string]interface{}) (CallbackPayload, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return CallbackPayload{}, err
	}
	var payload CallbackPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return CallbackPayload{}, err
	}
	return payload, nil
}
