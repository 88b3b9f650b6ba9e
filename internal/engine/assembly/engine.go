// Package assembly builds the context bundle dispatched to the
// narrator for each processed turn: scene-chain ancestry, a bounded
// window of previous turns, participant and NPC projections, derived
// pacing state, retrieved lore, and pre-rolled skill checks.
package assembly

//go:generate mockgen -destination=mock/mock_engine.go -package=assemblymock github.com/greymere/keeper-api/internal/engine/assembly Engine

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/pkg/clock"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/chapter"
	"github.com/greymere/keeper-api/internal/repositories/character"
	"github.com/greymere/keeper-api/internal/repositories/npc"
	"github.com/greymere/keeper-api/internal/repositories/realm"
	"github.com/greymere/keeper-api/internal/repositories/scene"
	"github.com/greymere/keeper-api/internal/repositories/turn"
)

// Window and projection caps.
const (
	DefaultMaxPreviousTurns = 5
	DefaultMaxCharacters    = 10
	DefaultMaxLoreChunks    = 3
	maxNPCs                 = 20
)

// Engine assembles context bundles.
type Engine interface {
	// Assemble builds the bundle for a turn.
	// Returns errors.NotFound only when the turn itself is missing;
	// missing ancestors degrade to nil context pieces.
	Assemble(ctx context.Context, input AssembleInput) (*AssembleOutput, error)
}

// AssembleInput identifies the turn and carries pre-rolled checks
type AssembleInput struct {
	TurnID      string
	CallbackURL string
	SkillChecks []SkillCheckContext
}

// AssembleOutput holds the finished bundle
type AssembleOutput struct {
	Bundle *ContextBundle
}

// Config holds the dependencies for the assembly engine.
type Config struct {
	TurnRepo      turn.Repository
	SceneRepo     scene.Repository
	ChapterRepo   chapter.Repository
	CampaignRepo  campaign.Repository
	RealmRepo     realm.Repository
	CharacterRepo character.Repository
	NPCRepo       npc.Repository
	Lore          LoreProvider
	Clock         clock.Clock
	Logger        *slog.Logger

	MaxPreviousTurns int
	MaxCharacters    int
	MaxLoreChunks    int
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
	if c.CampaignRepo == nil {
		vb.RequiredField("CampaignRepo")
	}
	if c.RealmRepo == nil {
		vb.RequiredField("RealmRepo")
	}
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.NPCRepo == nil {
		vb.RequiredField("NPCRepo")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

type engine struct {
	turnRepo      turn.Repository
	sceneRepo     scene.Repository
	chapterRepo   chapter.Repository
	campaignRepo  campaign.Repository
	realmRepo     realm.Repository
	characterRepo character.Repository
	npcRepo       npc.Repository
	lore          LoreProvider
	clock         clock.Clock
	logger        *slog.Logger

	maxPreviousTurns int
	maxCharacters    int
	maxLoreChunks    int
}

// New creates a new assembly engine
func New(cfg *Config) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &engine{
		turnRepo:         cfg.TurnRepo,
		sceneRepo:        cfg.SceneRepo,
		chapterRepo:      cfg.ChapterRepo,
		campaignRepo:     cfg.CampaignRepo,
		realmRepo:        cfg.RealmRepo,
		characterRepo:    cfg.CharacterRepo,
		npcRepo:          cfg.NPCRepo,
		lore:             cfg.Lore,
		clock:            cfg.Clock,
		logger:           cfg.Logger,
		maxPreviousTurns: cfg.MaxPreviousTurns,
		maxCharacters:    cfg.MaxCharacters,
		maxLoreChunks:    cfg.MaxLoreChunks,
	}
	if e.lore == nil {
		e.lore = NoopLore{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.maxPreviousTurns <= 0 {
		e.maxPreviousTurns = DefaultMaxPreviousTurns
	}
	if e.maxCharacters <= 0 {
		e.maxCharacters = DefaultMaxCharacters
	}
	if e.maxLoreChunks <= 0 {
		e.maxLoreChunks = DefaultMaxLoreChunks
	}
	return e, nil
}

func (e *engine) Assemble(ctx context.Context, input AssembleInput) (*AssembleOutput, error) {
	if input.TurnID == "" {
		return nil, errors.InvalidArgument("turn ID cannot be empty")
	}

	turnOut, err := e.turnRepo.Get(ctx, turn.GetInput{ID: input.TurnID})
	if err != nil {
		return nil, err
	}
	t := turnOut.Turn
	if t.SceneID == "" {
		return nil, errors.InvalidArgumentf("turn %s has no scene ID", t.ID)
	}

	// Walk the scene chain upward. A broken link degrades the
	// remaining pieces to nil instead of failing the whole bundle.
	var (
		sc *entities.Scene
		ch *entities.Chapter
		cp *entities.Campaign
		rm *entities.Realm
	)
	if out, err := e.sceneRepo.Get(ctx, scene.GetInput{ID: t.SceneID}); err == nil {
		sc = out.Scene
	} else if !errors.IsNotFound(err) {
		return nil, err
	} else {
		e.logger.WarnContext(ctx, "scene missing during assembly",
			"turn_id", t.ID, "scene_id", t.SceneID)
	}
	if sc != nil && sc.ChapterID != "" {
		if out, err := e.chapterRepo.Get(ctx, chapter.GetInput{ID: sc.ChapterID}); err == nil {
			ch = out.Chapter
		} else if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	if ch != nil && ch.CampaignID != "" {
		if out, err := e.campaignRepo.Get(ctx, campaign.GetInput{ID: ch.CampaignID}); err == nil {
			cp = out.Campaign
		} else if !errors.IsNotFound(err) {
			return nil, err
		}
	}
	if cp != nil && cp.RealmID != "" {
		if out, err := e.realmRepo.Get(ctx, realm.GetInput{ID: cp.RealmID}); err == nil {
			rm = out.Realm
		} else if !errors.IsNotFound(err) {
			return nil, err
		}
	}

	data := ContextData{
		Realm:       realmContext(rm),
		Campaign:    campaignContext(cp),
		Chapter:     chapterContext(ch),
		SkillChecks: input.SkillChecks,
	}
	if data.SkillChecks == nil {
		data.SkillChecks = []SkillCheckContext{}
	}

	if sc != nil {
		sceneCtx, err := e.sceneContext(ctx, sc)
		if err != nil {
			return nil, err
		}
		data.Scene = sceneCtx

		data.PreviousTurns, err = e.previousTurns(ctx, t.SceneID, t.Order)
		if err != nil {
			return nil, err
		}
		data.Characters, err = e.characters(ctx, sc.Participants)
		if err != nil {
			return nil, err
		}
		data.NPCs, err = e.npcs(ctx, sc.NPCsPresent)
		if err != nil {
			return nil, err
		}
	}
	if data.PreviousTurns == nil {
		data.PreviousTurns = []TurnSummary{}
	}
	if data.Characters == nil {
		data.Characters = []CharacterContext{}
	}
	if data.NPCs == nil {
		data.NPCs = []NPCContext{}
	}

	data.LoreContext, err = e.lore.Fetch(ctx, t.Actions, e.maxLoreChunks)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch lore context")
	}
	if data.LoreContext == nil {
		data.LoreContext = []LoreChunk{}
	}

	bundle := &ContextBundle{
		TurnID:      t.ID,
		CallbackURL: input.CallbackURL,
		Timestamp:   e.clock.Now(),
		Context:     data,
		Actions:     t.Actions,
	}

	e.logger.InfoContext(ctx, "context assembled",
		"turn_id", t.ID,
		"characters", len(data.Characters),
		"npcs", len(data.NPCs),
		"previous_turns", len(data.PreviousTurns),
		"skill_checks", len(data.SkillChecks))

	return &AssembleOutput{Bundle: bundle}, nil
}

func realmContext(rm *entities.Realm) *RealmContext {
	if rm == nil {
		return nil
	}
	return &RealmContext{ID: rm.ID, Name: rm.Name, Setting: rm.Setting}
}

func campaignContext(cp *entities.Campaign) *CampaignContext {
	if cp == nil {
		return nil
	}
	return &CampaignContext{ID: cp.ID, Name: cp.Name, Setting: cp.Setting, StoryArc: cp.StoryArc}
}

func chapterContext(ch *entities.Chapter) *ChapterContext {
	if ch == nil {
		return nil
	}
	order := ch.Order
	if order == 0 {
		order = 1
	}
	return &ChapterContext{ID: ch.ID, Name: ch.Name, Summary: ch.Summary, Order: order}
}

func (e *engine) sceneContext(ctx context.Context, sc *entities.Scene) (*SceneContext, error) {
	countOut, err := e.turnRepo.CountCompleted(ctx, turn.CountCompletedInput{SceneID: sc.ID})
	if err != nil {
		return nil, err
	}

	participants := sc.Participants
	if participants == nil {
		participants = []string{}
	}
	return &SceneContext{
		ID:           sc.ID,
		Name:         sc.Name,
		Location:     sc.Description,
		Summary:      sc.Summary,
		Status:       string(sc.Status),
		Participants: participants,
		TurnCount:    countOut.Count,
		PacingPhase:  PacingPhase(countOut.Count),
	}, nil
}

// PacingPhase maps a completed turn count onto the narrative pacing
// curve.
func PacingPhase(turnCount int) string {
	switch {
	case turnCount <= 5:
		return PacingEstablishment
	case turnCount <= 15:
		return PacingUnease
	case turnCount <= 35:
		return PacingInvestigation
	case turnCount <= 45:
		return PacingRevelation
	default:
		return PacingResolution
	}
}

func (e *engine) previousTurns(ctx context.Context, sceneID string, beforeOrder int) ([]TurnSummary, error) {
	out, err := e.turnRepo.ListPrevious(ctx, turn.ListPreviousInput{
		SceneID:     sceneID,
		BeforeOrder: beforeOrder,
		Limit:       e.maxPreviousTurns,
	})
	if err != nil {
		return nil, err
	}

	// The window arrives newest first; present it chronologically.
	summaries := make([]TurnSummary, 0, len(out.Turns))
	for i := len(out.Turns) - 1; i >= 0; i-- {
		prev := out.Turns[i]
		actions := prev.Actions
		if actions == nil {
			actions = []entities.Action{}
		}
		summaries = append(summaries, TurnSummary{
			Order:    prev.Order,
			Actions:  actions,
			Reaction: prev.Reaction,
		})
	}
	return summaries, nil
}

func (e *engine) characters(ctx context.Context, participantIDs []string) ([]CharacterContext, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}
	if len(participantIDs) > e.maxCharacters {
		participantIDs = participantIDs[:e.maxCharacters]
	}

	out, err := e.characterRepo.GetMany(ctx, character.GetManyInput{IDs: participantIDs})
	if err != nil {
		return nil, err
	}

	contexts := make([]CharacterContext, 0, len(out.Characters))
	for _, c := range out.Characters {
		contexts = append(contexts, ProjectCharacter(c))
	}
	return contexts, nil
}

// ProjectCharacter flattens a full character sheet into the narrator
// projection: positive numeric skills, pool pairs, condition labels,
// and a digest of the backstory.
func ProjectCharacter(c *entities.Character) CharacterContext {
	sheet := c.Data

	skills := make([]CharacterSkill, 0, len(sheet.Skills))
	for name, sk := range sheet.Skills {
		if v := sk.Reg.Int(); v > 0 {
			skills = append(skills, CharacterSkill{Name: name, Value: v})
		}
	}
	sortSkills(skills)

	stats := &CharacterStats{
		HP:     StatPair{Current: sheet.HitPoints.Current.Int(), Max: sheet.HitPoints.Max.Int()},
		MP:     StatPair{Current: sheet.MagicPoints.Current.Int(), Max: sheet.MagicPoints.Max.Int()},
		Sanity: StatPair{Current: sheet.Sanity.Current.Int(), Max: sheet.Sanity.Max.Int()},
	}

	conditions := []string{}
	if sheet.Status.TemporaryInsanity {
		conditions = append(conditions, "Temporary Insanity")
	}
	if sheet.Status.IndefiniteInsanity {
		conditions = append(conditions, "Indefinite Insanity")
	}
	if sheet.Status.MajorWound {
		conditions = append(conditions, "Major Wound")
	}
	if sheet.Status.Unconscious {
		conditions = append(conditions, "Unconscious")
	}
	if sheet.Status.Dying {
		conditions = append(conditions, "Dying")
	}

	return CharacterContext{
		ID:            c.ID,
		Name:          c.Name,
		Occupation:    sheet.Investigator.Occupation,
		Age:           sheet.Investigator.Age,
		Pronoun:       sheet.Investigator.Pronoun,
		Birthplace:    sheet.Investigator.Birthplace,
		Residence:     sheet.Investigator.Residence,
		Backstory:     digestBackstory(sheet.Story.Backstory),
		Skills:        skills,
		Stats:         stats,
		Conditions:    conditions,
		AIControlled:  c.AIControlled,
		AIPersonality: c.AIPersonality,
	}
}

// digestBackstory joins description, traits, and beliefs into a short
// digest capped at 300 characters.
func digestBackstory(b entities.Backstory) string {
	var parts []string
	if b.PersonalDescription != "" {
		parts = append(parts, truncate(b.PersonalDescription, 100))
	}
	if b.Traits != "" {
		parts = append(parts, "Traits: "+truncate(b.Traits, 80))
	}
	if b.IdeologyBeliefs != "" {
		parts = append(parts, "Beliefs: "+truncate(b.IdeologyBeliefs, 80))
	}
	if len(parts) == 0 {
		return ""
	}
	return truncate(strings.Join(parts, " | "), 300)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func (e *engine) npcs(ctx context.Context, npcIDs []string) ([]NPCContext, error) {
	if len(npcIDs) == 0 {
		return nil, nil
	}
	if len(npcIDs) > maxNPCs {
		npcIDs = npcIDs[:maxNPCs]
	}

	out, err := e.npcRepo.GetMany(ctx, npc.GetManyInput{IDs: npcIDs})
	if err != nil {
		return nil, err
	}

	contexts := make([]NPCContext, 0, len(out.NPCs))
	for _, n := range out.NPCs {
		role := n.Role
		if role == "" {
			role = "neutral"
		}
		status := n.Status
		if status == "" {
			status = "active"
		}
		goals := n.Goals
		if goals == nil {
			goals = []string{}
		}
		knowledge := n.Knowledge
		if knowledge == nil {
			knowledge = []string{}
		}
		contexts = append(contexts, NPCContext{
			ID:              n.ID,
			Name:            n.Name,
			Description:     n.Description,
			Role:            role,
			Personality:     n.Personality,
			Goals:           goals,
			Knowledge:       knowledge,
			CurrentLocation: n.CurrentLocation,
			Status:          status,
		})
	}
	return contexts, nil
}

// sortSkills gives map-sourced skills a stable order.
func sortSkills(skills []CharacterSkill) {
	slices.SortFunc(skills, func(a, b CharacterSkill) int {
		return strings.Compare(a.Name, b.Name)
	})
}
