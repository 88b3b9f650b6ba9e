package assembly

import (
	"time"

	"github.com/greymere/keeper-api/internal/entities"
)

// RealmContext provides overall tone and notes to the narrator.
type RealmContext struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	Setting map[string]interface{} `json:"setting,omitempty"`
}

// CampaignContext carries the campaign setting and story arc.
type CampaignContext struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Setting  map[string]interface{} `json:"setting,omitempty"`
	StoryArc *entities.StoryArc     `json:"story_arc,omitempty"`
}

// ChapterContext identifies the current chapter.
type ChapterContext struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Summary string `json:"summary,omitempty"`
	Order   int    `json:"order"`
}

// SceneContext describes the current scene plus derived pacing state.
type SceneContext struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Location     string   `json:"location,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	Status       string   `json:"status"`
	Participants []string `json:"participants"`
	TurnCount    int      `json:"turn_count"`
	PacingPhase  string   `json:"pacing_phase"`
}

// Pacing phases derived from the completed turn count.
const (
	PacingEstablishment = "establishment"
	PacingUnease        = "unease"
	PacingInvestigation = "investigation"
	PacingRevelation    = "revelation"
	PacingResolution    = "resolution"
)

// TurnSummary is one previous turn in the context window.
type TurnSummary struct {
	Order    int                `json:"order"`
	Actions  []entities.Action  `json:"actions"`
	Reaction *entities.Reaction `json:"reaction,omitempty"`
}

// CharacterSkill is a flattened skill entry with a resolved numeric
// value.
type CharacterSkill struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// StatPair is a current/max pair projected from a pool.
type StatPair struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// CharacterStats is the simplified pool projection.
type CharacterStats struct {
	Sanity StatPair `json:"sanity"`
	HP     StatPair `json:"hp"`
	MP     StatPair `json:"mp"`
}

// CharacterContext is the participant projection handed to the
// narrator and to skill detection.
type CharacterContext struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Occupation    string           `json:"occupation,omitempty"`
	Age           string           `json:"age,omitempty"`
	Pronoun       string           `json:"pronoun,omitempty"`
	Birthplace    string           `json:"birthplace,omitempty"`
	Residence     string           `json:"residence,omitempty"`
	Backstory     string           `json:"backstory,omitempty"`
	Skills        []CharacterSkill `json:"skills"`
	Stats         *CharacterStats  `json:"stats,omitempty"`
	Conditions    []string         `json:"conditions"`
	AIControlled  bool             `json:"ai_controlled"`
	AIPersonality string           `json:"ai_personality,omitempty"`
}

// LoreChunk is one retrieved lore passage.
type LoreChunk struct {
	Source         string  `json:"source"`
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score"`
}

// NPCContext is the simplified NPC projection.
type NPCContext struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Role            string   `json:"role"`
	Personality     string   `json:"personality"`
	Goals           []string `json:"goals"`
	Knowledge       []string `json:"knowledge"`
	CurrentLocation string   `json:"current_location,omitempty"`
	Status          string   `json:"status"`
}

// SkillCheckContext is a pre-rolled skill check embedded in the bundle.
type SkillCheckContext struct {
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
	SkillName     string `json:"skill_name"`
	SkillValue    int    `json:"skill_value"`
	Difficulty    string `json:"difficulty"`
	Rolled        int    `json:"rolled"`
	TargetRegular int    `json:"target_regular"`
	TargetHard    int    `json:"target_hard"`
	TargetExtreme int    `json:"target_extreme"`
	SuccessLevel  string `json:"success_level"`
	Success       bool   `json:"success"`
	Formatted     string `json:"formatted"`
}

// ContextData groups all assembled context pieces. Missing ancestors
// leave their piece nil rather than failing assembly.
type ContextData struct {
	Realm         *RealmContext       `json:"realm,omitempty"`
	Campaign      *CampaignContext    `json:"campaign,omitempty"`
	Chapter       *ChapterContext     `json:"chapter,omitempty"`
	Scene         *SceneContext       `json:"scene,omitempty"`
	PreviousTurns []TurnSummary       `json:"previous_turns"`
	Characters    []CharacterContext  `json:"characters"`
	NPCs          []NPCContext        `json:"npcs"`
	LoreContext   []LoreChunk         `json:"lore_context"`
	SkillChecks   []SkillCheckContext `json:"skill_checks"`
}

// ContextBundle is the complete payload dispatched to the narrator.
// Actions are duplicated at the top level because the downstream
// workflow reads them there.
type ContextBundle struct {
	TurnID      string            `json:"turn_id"`
	CallbackURL string            `json:"callback_url"`
	Timestamp   time.Time         `json:"timestamp"`
	Context     ContextData       `json:"context"`
	Actions     []entities.Action `json:"actions"`
}
