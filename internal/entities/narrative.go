package entities

// World defines a ruleset and shared lore. Worlds live in the system
// store; everything below them lives in the gamerecords store.
type World struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Name        string   `json:"name"`
	Ruleset     string   `json:"ruleset,omitempty"`
	Description string   `json:"description,omitempty"`
	Meta        Meta     `json:"meta"`
	Changes     []Change `json:"changes"`
}

// PlayerRef is a player reference embedded in a realm.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Realm is a persistent player group within a world. It owns campaigns
// and characters by id-list back-reference.
type Realm struct {
	ID          string                 `json:"id"`
	Kind        Kind                   `json:"kind"`
	WorldID     string                 `json:"world_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Players     []PlayerRef            `json:"players"`
	Characters  []string               `json:"characters"`
	Campaigns   []string               `json:"campaigns"`
	Setting     map[string]interface{} `json:"setting,omitempty"`
	Meta        Meta                   `json:"meta"`
	Changes     []Change               `json:"changes"`
}

// CampaignStatus enumerates campaign lifecycle states.
type CampaignStatus string

// Campaign statuses
const (
	CampaignPlanning  CampaignStatus = "planning"
	CampaignRunning   CampaignStatus = "running"
	CampaignPaused    CampaignStatus = "paused"
	CampaignCompleted CampaignStatus = "completed"
)

// StoryArc holds a campaign's chapter id list and milestones. The
// chapters list is mutated only by chapter CRUD and the transition
// engine.
type StoryArc struct {
	Tagline    string   `json:"tagline,omitempty"`
	Chapters   []string `json:"chapters"`
	Milestones []string `json:"milestones,omitempty"`
}

// Campaign is one story arc played within a realm.
type Campaign struct {
	ID          string                 `json:"id"`
	Kind        Kind                   `json:"kind"`
	RealmID     string                 `json:"realm_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Status      CampaignStatus         `json:"status"`
	StoryArc    *StoryArc              `json:"story_arc,omitempty"`
	Setting     map[string]interface{} `json:"setting,omitempty"`
	Meta        Meta                   `json:"meta"`
	Changes     []Change               `json:"changes"`
}

// NarrativeStatus is the active/completed pair shared by chapters and
// scenes. Completed is terminal; a completed unit is never reopened.
type NarrativeStatus string

// Narrative unit statuses
const (
	NarrativeActive    NarrativeStatus = "active"
	NarrativeCompleted NarrativeStatus = "completed"
)

// Chapter is a major arc segment within a campaign. Scene ids are
// ordered by creation.
type Chapter struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	CampaignID  string          `json:"campaign_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Summary     string          `json:"summary,omitempty"`
	Scenes      []string        `json:"scenes"`
	Status      NarrativeStatus `json:"status"`
	Order       int             `json:"order,omitempty"`
	Meta        Meta            `json:"meta"`
	Changes     []Change        `json:"changes"`
}

// Scene is a story segment within a chapter. Turn count and pacing
// phase are derived from the turns collection, never stored here.
type Scene struct {
	ID           string          `json:"id"`
	Kind         Kind            `json:"kind"`
	ChapterID    string          `json:"chapter_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Summary      string          `json:"summary,omitempty"`
	Participants []string        `json:"participants,omitempty"`
	NPCsPresent  []string        `json:"npcs_present,omitempty"`
	Turns        []string        `json:"turns"`
	Status       NarrativeStatus `json:"status"`
	Meta         Meta            `json:"meta"`
	Changes      []Change        `json:"changes"`
}
