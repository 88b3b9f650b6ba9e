package entities

// Controller describes who drives a character: a human player, the GM,
// or an AI agent with a personality tag.
type Controller struct {
	Owner string `json:"owner"`
	Mode  string `json:"mode"`
	Agent string `json:"agent,omitempty"`
}

// Controller modes
const (
	ControlPlayer = "player"
	ControlGM     = "gm"
	ControlAI     = "ai"
)

// InvestigatorInfo holds the sheet's header fields.
type InvestigatorInfo struct {
	Name       string `json:"name"`
	Birthplace string `json:"birthplace"`
	Pronoun    string `json:"pronoun"`
	Occupation string `json:"occupation"`
	Residence  string `json:"residence"`
	Age        string `json:"age"`
}

// Characteristics are the eight percentile characteristics.
type Characteristics struct {
	STR StatValue `json:"STR"`
	CON StatValue `json:"CON"`
	DEX StatValue `json:"DEX"`
	APP StatValue `json:"APP"`
	INT StatValue `json:"INT"`
	POW StatValue `json:"POW"`
	SIZ StatValue `json:"SIZ"`
	EDU StatValue `json:"EDU"`
}

// PointPool is a current/max resource pool (hit points, magic points).
type PointPool struct {
	Max     StatValue `json:"max"`
	Current StatValue `json:"current"`
}

// SanityPool extends PointPool with the insanity threshold.
type SanityPool struct {
	Max     StatValue `json:"max"`
	Current StatValue `json:"current"`
	Insane  StatValue `json:"insane"`
}

// LuckPool tracks starting and current luck.
type LuckPool struct {
	Starting StatValue `json:"starting"`
	Current  StatValue `json:"current"`
}

// StatusFlags are the sheet's active condition toggles.
type StatusFlags struct {
	TemporaryInsanity  bool `json:"temporary_insanity"`
	IndefiniteInsanity bool `json:"indefinite_insanity"`
	MajorWound         bool `json:"major_wound"`
	Unconscious        bool `json:"unconscious"`
	Dying              bool `json:"dying"`
}

// Skill is one skill entry. Reg is the player-set rating; Base is the
// book default used when copying into Reg, not persisted authoritative
// data.
type Skill struct {
	Base StatValue `json:"base"`
	Reg  StatValue `json:"reg"`
	Used bool      `json:"used"`
}

// Weapon is one combat weapon row.
type Weapon struct {
	Name       string    `json:"name"`
	Skill      string    `json:"skill"`
	Damage     string    `json:"damage"`
	NumAttacks string    `json:"num_attacks"`
	Range      string    `json:"range"`
	Ammo       string    `json:"ammo"`
	Malf       StatValue `json:"malf"`
}

// Combat holds weapons and movement stats.
type Combat struct {
	Weapons     []Weapon  `json:"weapons"`
	Move        int       `json:"move"`
	Build       StatValue `json:"build"`
	DamageBonus string    `json:"damage_bonus"`
}

// Backstory holds the sheet's narrative fields.
type Backstory struct {
	PersonalDescription       string `json:"personal_description"`
	IdeologyBeliefs           string `json:"ideology_beliefs"`
	SignificantPeople         string `json:"significant_people"`
	MeaningfulLocations       string `json:"meaningful_locations"`
	TreasuredPossessions      string `json:"treasured_possessions"`
	Traits                    string `json:"traits"`
	InjuriesScars             string `json:"injuries_scars"`
	PhobiasManias             string `json:"phobias_manias"`
	ArcaneTomesSpells         string `json:"arcane_tomes_spells"`
	EncountersStrangeEntities string `json:"encounters_strange_entities"`
}

// Story wraps backstory with the player's free-form narrative.
type Story struct {
	MyStory   string    `json:"my_story"`
	Backstory Backstory `json:"backstory"`
}

// Wealth holds spending level and assets.
type Wealth struct {
	SpendingLevel string `json:"spending_level"`
	Cash          string `json:"cash"`
	Assets        string `json:"assets"`
}

// CharacterSheet is the full investigator sheet.
type CharacterSheet struct {
	Investigator    InvestigatorInfo `json:"investigator"`
	Characteristics Characteristics  `json:"characteristics"`
	HitPoints       PointPool        `json:"hit_points"`
	MagicPoints     PointPool        `json:"magic_points"`
	Luck            LuckPool         `json:"luck"`
	Sanity          SanityPool       `json:"sanity"`
	Status          StatusFlags      `json:"status"`
	Skills          map[string]Skill `json:"skills"`
	Combat          Combat           `json:"combat"`
	Story           Story            `json:"story"`
	GearPossessions string           `json:"gear_possessions"`
	Wealth          Wealth           `json:"wealth"`
}

// Character is a player character. It belongs to a realm and is shared
// across that realm's campaigns.
type Character struct {
	ID               string         `json:"id"`
	Kind             Kind           `json:"kind"`
	Type             string         `json:"type,omitempty"`
	Name             string         `json:"name"`
	RealmID          string         `json:"realm_id"`
	Description      string         `json:"description,omitempty"`
	Controller       Controller     `json:"controller"`
	Data             CharacterSheet `json:"data"`
	OOCNotes         string         `json:"ooc_notes,omitempty"`
	ProfileCompleted bool           `json:"profile_completed"`
	AIControlled     bool           `json:"ai_controlled"`
	AIPersonality    string         `json:"ai_personality,omitempty"`
	Visibility       string         `json:"visibility,omitempty"`
	Meta             Meta           `json:"meta"`
	Changes          []Change       `json:"changes"`
}

// NPC is a narrator-driven character scoped to a campaign. Context
// assembly consumes it read-only.
type NPC struct {
	ID              string   `json:"id"`
	Kind            Kind     `json:"kind"`
	CampaignID      string   `json:"campaign_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	Role            string   `json:"role,omitempty"`
	Personality     string   `json:"personality,omitempty"`
	Goals           []string `json:"goals,omitempty"`
	Knowledge       []string `json:"knowledge,omitempty"`
	CurrentLocation string   `json:"current_location,omitempty"`
	Status          string   `json:"status,omitempty"`
	Meta            Meta     `json:"meta"`
	Changes         []Change `json:"changes"`
}
