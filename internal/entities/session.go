package entities

import "time"

// Player is a registered player, stored in the system store.
type Player struct {
	ID      string   `json:"id"`
	Kind    Kind     `json:"kind"`
	Name    string   `json:"name"`
	Meta    Meta     `json:"meta"`
	Changes []Change `json:"changes"`
}

// Attendance tracks who showed up to a session.
type Attendance struct {
	PlayersPresent []string `json:"players_present"`
	PlayersAbsent  []string `json:"players_absent"`
}

// StoryLinks points a session at the narrative units it covered.
type StoryLinks struct {
	Chapters           []string `json:"chapters"`
	Scenes             []string `json:"scenes"`
	ActiveChapterIndex *int     `json:"active_chapter_index,omitempty"`
	ActiveSceneIndex   *int     `json:"active_scene_index,omitempty"`
}

// Session is one real-world play instance. Realtime rooms are keyed by
// session id.
type Session struct {
	ID             string      `json:"id"`
	Kind           Kind        `json:"kind"`
	RealmID        string      `json:"realm_id"`
	CampaignID     string      `json:"campaign_id"`
	SessionNumber  int         `json:"session_number"`
	MasterPlayerID string      `json:"master_player_id,omitempty"`
	Attendance     Attendance  `json:"attendance"`
	StoryLinks     *StoryLinks `json:"story_links,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	Meta           Meta        `json:"meta"`
	Changes        []Change    `json:"changes"`
}

// ActionDraft is per-player UI state for the action being composed,
// cleared once the turn is submitted.
type ActionDraft struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	PlayerID    string    `json:"player_id"`
	CharacterID string    `json:"character_id"`
	Speak       string    `json:"speak,omitempty"`
	Act         string    `json:"act,omitempty"`
	Appearance  string    `json:"appearance,omitempty"`
	Emotion     string    `json:"emotion,omitempty"`
	OOC         string    `json:"ooc,omitempty"`
	Order       int       `json:"order"`
	Ready       bool      `json:"ready"`
	UpdatedAt   time.Time `json:"updated_at"`
}
