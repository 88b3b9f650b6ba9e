// Package skillcheck detects skill checks in player action text and
// rolls them with Call of Cthulhu 7th Edition percentile mechanics.
package skillcheck

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/greymere/keeper-api/internal/engine/assembly"
	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
)

// Difficulty levels.
const (
	DifficultyRegular = "Regular"
	DifficultyHard    = "Hard"
	DifficultyExtreme = "Extreme"
)

// Success levels in precedence order.
const (
	CriticalSuccess = "Critical Success"
	ExtremeSuccess  = "Extreme Success"
	HardSuccess     = "Hard Success"
	RegularSuccess  = "Regular Success"
	Failure         = "Failure"
	Fumble          = "Fumble"
)

// DetectedCheck is a skill check inferred from action text.
type DetectedCheck struct {
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
	SkillName     string `json:"skill_name"`
	Difficulty    string `json:"difficulty"`
	Reason        string `json:"reason"`
}

type trigger struct {
	pattern *regexp.Regexp
	skill   string
}

// Keyword triggers, checked in order against the combined action text.
var triggers = []trigger{
	// Investigation
	{regexp.MustCompile(`(?i)\b(examine|inspect|search|look\s+for|find)\b`), "Spot Hidden"},
	{regexp.MustCompile(`(?i)\b(listen|hear|eavesdrop)\b`), "Listen"},
	{regexp.MustCompile(`(?i)\b(library|research|study|read|books)\b`), "Library Use"},
	{regexp.MustCompile(`(?i)\b(track|follow\s+trail)\b`), "Track"},

	// Knowledge
	{regexp.MustCompile(`(?i)\b(recall|remember|know|recognize)\b`), "INT"},
	{regexp.MustCompile(`(?i)\b(mythos|elder\s+sign|ritual)\b`), "Cthulhu Mythos"},
	{regexp.MustCompile(`(?i)\b(history|historical)\b`), "History"},
	{regexp.MustCompile(`(?i)\b(occult|magic|supernatural)\b`), "Occult"},

	// Social
	{regexp.MustCompile(`(?i)\b(convince|persuade|negotiate)\b`), "Persuade"},
	{regexp.MustCompile(`(?i)\b(charm|seduce|flirt)\b`), "Charm"},
	{regexp.MustCompile(`(?i)\b(intimidate|threaten)\b`), "Intimidate"},
	{regexp.MustCompile(`(?i)\b(fast\s+talk|lie|deceive)\b`), "Fast Talk"},
	{regexp.MustCompile(`(?i)\b(psychoanalyze|therapy)\b`), "Psychoanalysis"},

	// Physical
	{regexp.MustCompile(`(?i)\b(sneak|hide|stealth)\b`), "Stealth"},
	{regexp.MustCompile(`(?i)\b(climb)\b`), "Climb"},
	{regexp.MustCompile(`(?i)\b(jump|leap)\b`), "Jump"},
	{regexp.MustCompile(`(?i)\b(dodge|evade)\b`), "Dodge"},
	{regexp.MustCompile(`(?i)\b(swim)\b`), "Swim"},

	// Combat
	{regexp.MustCompile(`(?i)\b(shoot|fire|aim)\b`), "Firearms"},
	{regexp.MustCompile(`(?i)\b(punch|hit|strike|brawl)\b`), "Fighting (Brawl)"},
	{regexp.MustCompile(`(?i)\b(throw)\b`), "Throw"},

	// Technical
	{regexp.MustCompile(`(?i)\b(repair|fix)\b`), "Mechanical Repair"},
	{regexp.MustCompile(`(?i)\b(drive|pilot)\b`), "Drive Auto"},
	{regexp.MustCompile(`(?i)\b(lockpick|pick\s+lock)\b`), "Locksmith"},
	{regexp.MustCompile(`(?i)\b(operate\s+machinery)\b`), "Operate Heavy Machinery"},

	// Medical
	{regexp.MustCompile(`(?i)\b(first\s+aid|bandage|treat\s+wound)\b`), "First Aid"},
	{regexp.MustCompile(`(?i)\b(diagnose|medicine|surgery)\b`), "Medicine"},
}

var extremeKeywords = []string{
	"in darkness", "pitch black", "blindfolded", "while running",
	"under fire", "panic", "terrified",
}

var hardKeywords = []string{
	"quickly", "hurried", "dim light", "distracted",
	"carefully", "precisely", "hidden", "concealed",
}

// Base values used when the sheet carries no rating for the skill.
var defaultSkillValues = map[string]int{
	"Spot Hidden":      25,
	"Listen":           25,
	"Library Use":      25,
	"Persuade":         15,
	"Charm":            15,
	"Intimidate":       15,
	"Fast Talk":        5,
	"Stealth":          10,
	"Fighting (Brawl)": 25,
	"Firearms":         20,
	"First Aid":        30,
	"Psychoanalysis":   1,
	"Cthulhu Mythos":   0,
}

const fallbackSkillValue = 20

// Config holds the dependencies for the skill check engine.
type Config struct {
	Roller Roller
	Logger *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.Roller == nil {
		return errors.InvalidArgument("roller cannot be nil")
	}
	return nil
}

// Engine detects and rolls skill checks.
type Engine struct {
	roller Roller
	logger *slog.Logger
}

// New creates a new skill check engine
func New(cfg *Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{roller: cfg.Roller, logger: logger}, nil
}

// Detect scans player actions for skill triggers. Each matching rule
// yields one check for the acting character; actions by actors outside
// the character list are skipped.
func (e *Engine) Detect(ctx context.Context, actions []entities.Action, characters []assembly.CharacterContext) []DetectedCheck {
	charMap := make(map[string]assembly.CharacterContext, len(characters))
	for _, c := range characters {
		charMap[c.ID] = c
	}

	var detected []DetectedCheck
	for _, action := range actions {
		c, ok := charMap[action.ActorID]
		if !ok {
			continue
		}

		var parts []string
		if action.Speak != "" {
			parts = append(parts, action.Speak)
		}
		if action.Act != "" {
			parts = append(parts, action.Act)
		}
		if action.OOC != "" {
			parts = append(parts, action.OOC)
		}
		combined := strings.Join(parts, " ")

		for _, tr := range triggers {
			if !tr.pattern.MatchString(combined) {
				continue
			}
			difficulty := determineDifficulty(combined)
			detected = append(detected, DetectedCheck{
				CharacterID:   c.ID,
				CharacterName: c.Name,
				SkillName:     tr.skill,
				Difficulty:    difficulty,
				Reason:        fmt.Sprintf("Action contains '%s' trigger", tr.pattern.String()),
			})
			e.logger.InfoContext(ctx, "detected skill check",
				"skill", tr.skill, "character", c.Name, "difficulty", difficulty)
		}
	}
	return detected
}

func determineDifficulty(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range extremeKeywords {
		if strings.Contains(lower, kw) {
			return DifficultyExtreme
		}
	}
	for _, kw := range hardKeywords {
		if strings.Contains(lower, kw) {
			return DifficultyHard
		}
	}
	return DifficultyRegular
}

// Roll rolls each detected check against the character's skill value.
// Checks whose character is absent from the list are skipped.
func (e *Engine) Roll(ctx context.Context, detected []DetectedCheck, characters []assembly.CharacterContext) ([]assembly.SkillCheckContext, error) {
	charMap := make(map[string]assembly.CharacterContext, len(characters))
	for _, c := range characters {
		charMap[c.ID] = c
	}

	var results []assembly.SkillCheckContext
	for _, check := range detected {
		c, ok := charMap[check.CharacterID]
		if !ok {
			e.logger.WarnContext(ctx, "character not found for skill check",
				"character_id", check.CharacterID)
			continue
		}

		skillValue := findSkillValue(c, check.SkillName)
		if skillValue == 0 {
			skillValue = defaultSkillValue(check.SkillName)
		}

		rolled, err := e.roller.RollD100()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to roll d100")
		}

		targetRegular := skillValue
		targetHard := skillValue / 2
		targetExtreme := skillValue / 5

		level, success := determineSuccess(rolled, targetRegular, targetHard, targetExtreme)

		formatted := fmt.Sprintf("%s rolled %s: %d/%d (%s)",
			c.Name, check.SkillName, rolled, skillValue, level)

		results = append(results, assembly.SkillCheckContext{
			CharacterID:   c.ID,
			CharacterName: c.Name,
			SkillName:     check.SkillName,
			SkillValue:    skillValue,
			Difficulty:    check.Difficulty,
			Rolled:        rolled,
			TargetRegular: targetRegular,
			TargetHard:    targetHard,
			TargetExtreme: targetExtreme,
			SuccessLevel:  level,
			Success:       success,
			Formatted:     formatted,
		})

		e.logger.InfoContext(ctx, "rolled skill check", "result", formatted)
	}
	return results, nil
}

// findSkillValue tries an exact name match, then a prefix match so
// specializations like "Fighting (Brawl)" fall back to "Fighting".
func findSkillValue(c assembly.CharacterContext, skillName string) int {
	lower := strings.ToLower(skillName)
	for _, sk := range c.Skills {
		if strings.ToLower(sk.Name) == lower {
			return sk.Value
		}
	}

	base := strings.ToLower(strings.TrimSpace(strings.SplitN(skillName, "(", 2)[0]))
	for _, sk := range c.Skills {
		if strings.HasPrefix(strings.ToLower(sk.Name), base) {
			return sk.Value
		}
	}
	return 0
}

func defaultSkillValue(skillName string) int {
	if v, ok := defaultSkillValues[skillName]; ok {
		return v
	}
	return fallbackSkillValue
}

// determineSuccess applies the 7e precedence: a natural 1 always
// crits and 96+ always fumbles, regardless of skill value.
func determineSuccess(rolled, targetRegular, targetHard, targetExtreme int) (string, bool) {
	switch {
	case rolled == 1:
		return CriticalSuccess, true
	case rolled >= 96:
		return Fumble, false
	case rolled <= targetExtreme:
		return ExtremeSuccess, true
	case rolled <= targetHard:
		return HardSuccess, true
	case rolled <= targetRegular:
		return RegularSuccess, true
	default:
		return Failure, false
	}
}
