// Package config loads process configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/greymere/keeper-api/internal/errors"
)

// Config holds every environment-tunable parameter of the server.
type Config struct {
	// HTTP listen port.
	Port int `env:"PORT" envDefault:"8000"`

	// Externally reachable base URL of this backend; embedded into the
	// callback URLs handed to the narrator engine.
	BackendBaseURL string `env:"BACKEND_BASE_URL" envDefault:"http://backend:8000"`

	// Narrator workflow engine.
	NarratorBaseURL     string        `env:"NARRATOR_BASE_URL" envDefault:"http://n8n:5678"`
	TurnWebhookPath     string        `env:"NARRATOR_TURN_WEBHOOK" envDefault:"/webhook/coc_dungeonmaster_v2"`
	OracleWebhookPath   string        `env:"NARRATOR_ORACLE_WEBHOOK" envDefault:"/webhook/coc_prophet"`
	GenerationTimeout   time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
	DispatchTimeout     time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"10s"`
	AsyncTurnProcessing bool          `env:"USE_ASYNC_TURN_PROCESSING" envDefault:"false"`

	// Context assembly limits.
	MaxPreviousTurns int `env:"MAX_PREVIOUS_TURNS" envDefault:"5"`
	MaxCharacters    int `env:"MAX_CHARACTERS" envDefault:"10"`
	MaxLoreChunks    int `env:"MAX_LORE_CHUNKS" envDefault:"3"`

	// Document stores. The system store holds shared reference data
	// (worlds, players); the gamerecords store holds narrative records.
	SystemRedisAddr      string `env:"SYSTEM_REDIS_ADDR" envDefault:"localhost:6379"`
	SystemRedisDB        int    `env:"SYSTEM_REDIS_DB" envDefault:"0"`
	GameRecordsRedisAddr string `env:"GAMERECORDS_REDIS_ADDR" envDefault:"localhost:6379"`
	GameRecordsRedisDB   int    `env:"GAMERECORDS_REDIS_DB" envDefault:"1"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the env tags cannot express.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.MaxPreviousTurns <= 0 {
		vb.Fieldf("MaxPreviousTurns", "must be positive, got %d", c.MaxPreviousTurns)
	}
	if c.MaxCharacters <= 0 {
		vb.Fieldf("MaxCharacters", "must be positive, got %d", c.MaxCharacters)
	}
	if c.MaxLoreChunks < 0 {
		vb.Fieldf("MaxLoreChunks", "must not be negative, got %d", c.MaxLoreChunks)
	}
	if c.GenerationTimeout <= 0 {
		vb.Field("GenerationTimeout", "must be positive")
	}
	if c.DispatchTimeout <= 0 {
		vb.Field("DispatchTimeout", "must be positive")
	}

	return vb.Build()
}

// TurnWebhookURL is the narrator endpoint turn bundles are dispatched to.
func (c *Config) TurnWebhookURL() string {
	return c.NarratorBaseURL + c.TurnWebhookPath
}

// OracleWebhookURL is the narrator endpoint for knowledge-base questions.
func (c *Config) OracleWebhookURL() string {
	return c.NarratorBaseURL + c.OracleWebhookPath
}

// CallbackURL builds the completion callback for one turn.
func (c *Config) CallbackURL(turnID string) string {
	return fmt.Sprintf("%s/api/v1/turns/internal/%s/complete", c.BackendBaseURL, turnID)
}
