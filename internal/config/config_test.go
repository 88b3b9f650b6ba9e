package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greymere/keeper-api/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 5, cfg.MaxPreviousTurns)
	assert.Equal(t, 10, cfg.MaxCharacters)
	assert.Equal(t, 3, cfg.MaxLoreChunks)
	assert.Equal(t, 60*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 10*time.Second, cfg.DispatchTimeout)
	assert.False(t, cfg.AsyncTurnProcessing)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("USE_ASYNC_TURN_PROCESSING", "true")
	t.Setenv("MAX_PREVIOUS_TURNS", "8")
	t.Setenv("NARRATOR_BASE_URL", "http://narrator:9999")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.True(t, cfg.AsyncTurnProcessing)
	assert.Equal(t, 8, cfg.MaxPreviousTurns)
	assert.Equal(t, "http://narrator:9999/webhook/coc_dungeonmaster_v2", cfg.TurnWebhookURL())
}

func TestLoadRejectsBadLimits(t *testing.T) {
	t.Setenv("MAX_PREVIOUS_TURNS", "0")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxPreviousTurns")
}

func TestCallbackURL(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://keeper.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t,
		"http://keeper.example.com/api/v1/turns/internal/turn-12ab34cd/complete",
		cfg.CallbackURL("turn-12ab34cd"))
}
