// Package relay pushes turn lifecycle and narrative events to the
// players watching a session. Callers fire and forget; a session with
// nobody connected is not an error.
package relay

//go:generate mockgen -destination=mock/mock_relay.go -package=relaymock github.com/greymere/keeper-api/internal/relay Relay

import (
	"context"
	"log/slog"

	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/realtime"
)

// Relay broadcasts game events to a session's room.
type Relay interface {
	// TurnProcessing announces that a turn entered narrator processing.
	TurnProcessing(ctx context.Context, sessionID, turnID string)

	// TurnCompleted announces a finished turn and where play continues.
	TurnCompleted(ctx context.Context, sessionID, turnID, currentSceneID string, reaction map[string]interface{})

	// TurnFailed announces that narrator processing failed.
	TurnFailed(ctx context.Context, sessionID, turnID, reason string)

	// SceneCreated announces a scene opened by a transition.
	SceneCreated(ctx context.Context, sessionID, sceneID, name string)

	// ChapterCreated announces a chapter opened by a transition.
	ChapterCreated(ctx context.Context, sessionID, chapterID, sceneID, name string)
}

// Config holds the dependencies for the hub-backed relay.
type Config struct {
	Hub    *realtime.Hub
	Logger *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.Hub == nil {
		return errors.InvalidArgument("hub cannot be nil")
	}
	return nil
}

type hubRelay struct {
	hub    *realtime.Hub
	logger *slog.Logger
}

// New creates a relay that fans events out over the websocket hub
func New(cfg *Config) (Relay, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &hubRelay{hub: cfg.Hub, logger: logger}, nil
}

func (r *hubRelay) TurnProcessing(ctx context.Context, sessionID, turnID string) {
	r.emit(ctx, sessionID, realtime.EventTurnProcessing, map[string]interface{}{
		"turn_id": turnID,
		"status":  "processing",
	})
}

func (r *hubRelay) TurnCompleted(ctx context.Context, sessionID, turnID, currentSceneID string, reaction map[string]interface{}) {
	r.emit(ctx, sessionID, realtime.EventTurnCompleted, map[string]interface{}{
		"turn_id":          turnID,
		"current_scene_id": currentSceneID,
		"reaction":         reaction,
	})
}

func (r *hubRelay) TurnFailed(ctx context.Context, sessionID, turnID, reason string) {
	r.emit(ctx, sessionID, realtime.EventTurnFailed, map[string]interface{}{
		"turn_id": turnID,
		"error":   reason,
	})
}

func (r *hubRelay) SceneCreated(ctx context.Context, sessionID, sceneID, name string) {
	r.emit(ctx, sessionID, realtime.EventSceneCreated, map[string]interface{}{
		"scene_id": sceneID,
		"name":     name,
	})
}

func (r *hubRelay) ChapterCreated(ctx context.Context, sessionID, chapterID, sceneID, name string) {
	r.emit(ctx, sessionID, realtime.EventChapterCreated, map[string]interface{}{
		"chapter_id":       chapterID,
		"opening_scene_id": sceneID,
		"name":             name,
	})
}

func (r *hubRelay) emit(ctx context.Context, sessionID, event string, data map[string]interface{}) {
	if sessionID == "" {
		return
	}
	if err := r.hub.Broadcast(sessionID, event, data); err != nil {
		r.logger.WarnContext(ctx, "failed to relay event",
			"event", event, "session_id", sessionID, "error", err)
	}
}
