package actiondraft

import (
	"context"
	"encoding/json"
	"slices"

	redis "github.com/redis/go-redis/v9"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	redisclient "github.com/greymere/keeper-api/internal/redis"
)

const (
	draftKeyPrefix     = "action_draft:"
	sessionIndexPrefix = "action_draft:session:"

	errDraftNil       = "draft cannot be nil"
	errSessionIDEmpty = "session ID cannot be empty"
	errPlayerIDEmpty  = "player ID cannot be empty"
)

// Config holds the dependencies for the redis action draft repository.
type Config struct {
	Client redisclient.Client
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if c.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

type redisRepository struct {
	client redisclient.Client
}

// NewRedis creates a new redis-backed action draft repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func draftKey(sessionID, playerID string) string {
	return draftKeyPrefix + sessionID + ":" + playerID
}

func sessionIndexKey(sessionID string) string {
	return sessionIndexPrefix + sessionID
}

func (r *redisRepository) Upsert(ctx context.Context, input UpsertInput) (*UpsertOutput, error) {
	if input.Draft == nil {
		return nil, errors.InvalidArgument(errDraftNil)
	}
	if input.Draft.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}
	if input.Draft.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	data, err := json.Marshal(input.Draft)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal draft")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, draftKey(input.Draft.SessionID, input.Draft.PlayerID), data, 0)
	pipe.SAdd(ctx, sessionIndexKey(input.Draft.SessionID), input.Draft.PlayerID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert draft")
	}

	return &UpsertOutput{Draft: input.Draft}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	result, err := r.client.Get(ctx, draftKey(input.SessionID, input.PlayerID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf(
				"no draft for player %s in session %s", input.PlayerID, input.SessionID)
		}
		return nil, errors.Wrapf(err, "failed to get draft")
	}

	var d entities.ActionDraft
	if err := json.Unmarshal([]byte(result), &d); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal draft")
	}
	return &GetOutput{Draft: &d}, nil
}

func (r *redisRepository) ListBySession(ctx context.Context, input ListBySessionInput) (*ListBySessionOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	playerIDs, err := r.client.SMembers(ctx, sessionIndexKey(input.SessionID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list session drafts")
	}
	if len(playerIDs) == 0 {
		return &ListBySessionOutput{}, nil
	}
	slices.Sort(playerIDs)

	keys := make([]string, len(playerIDs))
	for i, pid := range playerIDs {
		keys[i] = draftKey(input.SessionID, pid)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch drafts")
	}

	drafts := make([]*entities.ActionDraft, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var d entities.ActionDraft
		if err := json.Unmarshal([]byte(str), &d); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal draft")
		}
		drafts = append(drafts, &d)
	}
	return &ListBySessionOutput{Drafts: drafts}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}
	if input.PlayerID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, draftKey(input.SessionID, input.PlayerID))
	pipe.SRem(ctx, sessionIndexKey(input.SessionID), input.PlayerID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete draft")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ClearSession(ctx context.Context, input ClearSessionInput) (*ClearSessionOutput, error) {
	if input.SessionID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	playerIDs, err := r.client.SMembers(ctx, sessionIndexKey(input.SessionID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list session drafts")
	}
	if len(playerIDs) == 0 {
		return &ClearSessionOutput{}, nil
	}

	keys := make([]string, 0, len(playerIDs)+1)
	for _, pid := range playerIDs {
		keys = append(keys, draftKey(input.SessionID, pid))
	}
	keys = append(keys, sessionIndexKey(input.SessionID))

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to clear session drafts")
	}
	return &ClearSessionOutput{Removed: len(playerIDs)}, nil
}
