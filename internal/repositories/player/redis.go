package player

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
	playerKeyPrefix = "player:"
	playerIndexKey  = "player:all"

	errPlayerNil     = "player cannot be nil"
	errPlayerIDEmpty = "player ID cannot be empty"
)

// Config holds the dependencies for the redis player repository.
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

// NewRedis creates a new redis-backed player repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func playerKey(id string) string { return playerKeyPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Player == nil {
		return nil, errors.InvalidArgument(errPlayerNil)
	}
	if input.Player.ID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	key := playerKey(input.Player.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("player with ID %s already exists", input.Player.ID)
	}

	data, err := json.Marshal(input.Player)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal player")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, playerIndexKey, input.Player.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create player")
	}

	return &CreateOutput{Player: input.Player}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	result, err := r.client.Get(ctx, playerKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("player with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get player")
	}

	var p entities.Player
	if err := json.Unmarshal([]byte(result), &p); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal player")
	}
	return &GetOutput{Player: &p}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Player == nil {
		return nil, errors.InvalidArgument(errPlayerNil)
	}
	if input.Player.ID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	key := playerKey(input.Player.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("player with ID %s not found", input.Player.ID)
	}

	data, err := json.Marshal(input.Player)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal player")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update player")
	}

	return &UpdateOutput{Player: input.Player}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errPlayerIDEmpty)
	}

	exists, err := r.client.Exists(ctx, playerKey(input.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("player with ID %s not found", input.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, playerKey(input.ID))
	pipe.SRem(ctx, playerIndexKey, input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete player")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, playerIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list players")
	}
	if len(ids) == 0 {
		return &ListOutput{}, nil
	}
	slices.Sort(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = playerKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch players")
	}

	players := make([]*entities.Player, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var p entities.Player
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal player")
		}
		players = append(players, &p)
	}
	return &ListOutput{Players: players}, nil
}
