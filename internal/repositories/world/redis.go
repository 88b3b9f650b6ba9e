package world

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
	worldKeyPrefix = "world:"
	worldIndexKey  = "world:all"

	errWorldNil     = "world cannot be nil"
	errWorldIDEmpty = "world ID cannot be empty"
)

// Config holds the dependencies for the redis world repository.
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

// NewRedis creates a new redis-backed world repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func worldKey(id string) string { return worldKeyPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.World == nil {
		return nil, errors.InvalidArgument(errWorldNil)
	}
	if input.World.ID == "" {
		return nil, errors.InvalidArgument(errWorldIDEmpty)
	}

	key := worldKey(input.World.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("world with ID %s already exists", input.World.ID)
	}

	data, err := json.Marshal(input.World)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal world")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, worldIndexKey, input.World.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create world")
	}

	return &CreateOutput{World: input.World}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errWorldIDEmpty)
	}

	result, err := r.client.Get(ctx, worldKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("world with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get world")
	}

	var w entities.World
	if err := json.Unmarshal([]byte(result), &w); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal world")
	}
	return &GetOutput{World: &w}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.World == nil {
		return nil, errors.InvalidArgument(errWorldNil)
	}
	if input.World.ID == "" {
		return nil, errors.InvalidArgument(errWorldIDEmpty)
	}

	key := worldKey(input.World.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("world with ID %s not found", input.World.ID)
	}

	data, err := json.Marshal(input.World)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal world")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update world")
	}

	return &UpdateOutput{World: input.World}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errWorldIDEmpty)
	}

	exists, err := r.client.Exists(ctx, worldKey(input.ID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("world with ID %s not found", input.ID)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, worldKey(input.ID))
	pipe.SRem(ctx, worldIndexKey, input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete world")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	ids, err := r.client.SMembers(ctx, worldIndexKey).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list worlds")
	}
	if len(ids) == 0 {
		return &ListOutput{}, nil
	}
	slices.Sort(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = worldKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch worlds")
	}

	worlds := make([]*entities.World, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var w entities.World
		if err := json.Unmarshal([]byte(str), &w); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal world")
		}
		worlds = append(worlds, &w)
	}
	return &ListOutput{Worlds: worlds}, nil
}
