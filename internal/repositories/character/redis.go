package character

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
	characterKeyPrefix = "character:"
	realmIndexPrefix   = "character:realm:"

	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
)

// Config holds the dependencies for the redis character repository.
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

// NewRedis creates a new redis-backed character repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func characterKey(id string) string  { return characterKeyPrefix + id }
func realmIndexKey(id string) string { return realmIndexPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.Character.RealmID == "" {
		return nil, errors.InvalidArgument("realm ID cannot be empty")
	}

	key := characterKey(input.Character.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("character with ID %s already exists", input.Character.ID)
	}

	data, err := json.Marshal(input.Character)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, realmIndexKey(input.Character.RealmID), input.Character.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create character")
	}

	return &CreateOutput{Character: input.Character}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	result, err := r.client.Get(ctx, characterKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("character with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get character")
	}

	var c entities.Character
	if err := json.Unmarshal([]byte(result), &c); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character")
	}
	return &GetOutput{Character: &c}, nil
}

func (r *redisRepository) GetMany(ctx context.Context, input GetManyInput) (*GetManyOutput, error) {
	if len(input.IDs) == 0 {
		return &GetManyOutput{}, nil
	}

	keys := make([]string, len(input.IDs))
	for i, id := range input.IDs {
		keys[i] = characterKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch characters")
	}

	characters := make([]*entities.Character, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var c entities.Character
		if err := json.Unmarshal([]byte(str), &c); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal character")
		}
		characters = append(characters, &c)
	}
	return &GetManyOutput{Characters: characters}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	key := characterKey(input.Character.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("character with ID %s not found", input.Character.ID)
	}

	data, err := json.Marshal(input.Character)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update character")
	}

	return &UpdateOutput{Character: input.Character}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	out, err := r.Get(ctx, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, characterKey(input.ID))
	pipe.SRem(ctx, realmIndexKey(out.Character.RealmID), input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete character")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByRealm(ctx context.Context, input ListByRealmInput) (*ListByRealmOutput, error) {
	if input.RealmID == "" {
		return nil, errors.InvalidArgument("realm ID cannot be empty")
	}

	ids, err := r.client.SMembers(ctx, realmIndexKey(input.RealmID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list realm characters")
	}
	slices.Sort(ids)

	out, err := r.GetMany(ctx, GetManyInput{IDs: ids})
	if err != nil {
		return nil, err
	}
	return &ListByRealmOutput{Characters: out.Characters}, nil
}
