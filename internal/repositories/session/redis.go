package session

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
	sessionKeyPrefix    = "session:"
	campaignIndexPrefix = "session:campaign:"

	errSessionNil     = "session cannot be nil"
	errSessionIDEmpty = "session ID cannot be empty"
)

// Config holds the dependencies for the redis session repository.
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

// NewRedis creates a new redis-backed session repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func sessionKey(id string) string       { return sessionKeyPrefix + id }
func campaignIndexKey(id string) string { return campaignIndexPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}
	if input.Session.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	key := sessionKey(input.Session.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("session with ID %s already exists", input.Session.ID)
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal session")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, campaignIndexKey(input.Session.CampaignID), input.Session.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create session")
	}

	return &CreateOutput{Session: input.Session}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	result, err := r.client.Get(ctx, sessionKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("session with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get session")
	}

	var s entities.Session
	if err := json.Unmarshal([]byte(result), &s); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal session")
	}
	return &GetOutput{Session: &s}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Session == nil {
		return nil, errors.InvalidArgument(errSessionNil)
	}
	if input.Session.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	key := sessionKey(input.Session.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("session with ID %s not found", input.Session.ID)
	}

	data, err := json.Marshal(input.Session)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal session")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update session")
	}

	return &UpdateOutput{Session: input.Session}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSessionIDEmpty)
	}

	out, err := r.Get(ctx, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey(input.ID))
	pipe.SRem(ctx, campaignIndexKey(out.Session.CampaignID), input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete session")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	ids, err := r.client.SMembers(ctx, campaignIndexKey(input.CampaignID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list campaign sessions")
	}
	if len(ids) == 0 {
		return &ListByCampaignOutput{}, nil
	}
	slices.Sort(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch sessions")
	}

	sessions := make([]*entities.Session, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var s entities.Session
		if err := json.Unmarshal([]byte(str), &s); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal session")
		}
		sessions = append(sessions, &s)
	}
	return &ListByCampaignOutput{Sessions: sessions}, nil
}
