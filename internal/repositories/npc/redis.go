package npc

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
	npcKeyPrefix        = "npc:"
	campaignIndexPrefix = "npc:campaign:"

	errNPCNil     = "npc cannot be nil"
	errNPCIDEmpty = "npc ID cannot be empty"
)

// Config holds the dependencies for the redis NPC repository.
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

// NewRedis creates a new redis-backed NPC repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func npcKey(id string) string           { return npcKeyPrefix + id }
func campaignIndexKey(id string) string { return campaignIndexPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.NPC == nil {
		return nil, errors.InvalidArgument(errNPCNil)
	}
	if input.NPC.ID == "" {
		return nil, errors.InvalidArgument(errNPCIDEmpty)
	}
	if input.NPC.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	key := npcKey(input.NPC.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("npc with ID %s already exists", input.NPC.ID)
	}

	data, err := json.Marshal(input.NPC)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal npc")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, campaignIndexKey(input.NPC.CampaignID), input.NPC.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create npc")
	}

	return &CreateOutput{NPC: input.NPC}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errNPCIDEmpty)
	}

	result, err := r.client.Get(ctx, npcKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("npc with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get npc")
	}

	var n entities.NPC
	if err := json.Unmarshal([]byte(result), &n); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal npc")
	}
	return &GetOutput{NPC: &n}, nil
}

func (r *redisRepository) GetMany(ctx context.Context, input GetManyInput) (*GetManyOutput, error) {
	if len(input.IDs) == 0 {
		return &GetManyOutput{}, nil
	}

	keys := make([]string, len(input.IDs))
	for i, id := range input.IDs {
		keys[i] = npcKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch npcs")
	}

	npcs := make([]*entities.NPC, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var n entities.NPC
		if err := json.Unmarshal([]byte(str), &n); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal npc")
		}
		npcs = append(npcs, &n)
	}
	return &GetManyOutput{NPCs: npcs}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.NPC == nil {
		return nil, errors.InvalidArgument(errNPCNil)
	}
	if input.NPC.ID == "" {
		return nil, errors.InvalidArgument(errNPCIDEmpty)
	}

	key := npcKey(input.NPC.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("npc with ID %s not found", input.NPC.ID)
	}

	data, err := json.Marshal(input.NPC)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal npc")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update npc")
	}

	return &UpdateOutput{NPC: input.NPC}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errNPCIDEmpty)
	}

	out, err := r.Get(ctx, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, npcKey(input.ID))
	pipe.SRem(ctx, campaignIndexKey(out.NPC.CampaignID), input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete npc")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	ids, err := r.client.SMembers(ctx, campaignIndexKey(input.CampaignID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list campaign npcs")
	}
	slices.Sort(ids)

	out, err := r.GetMany(ctx, GetManyInput{IDs: ids})
	if err != nil {
		return nil, err
	}
	return &ListByCampaignOutput{NPCs: out.NPCs}, nil
}
