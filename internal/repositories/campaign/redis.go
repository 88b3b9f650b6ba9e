package campaign

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
	campaignKeyPrefix = "campaign:"
	realmIndexPrefix  = "campaign:realm:"

	errCampaignNil     = "campaign cannot be nil"
	errCampaignIDEmpty = "campaign ID cannot be empty"
)

// Config holds the dependencies for the redis campaign repository.
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

// NewRedis creates a new redis-backed campaign repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func campaignKey(id string) string   { return campaignKeyPrefix + id }
func realmIndexKey(id string) string { return realmIndexPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Campaign == nil {
		return nil, errors.InvalidArgument(errCampaignNil)
	}
	if input.Campaign.ID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.Campaign.RealmID == "" {
		return nil, errors.InvalidArgument("realm ID cannot be empty")
	}

	key := campaignKey(input.Campaign.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("campaign with ID %s already exists", input.Campaign.ID)
	}

	data, err := json.Marshal(input.Campaign)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal campaign")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, realmIndexKey(input.Campaign.RealmID), input.Campaign.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create campaign")
	}

	return &CreateOutput{Campaign: input.Campaign}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	c, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Campaign: c}, nil
}

func (r *redisRepository) get(ctx context.Context, id string) (*entities.Campaign, error) {
	result, err := r.client.Get(ctx, campaignKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("campaign with ID %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get campaign")
	}

	var c entities.Campaign
	if err := json.Unmarshal([]byte(result), &c); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal campaign")
	}
	return &c, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Campaign == nil {
		return nil, errors.InvalidArgument(errCampaignNil)
	}
	if input.Campaign.ID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	key := campaignKey(input.Campaign.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("campaign with ID %s not found", input.Campaign.ID)
	}

	data, err := json.Marshal(input.Campaign)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal campaign")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update campaign")
	}

	return &UpdateOutput{Campaign: input.Campaign}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	c, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, campaignKey(input.ID))
	pipe.SRem(ctx, realmIndexKey(c.RealmID), input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete campaign")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByRealm(ctx context.Context, input ListByRealmInput) (*ListByRealmOutput, error) {
	if input.RealmID == "" {
		return nil, errors.InvalidArgument("realm ID cannot be empty")
	}

	ids, err := r.client.SMembers(ctx, realmIndexKey(input.RealmID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list realm campaigns")
	}
	if len(ids) == 0 {
		return &ListByRealmOutput{}, nil
	}
	slices.Sort(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = campaignKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch campaigns")
	}

	campaigns := make([]*entities.Campaign, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var c entities.Campaign
		if err := json.Unmarshal([]byte(str), &c); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal campaign")
		}
		campaigns = append(campaigns, &c)
	}
	return &ListByRealmOutput{Campaigns: campaigns}, nil
}

func (r *redisRepository) AppendChapterToArc(ctx context.Context, input AppendChapterToArcInput) (*AppendChapterToArcOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.ChapterID == "" {
		return nil, errors.InvalidArgument("chapter ID cannot be empty")
	}

	c, err := r.get(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}

	if c.StoryArc == nil {
		c.StoryArc = &entities.StoryArc{}
	}
	if !slices.Contains(c.StoryArc.Chapters, input.ChapterID) {
		c.StoryArc.Chapters = append(c.StoryArc.Chapters, input.ChapterID)
		c.Changes = append(c.Changes, input.Change)
		if _, err := r.Update(ctx, UpdateInput{Campaign: c}); err != nil {
			return nil, err
		}
	}
	return &AppendChapterToArcOutput{Campaign: c}, nil
}

func (r *redisRepository) RemoveChapterFromArc(ctx context.Context, input RemoveChapterFromArcInput) (*RemoveChapterFromArcOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.ChapterID == "" {
		return nil, errors.InvalidArgument("chapter ID cannot be empty")
	}

	c, err := r.get(ctx, input.CampaignID)
	if err != nil {
		return nil, err
	}

	if c.StoryArc != nil {
		if i := slices.Index(c.StoryArc.Chapters, input.ChapterID); i >= 0 {
			c.StoryArc.Chapters = slices.Delete(c.StoryArc.Chapters, i, i+1)
			c.Changes = append(c.Changes, input.Change)
			if _, err := r.Update(ctx, UpdateInput{Campaign: c}); err != nil {
				return nil, err
			}
		}
	}
	return &RemoveChapterFromArcOutput{Campaign: c}, nil
}
