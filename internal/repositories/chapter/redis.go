package chapter

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
	chapterKeyPrefix    = "chapter:"
	campaignIndexPrefix = "chapter:campaign:"

	errChapterNil     = "chapter cannot be nil"
	errChapterIDEmpty = "chapter ID cannot be empty"
)

// Config holds the dependencies for the redis chapter repository.
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

// NewRedis creates a new redis-backed chapter repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func chapterKey(id string) string       { return chapterKeyPrefix + id }
func campaignIndexKey(id string) string { return campaignIndexPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Chapter == nil {
		return nil, errors.InvalidArgument(errChapterNil)
	}
	if input.Chapter.ID == "" {
		return nil, errors.InvalidArgument(errChapterIDEmpty)
	}
	if input.Chapter.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	key := chapterKey(input.Chapter.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("chapter with ID %s already exists", input.Chapter.ID)
	}

	data, err := json.Marshal(input.Chapter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal chapter")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.ZAdd(ctx, campaignIndexKey(input.Chapter.CampaignID), redis.Z{
		Score:  float64(input.Chapter.Order),
		Member: input.Chapter.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create chapter")
	}

	return &CreateOutput{Chapter: input.Chapter}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errChapterIDEmpty)
	}

	c, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Chapter: c}, nil
}

func (r *redisRepository) get(ctx context.Context, id string) (*entities.Chapter, error) {
	result, err := r.client.Get(ctx, chapterKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("chapter with ID %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get chapter")
	}

	var c entities.Chapter
	if err := json.Unmarshal([]byte(result), &c); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal chapter")
	}
	return &c, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Chapter == nil {
		return nil, errors.InvalidArgument(errChapterNil)
	}
	if input.Chapter.ID == "" {
		return nil, errors.InvalidArgument(errChapterIDEmpty)
	}

	key := chapterKey(input.Chapter.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("chapter with ID %s not found", input.Chapter.ID)
	}

	data, err := json.Marshal(input.Chapter)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal chapter")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update chapter")
	}

	return &UpdateOutput{Chapter: input.Chapter}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errChapterIDEmpty)
	}

	c, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, chapterKey(input.ID))
	pipe.ZRem(ctx, campaignIndexKey(c.CampaignID), input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete chapter")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	ids, err := r.client.ZRange(ctx, campaignIndexKey(input.CampaignID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list campaign chapters")
	}
	if len(ids) == 0 {
		return &ListByCampaignOutput{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = chapterKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch chapters")
	}

	chapters := make([]*entities.Chapter, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var c entities.Chapter
		if err := json.Unmarshal([]byte(str), &c); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal chapter")
		}
		chapters = append(chapters, &c)
	}
	return &ListByCampaignOutput{Chapters: chapters}, nil
}

func (r *redisRepository) AddScene(ctx context.Context, input AddSceneInput) (*AddSceneOutput, error) {
	if input.ChapterID == "" {
		return nil, errors.InvalidArgument(errChapterIDEmpty)
	}
	if input.SceneID == "" {
		return nil, errors.InvalidArgument("scene ID cannot be empty")
	}

	c, err := r.get(ctx, input.ChapterID)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(c.Scenes, input.SceneID) {
		c.Scenes = append(c.Scenes, input.SceneID)
		c.Changes = append(c.Changes, input.Change)
		if _, err := r.Update(ctx, UpdateInput{Chapter: c}); err != nil {
			return nil, err
		}
	}
	return &AddSceneOutput{Chapter: c}, nil
}

func (r *redisRepository) RemoveScene(ctx context.Context, input RemoveSceneInput) (*RemoveSceneOutput, error) {
	if input.ChapterID == "" {
		return nil, errors.InvalidArgument(errChapterIDEmpty)
	}

	c, err := r.get(ctx, input.ChapterID)
	if err != nil {
		return nil, err
	}

	idx := slices.Index(c.Scenes, input.SceneID)
	if idx >= 0 {
		c.Scenes = slices.Delete(c.Scenes, idx, idx+1)
		c.Changes = append(c.Changes, input.Change)
		if _, err := r.Update(ctx, UpdateInput{Chapter: c}); err != nil {
			return nil, err
		}
	}
	return &RemoveSceneOutput{Chapter: c}, nil
}

func (r *redisRepository) Close(ctx context.Context, input CloseInput) (*CloseOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errChapterIDEmpty)
	}

	c, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if c.Status == entities.NarrativeCompleted {
		return nil, errors.FailedPreconditionf("chapter %s is already completed", input.ID)
	}

	c.Status = entities.NarrativeCompleted
	c.Summary = input.Summary
	c.Changes = append(c.Changes, input.Change)

	if _, err := r.Update(ctx, UpdateInput{Chapter: c}); err != nil {
		return nil, err
	}
	return &CloseOutput{Chapter: c}, nil
}
