package scene

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
	sceneKeyPrefix     = "scene:"
	chapterIndexPrefix = "scene:chapter:"

	errSceneNil     = "scene cannot be nil"
	errSceneIDEmpty = "scene ID cannot be empty"
)

// Config holds the dependencies for the redis scene repository.
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

// NewRedis creates a new redis-backed scene repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func sceneKey(id string) string        { return sceneKeyPrefix + id }
func chapterIndexKey(id string) string { return chapterIndexPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Scene == nil {
		return nil, errors.InvalidArgument(errSceneNil)
	}
	if input.Scene.ID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}
	if input.Scene.ChapterID == "" {
		return nil, errors.InvalidArgument("chapter ID cannot be empty")
	}

	key := sceneKey(input.Scene.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("scene with ID %s already exists", input.Scene.ID)
	}

	data, err := json.Marshal(input.Scene)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal scene")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.ZAdd(ctx, chapterIndexKey(input.Scene.ChapterID), redis.Z{
		Score:  float64(input.Scene.Meta.CreatedAt.UnixNano()),
		Member: input.Scene.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create scene")
	}

	return &CreateOutput{Scene: input.Scene}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}

	s, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Scene: s}, nil
}

func (r *redisRepository) get(ctx context.Context, id string) (*entities.Scene, error) {
	result, err := r.client.Get(ctx, sceneKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("scene with ID %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get scene")
	}

	var s entities.Scene
	if err := json.Unmarshal([]byte(result), &s); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal scene")
	}
	return &s, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Scene == nil {
		return nil, errors.InvalidArgument(errSceneNil)
	}
	if input.Scene.ID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}

	key := sceneKey(input.Scene.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("scene with ID %s not found", input.Scene.ID)
	}

	data, err := json.Marshal(input.Scene)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal scene")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update scene")
	}

	return &UpdateOutput{Scene: input.Scene}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}

	s, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sceneKey(input.ID))
	pipe.ZRem(ctx, chapterIndexKey(s.ChapterID), input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete scene")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByChapter(ctx context.Context, input ListByChapterInput) (*ListByChapterOutput, error) {
	if input.ChapterID == "" {
		return nil, errors.InvalidArgument("chapter ID cannot be empty")
	}

	ids, err := r.client.ZRange(ctx, chapterIndexKey(input.ChapterID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list chapter scenes")
	}
	if len(ids) == 0 {
		return &ListByChapterOutput{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sceneKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch scenes")
	}

	scenes := make([]*entities.Scene, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var s entities.Scene
		if err := json.Unmarshal([]byte(str), &s); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal scene")
		}
		scenes = append(scenes, &s)
	}
	return &ListByChapterOutput{Scenes: scenes}, nil
}

func (r *redisRepository) AddTurn(ctx context.Context, input AddTurnInput) (*AddTurnOutput, error) {
	if input.SceneID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}
	if input.TurnID == "" {
		return nil, errors.InvalidArgument("turn ID cannot be empty")
	}

	s, err := r.get(ctx, input.SceneID)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(s.Turns, input.TurnID) {
		s.Turns = append(s.Turns, input.TurnID)
		s.Changes = append(s.Changes, input.Change)
		if _, err := r.Update(ctx, UpdateInput{Scene: s}); err != nil {
			return nil, err
		}
	}
	return &AddTurnOutput{Scene: s}, nil
}

func (r *redisRepository) RemoveTurn(ctx context.Context, input RemoveTurnInput) (*RemoveTurnOutput, error) {
	if input.SceneID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}

	s, err := r.get(ctx, input.SceneID)
	if err != nil {
		return nil, err
	}

	idx := slices.Index(s.Turns, input.TurnID)
	if idx >= 0 {
		s.Turns = slices.Delete(s.Turns, idx, idx+1)
		s.Changes = append(s.Changes, input.Change)
		if _, err := r.Update(ctx, UpdateInput{Scene: s}); err != nil {
			return nil, err
		}
	}
	return &RemoveTurnOutput{Scene: s}, nil
}

func (r *redisRepository) Close(ctx context.Context, input CloseInput) (*CloseOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}

	s, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if s.Status == entities.NarrativeCompleted {
		return nil, errors.FailedPreconditionf("scene %s is already completed", input.ID)
	}

	s.Status = entities.NarrativeCompleted
	s.Summary = input.Summary
	s.Changes = append(s.Changes, input.Change)

	if _, err := r.Update(ctx, UpdateInput{Scene: s}); err != nil {
		return nil, err
	}
	return &CloseOutput{Scene: s}, nil
}
