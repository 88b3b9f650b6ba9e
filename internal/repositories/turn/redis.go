package turn

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	redis "github.com/redis/go-redis/v9"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	redisclient "github.com/greymere/keeper-api/internal/redis"
)

const (
	turnKeyPrefix    = "turn:"
	sceneIndexPrefix = "turn:scene:"

	errTurnNil      = "turn cannot be nil"
	errTurnIDEmpty  = "turn ID cannot be empty"
	errSceneIDEmpty = "scene ID cannot be empty"
)

// Config holds the dependencies for the redis turn repository.
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

// NewRedis creates a new redis-backed turn repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func turnKey(id string) string       { return turnKeyPrefix + id }
func sceneIndexKey(id string) string { return sceneIndexPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Turn == nil {
		return nil, errors.InvalidArgument(errTurnNil)
	}
	if input.Turn.ID == "" {
		return nil, errors.InvalidArgument(errTurnIDEmpty)
	}
	if input.Turn.SceneID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}

	key := turnKey(input.Turn.ID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("turn with ID %s already exists", input.Turn.ID)
	}

	data, err := json.Marshal(input.Turn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal turn")
	}

	// Document write and scene index share one round trip.
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.ZAdd(ctx, sceneIndexKey(input.Turn.SceneID), redis.Z{
		Score:  float64(input.Turn.Order),
		Member: input.Turn.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create turn")
	}

	return &CreateOutput{Turn: input.Turn}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errTurnIDEmpty)
	}

	t, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Turn: t}, nil
}

func (r *redisRepository) get(ctx context.Context, id string) (*entities.Turn, error) {
	result, err := r.client.Get(ctx, turnKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("turn with ID %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get turn")
	}

	var t entities.Turn
	if err := json.Unmarshal([]byte(result), &t); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal turn")
	}
	return &t, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Turn == nil {
		return nil, errors.InvalidArgument(errTurnNil)
	}
	if input.Turn.ID == "" {
		return nil, errors.InvalidArgument(errTurnIDEmpty)
	}

	key := turnKey(input.Turn.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("turn with ID %s not found", input.Turn.ID)
	}

	data, err := json.Marshal(input.Turn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal turn")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update turn")
	}

	return &UpdateOutput{Turn: input.Turn}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errTurnIDEmpty)
	}

	t, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, turnKey(input.ID))
	pipe.ZRem(ctx, sceneIndexKey(t.SceneID), input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete turn")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) ListByScene(ctx context.Context, input ListBySceneInput) (*ListBySceneOutput, error) {
	if input.SceneID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}

	ids, err := r.client.ZRange(ctx, sceneIndexKey(input.SceneID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list scene turns")
	}

	turns, err := r.getMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &ListBySceneOutput{Turns: turns}, nil
}

func (r *redisRepository) ListPrevious(ctx context.Context, input ListPreviousInput) (*ListPreviousOutput, error) {
	if input.SceneID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}
	if input.Limit <= 0 {
		return &ListPreviousOutput{}, nil
	}

	ids, err := r.client.ZRevRangeByScore(ctx, sceneIndexKey(input.SceneID), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("(%d", input.BeforeOrder),
		Count: int64(input.Limit),
	}).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query previous turns")
	}

	turns, err := r.getMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &ListPreviousOutput{Turns: turns}, nil
}

func (r *redisRepository) CountCompleted(ctx context.Context, input CountCompletedInput) (*CountCompletedOutput, error) {
	if input.SceneID == "" {
		return nil, errors.InvalidArgument(errSceneIDEmpty)
	}

	ids, err := r.client.ZRange(ctx, sceneIndexKey(input.SceneID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list scene turns")
	}

	turns, err := r.getMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	count := 0
	for _, t := range turns {
		if t.Status == entities.TurnCompleted {
			count++
		}
	}
	return &CountCompletedOutput{Count: count}, nil
}

// getMany fetches turn documents by id, skipping ids whose document has
// gone missing (a dangling index entry, not a caller error).
func (r *redisRepository) getMany(ctx context.Context, ids []string) ([]*entities.Turn, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = turnKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch turns")
	}

	turns := make([]*entities.Turn, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var t entities.Turn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal turn")
		}
		turns = append(turns, &t)
	}
	return turns, nil
}

func (r *redisRepository) TransitionStatus(ctx context.Context, input TransitionStatusInput) (*TransitionStatusOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errTurnIDEmpty)
	}
	if len(input.From) == 0 {
		return nil, errors.InvalidArgument("at least one source status is required")
	}

	key := turnKey(input.ID)
	var updated *entities.Turn

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		result, err := tx.Get(ctx, key).Result()
		if err != nil {
			if err == redis.Nil {
				return errors.NotFoundf("turn with ID %s not found", input.ID)
			}
			return errors.Wrapf(err, "failed to get turn")
		}

		var t entities.Turn
		if err := json.Unmarshal([]byte(result), &t); err != nil {
			return errors.Wrapf(err, "failed to unmarshal turn")
		}

		if !slices.Contains(input.From, t.Status) {
			return errors.FailedPreconditionf(
				"turn %s is %s, cannot transition to %s", input.ID, t.Status, input.To)
		}

		t.Status = input.To
		t.Changes = append(t.Changes, input.Change)
		if input.SessionID != "" {
			t.SessionID = input.SessionID
		}

		data, err := json.Marshal(&t)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal turn")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = &t
		return nil
	}, key)

	if err != nil {
		if err == redis.TxFailedErr {
			return nil, errors.Abortedf("turn %s was modified concurrently", input.ID)
		}
		var coded *errors.Error
		if errors.As(err, &coded) {
			return nil, coded
		}
		return nil, errors.Wrapf(err, "failed to transition turn status")
	}

	return &TransitionStatusOutput{Turn: updated}, nil
}

func (r *redisRepository) SetReaction(ctx context.Context, input SetReactionInput) (*SetReactionOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errTurnIDEmpty)
	}

	t, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	reaction := input.Reaction
	t.Reaction = &reaction
	t.Status = entities.TurnCompleted
	t.Error = ""
	t.Changes = append(t.Changes, input.Change)

	if _, err := r.Update(ctx, UpdateInput{Turn: t}); err != nil {
		return nil, err
	}
	return &SetReactionOutput{Turn: t}, nil
}

func (r *redisRepository) SetFailed(ctx context.Context, input SetFailedInput) (*SetFailedOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errTurnIDEmpty)
	}

	t, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	t.Status = entities.TurnFailed
	t.Error = input.Error
	t.Changes = append(t.Changes, input.Change)

	if _, err := r.Update(ctx, UpdateInput{Turn: t}); err != nil {
		return nil, err
	}
	return &SetFailedOutput{Turn: t}, nil
}

func (r *redisRepository) AppendChange(ctx context.Context, input AppendChangeInput) (*AppendChangeOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errTurnIDEmpty)
	}

	t, err := r.get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	t.Changes = append(t.Changes, input.Change)

	if _, err := r.Update(ctx, UpdateInput{Turn: t}); err != nil {
		return nil, err
	}
	return &AppendChangeOutput{Turn: t}, nil
}
