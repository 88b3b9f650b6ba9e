package realm

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
	realmKeyPrefix   = "realm:"
	worldIndexPrefix = "realm:world:"

	errRealmNil     = "realm cannot be nil"
	errRealmIDEmpty = "realm ID cannot be empty"
)

// Config holds the dependencies for the redis realm repository.
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

// NewRedis creates a new redis-backed realm repository
func NewRedis(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &redisRepository{client: cfg.Client}, nil
}

var _ Repository = (*redisRepository)(nil)

func realmKey(id string) string      { return realmKeyPrefix + id }
func worldIndexKey(id string) string { return worldIndexPrefix + id }

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Realm == nil {
		return nil, errors.InvalidArgument(errRealmNil)
	}
	if input.Realm.ID == "" {
		return nil, errors.InvalidArgument(errRealmIDEmpty)
	}
	if input.Realm.WorldID == "" {
		return nil, errors.InvalidArgument("world ID cannot be empty")
	}

	key := realmKey(input.Realm.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("realm with ID %s already exists", input.Realm.ID)
	}

	data, err := json.Marshal(input.Realm)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal realm")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, worldIndexKey(input.Realm.WorldID), input.Realm.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create realm")
	}

	return &CreateOutput{Realm: input.Realm}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errRealmIDEmpty)
	}

	result, err := r.client.Get(ctx, realmKey(input.ID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("realm with ID %s not found", input.ID)
		}
		return nil, errors.Wrapf(err, "failed to get realm")
	}

	var rm entities.Realm
	if err := json.Unmarshal([]byte(result), &rm); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal realm")
	}
	return &GetOutput{Realm: &rm}, nil
}

func (r *redisRepository) Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error) {
	if input.Realm == nil {
		return nil, errors.InvalidArgument(errRealmNil)
	}
	if input.Realm.ID == "" {
		return nil, errors.InvalidArgument(errRealmIDEmpty)
	}

	key := realmKey(input.Realm.ID)
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists == 0 {
		return nil, errors.NotFoundf("realm with ID %s not found", input.Realm.ID)
	}

	data, err := json.Marshal(input.Realm)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal realm")
	}
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to update realm")
	}

	return &UpdateOutput{Realm: input.Realm}, nil
}

func (r *redisRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errRealmIDEmpty)
	}

	out, err := r.Get(ctx, GetInput{ID: input.ID})
	if err != nil {
		return nil, err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, realmKey(input.ID))
	pipe.SRem(ctx, worldIndexKey(out.Realm.WorldID), input.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to delete realm")
	}

	return &DeleteOutput{}, nil
}

func (r *redisRepository) AddCampaign(ctx context.Context, input AddCampaignInput) (*AddCampaignOutput, error) {
	if input.RealmID == "" {
		return nil, errors.InvalidArgument(errRealmIDEmpty)
	}
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	out, err := r.Get(ctx, GetInput{ID: input.RealmID})
	if err != nil {
		return nil, err
	}
	rm := out.Realm

	if !slices.Contains(rm.Campaigns, input.CampaignID) {
		rm.Campaigns = append(rm.Campaigns, input.CampaignID)
		rm.Changes = append(rm.Changes, input.Change)
		if _, err := r.Update(ctx, UpdateInput{Realm: rm}); err != nil {
			return nil, err
		}
	}
	return &AddCampaignOutput{Realm: rm}, nil
}

func (r *redisRepository) RemoveCampaign(ctx context.Context, input RemoveCampaignInput) (*RemoveCampaignOutput, error) {
	if input.RealmID == "" {
		return nil, errors.InvalidArgument(errRealmIDEmpty)
	}
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument("campaign ID cannot be empty")
	}

	out, err := r.Get(ctx, GetInput{ID: input.RealmID})
	if err != nil {
		return nil, err
	}
	rm := out.Realm

	if i := slices.Index(rm.Campaigns, input.CampaignID); i >= 0 {
		rm.Campaigns = slices.Delete(rm.Campaigns, i, i+1)
		rm.Changes = append(rm.Changes, input.Change)
		if _, err := r.Update(ctx, UpdateInput{Realm: rm}); err != nil {
			return nil, err
		}
	}
	return &RemoveCampaignOutput{Realm: rm}, nil
}

func (r *redisRepository) AddCharacter(ctx context.Context, input AddCharacterInput) (*AddCharacterOutput, error) {
	if input.RealmID == "" {
		return nil, errors.InvalidArgument(errRealmIDEmpty)
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}

	out, err := r.Get(ctx, GetInput{ID: input.RealmID})
	if err != nil {
		return nil, err
	}
	rm := out.Realm

	if !slices.Contains(rm.Characters, input.CharacterID) {
		rm.Characters = append(rm.Characters, input.CharacterID)
		rm.Changes = append(rm.Changes, input.Change)
		if _, err := r.Update(ctx, UpdateInput{Realm: rm}); err != nil {
			return nil, err
		}
	}
	return &AddCharacterOutput{Realm: rm}, nil
}

func (r *redisRepository) RemoveCharacter(ctx context.Context, input RemoveCharacterInput) (*RemoveCharacterOutput, error) {
	if input.RealmID == "" {
		return nil, errors.InvalidArgument(errRealmIDEmpty)
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument("character ID cannot be empty")
	}

	out, err := r.Get(ctx, GetInput{ID: input.RealmID})
	if err != nil {
		return nil, err
	}
	rm := out.Realm

	if i := slices.Index(rm.Characters, input.CharacterID); i >= 0 {
		rm.Characters = slices.Delete(rm.Characters, i, i+1)
		rm.Changes = append(rm.Changes, input.Change)
		if _, err := r.Update(ctx, UpdateInput{Realm: rm}); err != nil {
			return nil, err
		}
	}
	return &RemoveCharacterOutput{Realm: rm}, nil
}

func (r *redisRepository) ListByWorld(ctx context.Context, input ListByWorldInput) (*ListByWorldOutput, error) {
	if input.WorldID == "" {
		return nil, errors.InvalidArgument("world ID cannot be empty")
	}

	ids, err := r.client.SMembers(ctx, worldIndexKey(input.WorldID)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list world realms")
	}
	if len(ids) == 0 {
		return &ListByWorldOutput{}, nil
	}
	slices.Sort(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = realmKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch realms")
	}

	realms := make([]*entities.Realm, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rm entities.Realm
		if err := json.Unmarshal([]byte(str), &rm); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal realm")
		}
		realms = append(realms, &rm)
	}
	return &ListByWorldOutput{Realms: realms}, nil
}
