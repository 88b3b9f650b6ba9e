package scene_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/repositories/scene"
	"github.com/greymere/keeper-api/internal/testutils"
)

const testChapterID = "chapter-22222222"

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo scene.Repository
	ctx  context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, _ := testutils.CreateTestRedisClient(s.T())
	repo, err := scene.NewRedis(&scene.Config{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) newScene(id string, createdAt time.Time) *entities.Scene {
	return &entities.Scene{
		ID:        id,
		Kind:      entities.KindScene,
		ChapterID: testChapterID,
		Name:      "The Reading Room",
		Status:    entities.NarrativeActive,
		Meta:      entities.Meta{CreatedBy: "gm-1", CreatedAt: createdAt},
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	created := s.newScene("scene-aaaa0001", time.Now().UTC())
	_, err := s.repo.Create(s.ctx, scene.CreateInput{Scene: created})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, scene.GetInput{ID: created.ID})
	s.Require().NoError(err)
	s.Equal("The Reading Room", out.Scene.Name)
	s.Equal(entities.NarrativeActive, out.Scene.Status)
}

func (s *RedisRepositoryTestSuite) TestListByChapterCreationOrder() {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"scene-aaaa0002", "scene-aaaa0001", "scene-aaaa0003"} {
		_, err := s.repo.Create(s.ctx, scene.CreateInput{
			Scene: s.newScene(id, base.Add(time.Duration(i)*time.Minute)),
		})
		s.Require().NoError(err)
	}

	out, err := s.repo.ListByChapter(s.ctx, scene.ListByChapterInput{ChapterID: testChapterID})
	s.Require().NoError(err)
	s.Require().Len(out.Scenes, 3)
	s.Equal("scene-aaaa0002", out.Scenes[0].ID)
	s.Equal("scene-aaaa0001", out.Scenes[1].ID)
	s.Equal("scene-aaaa0003", out.Scenes[2].ID)
}

func (s *RedisRepositoryTestSuite) TestAddTurnIsIdempotent() {
	sc := s.newScene("scene-aaaa0001", time.Now().UTC())
	_, err := s.repo.Create(s.ctx, scene.CreateInput{Scene: sc})
	s.Require().NoError(err)

	change := entities.Change{By: "player-1", At: time.Now().UTC(), Type: entities.ChangeUpdated}
	for range 2 {
		_, err = s.repo.AddTurn(s.ctx, scene.AddTurnInput{
			SceneID: sc.ID, TurnID: "turn-aaaa0001", Change: change,
		})
		s.Require().NoError(err)
	}

	out, err := s.repo.Get(s.ctx, scene.GetInput{ID: sc.ID})
	s.Require().NoError(err)
	s.Equal([]string{"turn-aaaa0001"}, out.Scene.Turns)
}

func (s *RedisRepositoryTestSuite) TestRemoveTurn() {
	sc := s.newScene("scene-aaaa0001", time.Now().UTC())
	sc.Turns = []string{"turn-aaaa0001", "turn-aaaa0002"}
	_, err := s.repo.Create(s.ctx, scene.CreateInput{Scene: sc})
	s.Require().NoError(err)

	_, err = s.repo.RemoveTurn(s.ctx, scene.RemoveTurnInput{
		SceneID: sc.ID,
		TurnID:  "turn-aaaa0001",
		Change:  entities.Change{By: "player-1", At: time.Now().UTC(), Type: entities.ChangeUpdated},
	})
	s.Require().NoError(err)

	out, err := s.repo.Get(s.ctx, scene.GetInput{ID: sc.ID})
	s.Require().NoError(err)
	s.Equal([]string{"turn-aaaa0002"}, out.Scene.Turns)
}

func (s *RedisRepositoryTestSuite) TestCloseRecordsSummary() {
	sc := s.newScene("scene-aaaa0001", time.Now().UTC())
	_, err := s.repo.Create(s.ctx, scene.CreateInput{Scene: sc})
	s.Require().NoError(err)

	out, err := s.repo.Close(s.ctx, scene.CloseInput{
		ID:      sc.ID,
		Summary: "The Reading Room completed. 12 turns. The letter was found.",
		Change:  entities.Change{By: "KeeperAI", At: time.Now().UTC(), Type: entities.ChangeCompleted},
	})
	s.Require().NoError(err)
	s.Equal(entities.NarrativeCompleted, out.Scene.Status)
	s.Contains(out.Scene.Summary, "The letter was found.")
}

func (s *RedisRepositoryTestSuite) TestCloseTwiceFails() {
	sc := s.newScene("scene-aaaa0001", time.Now().UTC())
	_, err := s.repo.Create(s.ctx, scene.CreateInput{Scene: sc})
	s.Require().NoError(err)

	change := entities.Change{By: "KeeperAI", At: time.Now().UTC(), Type: entities.ChangeCompleted}
	_, err = s.repo.Close(s.ctx, scene.CloseInput{ID: sc.ID, Summary: "done", Change: change})
	s.Require().NoError(err)

	_, err = s.repo.Close(s.ctx, scene.CloseInput{ID: sc.ID, Summary: "again", Change: change})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *RedisRepositoryTestSuite) TestDeleteRemovesIndexEntry() {
	sc := s.newScene("scene-aaaa0001", time.Now().UTC())
	_, err := s.repo.Create(s.ctx, scene.CreateInput{Scene: sc})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, scene.DeleteInput{ID: sc.ID})
	s.Require().NoError(err)

	out, err := s.repo.ListByChapter(s.ctx, scene.ListByChapterInput{ChapterID: testChapterID})
	s.Require().NoError(err)
	s.Empty(out.Scenes)
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
