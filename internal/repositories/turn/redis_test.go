package turn_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	"github.com/greymere/keeper-api/internal/repositories/turn"
	"github.com/greymere/keeper-api/internal/testutils"
)

const testSceneID = "scene-11111111"

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo turn.Repository
	ctx  context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, _ := testutils.CreateTestRedisClient(s.T())
	repo, err := turn.NewRedis(&turn.Config{Client: client})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) newTurn(id string, order int, status entities.TurnStatus) *entities.Turn {
	return &entities.Turn{
		ID:      id,
		Kind:    entities.KindTurn,
		SceneID: testSceneID,
		Order:   order,
		Status:  status,
		Actions: []entities.Action{{ActorID: "pc-1", Act: "examines the bookshelf"}},
		Meta:    entities.Meta{CreatedBy: "player-1", CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func (s *RedisRepositoryTestSuite) mustCreate(t *entities.Turn) {
	_, err := s.repo.Create(s.ctx, turn.CreateInput{Turn: t})
	s.Require().NoError(err)
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	created := s.newTurn("turn-aaaa0001", 1, entities.TurnDraft)
	s.mustCreate(created)

	out, err := s.repo.Get(s.ctx, turn.GetInput{ID: created.ID})
	s.Require().NoError(err)
	s.Equal(created.ID, out.Turn.ID)
	s.Equal(entities.TurnDraft, out.Turn.Status)
	s.Equal("examines the bookshelf", out.Turn.Actions[0].Act)
}

func (s *RedisRepositoryTestSuite) TestCreateDuplicate() {
	t := s.newTurn("turn-aaaa0001", 1, entities.TurnDraft)
	s.mustCreate(t)

	_, err := s.repo.Create(s.ctx, turn.CreateInput{Turn: t})
	s.Require().Error(err)
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestGetNotFound() {
	_, err := s.repo.Get(s.ctx, turn.GetInput{ID: "turn-missing"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestDeleteRemovesIndexEntry() {
	t := s.newTurn("turn-aaaa0001", 1, entities.TurnDraft)
	s.mustCreate(t)

	_, err := s.repo.Delete(s.ctx, turn.DeleteInput{ID: t.ID})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, turn.GetInput{ID: t.ID})
	s.True(errors.IsNotFound(err))

	out, err := s.repo.ListByScene(s.ctx, turn.ListBySceneInput{SceneID: testSceneID})
	s.Require().NoError(err)
	s.Empty(out.Turns)
}

func (s *RedisRepositoryTestSuite) TestListBySceneOrdered() {
	// Create out of order, expect order-sorted results.
	s.mustCreate(s.newTurn("turn-aaaa0003", 3, entities.TurnCompleted))
	s.mustCreate(s.newTurn("turn-aaaa0001", 1, entities.TurnCompleted))
	s.mustCreate(s.newTurn("turn-aaaa0002", 2, entities.TurnCompleted))

	out, err := s.repo.ListByScene(s.ctx, turn.ListBySceneInput{SceneID: testSceneID})
	s.Require().NoError(err)
	s.Require().Len(out.Turns, 3)
	s.Equal(1, out.Turns[0].Order)
	s.Equal(2, out.Turns[1].Order)
	s.Equal(3, out.Turns[2].Order)
}

func (s *RedisRepositoryTestSuite) TestListPreviousWindow() {
	for i := 1; i <= 7; i++ {
		s.mustCreate(s.newTurn(fmt.Sprintf("turn-aaaa%04d", i), i, entities.TurnCompleted))
	}

	out, err := s.repo.ListPrevious(s.ctx, turn.ListPreviousInput{
		SceneID:     testSceneID,
		BeforeOrder: 7,
		Limit:       3,
	})
	s.Require().NoError(err)
	s.Require().Len(out.Turns, 3)
	// Newest first, strictly below the requested order.
	s.Equal(6, out.Turns[0].Order)
	s.Equal(5, out.Turns[1].Order)
	s.Equal(4, out.Turns[2].Order)
}

func (s *RedisRepositoryTestSuite) TestListPreviousEmptyScene() {
	out, err := s.repo.ListPrevious(s.ctx, turn.ListPreviousInput{
		SceneID:     "scene-empty",
		BeforeOrder: 1,
		Limit:       5,
	})
	s.Require().NoError(err)
	s.Empty(out.Turns)
}

func (s *RedisRepositoryTestSuite) TestCountCompleted() {
	s.mustCreate(s.newTurn("turn-aaaa0001", 1, entities.TurnCompleted))
	s.mustCreate(s.newTurn("turn-aaaa0002", 2, entities.TurnCompleted))
	s.mustCreate(s.newTurn("turn-aaaa0003", 3, entities.TurnDraft))

	out, err := s.repo.CountCompleted(s.ctx, turn.CountCompletedInput{SceneID: testSceneID})
	s.Require().NoError(err)
	s.Equal(2, out.Count)
}

func (s *RedisRepositoryTestSuite) TestTransitionStatus() {
	s.mustCreate(s.newTurn("turn-aaaa0001", 1, entities.TurnDraft))

	out, err := s.repo.TransitionStatus(s.ctx, turn.TransitionStatusInput{
		ID:        "turn-aaaa0001",
		From:      []entities.TurnStatus{entities.TurnDraft},
		To:        entities.TurnProcessing,
		Change:    entities.Change{By: "player-1", At: time.Now().UTC(), Type: entities.ChangeProcessing},
		SessionID: "session-42",
	})
	s.Require().NoError(err)
	s.Equal(entities.TurnProcessing, out.Turn.Status)
	s.Equal("session-42", out.Turn.SessionID)
	s.Require().NotEmpty(out.Turn.Changes)
	s.Equal(entities.ChangeProcessing, out.Turn.Changes[len(out.Turn.Changes)-1].Type)
}

func (s *RedisRepositoryTestSuite) TestTransitionStatusWrongState() {
	s.mustCreate(s.newTurn("turn-aaaa0001", 1, entities.TurnCompleted))

	_, err := s.repo.TransitionStatus(s.ctx, turn.TransitionStatusInput{
		ID:   "turn-aaaa0001",
		From: []entities.TurnStatus{entities.TurnDraft},
		To:   entities.TurnProcessing,
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *RedisRepositoryTestSuite) TestTransitionStatusNotFound() {
	_, err := s.repo.TransitionStatus(s.ctx, turn.TransitionStatusInput{
		ID:   "turn-missing",
		From: []entities.TurnStatus{entities.TurnDraft},
		To:   entities.TurnProcessing,
	})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestSetReactionCompletesTurn() {
	t := s.newTurn("turn-aaaa0001", 1, entities.TurnProcessing)
	t.Error = "previous attempt failed"
	s.mustCreate(t)

	out, err := s.repo.SetReaction(s.ctx, turn.SetReactionInput{
		ID:       t.ID,
		Reaction: entities.Reaction{Description: "The door creaks open.", Summary: "door opened"},
		Change:   entities.Change{By: "KeeperAI", At: time.Now().UTC(), Type: entities.ChangeReactionAdded},
	})
	s.Require().NoError(err)
	s.Equal(entities.TurnCompleted, out.Turn.Status)
	s.Empty(out.Turn.Error)
	s.Require().NotNil(out.Turn.Reaction)
	s.Equal("The door creaks open.", out.Turn.Reaction.Description)
}

func (s *RedisRepositoryTestSuite) TestSetFailed() {
	s.mustCreate(s.newTurn("turn-aaaa0001", 1, entities.TurnProcessing))

	out, err := s.repo.SetFailed(s.ctx, turn.SetFailedInput{
		ID:     "turn-aaaa0001",
		Error:  "llm timeout",
		Change: entities.Change{By: "KeeperAI", At: time.Now().UTC(), Type: entities.ChangeFailed},
	})
	s.Require().NoError(err)
	s.Equal(entities.TurnFailed, out.Turn.Status)
	s.Equal("llm timeout", out.Turn.Error)
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
