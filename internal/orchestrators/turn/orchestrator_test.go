package turn_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/greymere/keeper-api/internal/clients/narrator"
	narratormock "github.com/greymere/keeper-api/internal/clients/narrator/mock"
	"github.com/greymere/keeper-api/internal/engine/assembly"
	"github.com/greymere/keeper-api/internal/engine/skillcheck"
	"github.com/greymere/keeper-api/internal/engine/transition"
	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/errors"
	turnorch "github.com/greymere/keeper-api/internal/orchestrators/turn"
	"github.com/greymere/keeper-api/internal/pkg/clock"
	"github.com/greymere/keeper-api/internal/pkg/idgen"
	relaymock "github.com/greymere/keeper-api/internal/relay/mock"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/chapter"
	"github.com/greymere/keeper-api/internal/repositories/character"
	"github.com/greymere/keeper-api/internal/repositories/npc"
	"github.com/greymere/keeper-api/internal/repositories/realm"
	"github.com/greymere/keeper-api/internal/repositories/scene"
	turnrepo "github.com/greymere/keeper-api/internal/repositories/turn"
	"github.com/greymere/keeper-api/internal/testutils"
)

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	turnRepo      turnrepo.Repository
	sceneRepo     scene.Repository
	chapterRepo   chapter.Repository
	campaignRepo  campaign.Repository
	realmRepo     realm.Repository
	characterRepo character.Repository
	npcRepo       npc.Repository

	mockNarrator *narratormock.MockClient
	mockRelay    *relaymock.MockRelay

	now time.Time
	ctx context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	client, _ := testutils.CreateTestRedisClient(s.T())

	var err error
	s.turnRepo, err = turnrepo.NewRedis(&turnrepo.Config{Client: client})
	s.Require().NoError(err)
	s.sceneRepo, err = scene.NewRedis(&scene.Config{Client: client})
	s.Require().NoError(err)
	s.chapterRepo, err = chapter.NewRedis(&chapter.Config{Client: client})
	s.Require().NoError(err)
	s.campaignRepo, err = campaign.NewRedis(&campaign.Config{Client: client})
	s.Require().NoError(err)
	s.realmRepo, err = realm.NewRedis(&realm.Config{Client: client})
	s.Require().NoError(err)
	s.characterRepo, err = character.NewRedis(&character.Config{Client: client})
	s.Require().NoError(err)
	s.npcRepo, err = npc.NewRedis(&npc.Config{Client: client})
	s.Require().NoError(err)

	s.mockNarrator = narratormock.NewMockClient(s.ctrl)
	s.mockRelay = relaymock.NewMockRelay(s.ctrl)
}

func (s *OrchestratorTestSuite) newService(async bool, rolls ...int) turnorch.Service {
	assembler, err := assembly.New(&assembly.Config{
		TurnRepo:      s.turnRepo,
		SceneRepo:     s.sceneRepo,
		ChapterRepo:   s.chapterRepo,
		CampaignRepo:  s.campaignRepo,
		RealmRepo:     s.realmRepo,
		CharacterRepo: s.characterRepo,
		NPCRepo:       s.npcRepo,
		Clock:         &clock.Fixed{T: s.now},
	})
	s.Require().NoError(err)

	if len(rolls) == 0 {
		rolls = []int{25}
	}
	skills, err := skillcheck.New(&skillcheck.Config{
		Roller: &skillcheck.FixedRoller{Rolls: rolls},
	})
	s.Require().NoError(err)

	transitions, err := transition.New(&transition.Config{
		SceneRepo:    s.sceneRepo,
		ChapterRepo:  s.chapterRepo,
		CampaignRepo: s.campaignRepo,
		SceneIDs:     idgen.NewSequential("scene-new"),
		ChapterIDs:   idgen.NewSequential("chapter-new"),
		Clock:        &clock.Fixed{T: s.now},
	})
	s.Require().NoError(err)

	svc, err := turnorch.NewOrchestrator(&turnorch.Config{
		TurnRepo:      s.turnRepo,
		SceneRepo:     s.sceneRepo,
		ChapterRepo:   s.chapterRepo,
		CharacterRepo: s.characterRepo,
		Assembler:     assembler,
		SkillChecks:   skills,
		Transitions:   transitions,
		Narrator:      s.mockNarrator,
		Relay:         s.mockRelay,
		Clock:         &clock.Fixed{T: s.now},
		CallbackURL: func(turnID string) string {
			return "http://backend:8000/api/v1/turns/internal/" + turnID + "/complete"
		},
		Async: async,
	})
	s.Require().NoError(err)
	return svc
}

func (s *OrchestratorTestSuite) seed() {
	_, err := s.campaignRepo.Create(s.ctx, campaign.CreateInput{Campaign: &entities.Campaign{
		ID: "campaign-1", Kind: entities.KindCampaign, RealmID: "realm-1",
		Name: "The Haunting", Status: entities.CampaignRunning,
		StoryArc: &entities.StoryArc{Chapters: []string{"chapter-1"}},
		Meta:     entities.Meta{CreatedBy: "gm-1", CreatedAt: s.now},
	}})
	s.Require().NoError(err)

	_, err = s.chapterRepo.Create(s.ctx, chapter.CreateInput{Chapter: &entities.Chapter{
		ID: "chapter-1", Kind: entities.KindChapter, CampaignID: "campaign-1",
		Name: "The Corbitt House", Scenes: []string{"scene-1"},
		Status: entities.NarrativeActive, Order: 1,
		Meta: entities.Meta{CreatedBy: "gm-1", CreatedAt: s.now},
	}})
	s.Require().NoError(err)

	_, err = s.sceneRepo.Create(s.ctx, scene.CreateInput{Scene: &entities.Scene{
		ID: "scene-1", Kind: entities.KindScene, ChapterID: "chapter-1",
		Name: "The Reading Room", Participants: []string{"char-1"},
		Turns: []string{"turn-1"}, Status: entities.NarrativeActive,
		Meta: entities.Meta{CreatedBy: "gm-1", CreatedAt: s.now},
	}})
	s.Require().NoError(err)

	_, err = s.characterRepo.Create(s.ctx, character.CreateInput{Character: &entities.Character{
		ID: "char-1", Kind: entities.KindPC, Name: "Harvey Walters", RealmID: "realm-1",
		Data: entities.CharacterSheet{
			Skills: map[string]entities.Skill{
				"Spot Hidden": {Reg: entities.StatFromInt(60)},
			},
		},
		Meta: entities.Meta{CreatedBy: "player-1", CreatedAt: s.now},
	}})
	s.Require().NoError(err)

	s.seedTurn("turn-1", entities.TurnDraft)
}

func (s *OrchestratorTestSuite) seedTurn(id string, status entities.TurnStatus) {
	_, err := s.turnRepo.Create(s.ctx, turnrepo.CreateInput{Turn: &entities.Turn{
		ID: id, Kind: entities.KindTurn, SceneID: "scene-1", Order: 1,
		Actions: []entities.Action{
			{ActorID: "char-1", Act: "I search the desk for hidden drawers"},
		},
		Status: status,
		Meta:   entities.Meta{CreatedBy: "player-1", CreatedAt: s.now},
	}})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestSubmitMovesDraftToReady() {
	s.seed()
	svc := s.newService(true)

	out, err := svc.Submit(s.ctx, &turnorch.SubmitInput{
		TurnID: "turn-1", SessionID: "session-1", SubmittedBy: "player-1",
	})
	s.Require().NoError(err)
	s.Equal(entities.TurnReadyForAgents, out.Turn.Status)
	s.Equal("session-1", out.Turn.SessionID)

	last := out.Turn.Changes[len(out.Turn.Changes)-1]
	s.Equal("player-1", last.By)
	s.Equal(entities.ChangeSubmitted, last.Type)
}

func (s *OrchestratorTestSuite) TestSubmitRejectsNonDraft() {
	s.seed()
	s.seedTurn("turn-done", entities.TurnCompleted)
	svc := s.newService(true)

	_, err := svc.Submit(s.ctx, &turnorch.SubmitInput{TurnID: "turn-done"})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestProcessTurnAsyncDispatches() {
	s.seed()
	svc := s.newService(true)

	s.mockRelay.EXPECT().TurnProcessing(gomock.Any(), "session-1", "turn-1")

	var captured *assembly.ContextBundle
	s.mockNarrator.EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *assembly.ContextBundle) (narrator.DispatchOutcome, error) {
			captured = b
			return narrator.OutcomeDelivered, nil
		})

	out, err := svc.ProcessTurn(s.ctx, &turnorch.ProcessTurnInput{
		TurnID: "turn-1", SessionID: "session-1", SubmittedBy: "player-1",
	})
	s.Require().NoError(err)
	s.Equal(narrator.OutcomeDelivered, out.Dispatch)
	s.Equal(entities.TurnProcessing, out.Turn.Status)
	s.Nil(out.Completion)

	s.Require().NotNil(captured)
	s.Equal("turn-1", captured.TurnID)
	s.Equal("http://backend:8000/api/v1/turns/internal/turn-1/complete", captured.CallbackURL)

	// "search" triggered a Spot Hidden check; 25 against 60 lands a
	// hard success.
	s.Require().Len(captured.Context.SkillChecks, 1)
	check := captured.Context.SkillChecks[0]
	s.Equal("Spot Hidden", check.SkillName)
	s.Equal(25, check.Rolled)
	s.Equal(skillcheck.HardSuccess, check.SuccessLevel)

	stored, err := s.turnRepo.Get(s.ctx, turnrepo.GetInput{ID: "turn-1"})
	s.Require().NoError(err)
	s.Equal(entities.TurnProcessing, stored.Turn.Status)
	s.Equal("session-1", stored.Turn.SessionID)
}

func (s *OrchestratorTestSuite) TestProcessTurnRejectsSecondSubmission() {
	s.seed()
	svc := s.newService(true)

	s.mockRelay.EXPECT().TurnProcessing(gomock.Any(), "session-1", "turn-1")
	s.mockNarrator.EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		Return(narrator.OutcomeDelivered, nil)

	_, err := svc.ProcessTurn(s.ctx, &turnorch.ProcessTurnInput{
		TurnID: "turn-1", SessionID: "session-1", SubmittedBy: "player-1",
	})
	s.Require().NoError(err)

	_, err = svc.ProcessTurn(s.ctx, &turnorch.ProcessTurnInput{
		TurnID: "turn-1", SessionID: "session-1", SubmittedBy: "player-2",
	})
	s.Require().Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestProcessTurnAsyncSwallowsDispatchTimeout() {
	s.seed()
	svc := s.newService(true)

	s.mockRelay.EXPECT().TurnProcessing(gomock.Any(), "session-1", "turn-1")
	s.mockNarrator.EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		Return(narrator.OutcomeTimeout, errors.DeadlineExceeded("narrator request timed out"))

	out, err := svc.ProcessTurn(s.ctx, &turnorch.ProcessTurnInput{
		TurnID: "turn-1", SessionID: "session-1", SubmittedBy: "player-1",
	})
	s.Require().NoError(err)
	s.Equal(narrator.OutcomeTimeout, out.Dispatch)

	// The turn stays processing; recovery is the narrator's retry or
	// an operator resubmitting.
	stored, err := s.turnRepo.Get(s.ctx, turnrepo.GetInput{ID: "turn-1"})
	s.Require().NoError(err)
	s.Equal(entities.TurnProcessing, stored.Turn.Status)
}

func (s *OrchestratorTestSuite) TestProcessTurnMissingSceneFailsTurn() {
	s.seed()
	_, err := s.turnRepo.Create(s.ctx, turnrepo.CreateInput{Turn: &entities.Turn{
		ID: "turn-orphan", Kind: entities.KindTurn, SceneID: "scene-gone", Order: 1,
		Status: entities.TurnDraft,
		Meta:   entities.Meta{CreatedBy: "player-1", CreatedAt: s.now},
	}})
	s.Require().NoError(err)

	svc := s.newService(true)
	s.mockRelay.EXPECT().TurnProcessing(gomock.Any(), "session-1", "turn-orphan")
	s.mockRelay.EXPECT().TurnFailed(gomock.Any(), "session-1", "turn-orphan", gomock.Any())

	_, err = svc.ProcessTurn(s.ctx, &turnorch.ProcessTurnInput{
		TurnID: "turn-orphan", SessionID: "session-1", SubmittedBy: "player-1",
	})
	s.Require().Error(err)

	stored, err := s.turnRepo.Get(s.ctx, turnrepo.GetInput{ID: "turn-orphan"})
	s.Require().NoError(err)
	s.Equal(entities.TurnFailed, stored.Turn.Status)
	s.Contains(stored.Turn.Error, "scene not found")
}

func (s *OrchestratorTestSuite) TestProcessTurnSyncCompletesWithTransition() {
	s.seed()
	svc := s.newService(false)

	s.mockRelay.EXPECT().TurnProcessing(gomock.Any(), "session-1", "turn-1")
	s.mockNarrator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(map[string]interface{}{
			"turn_id": "turn-1",
			"success": true,
			"result": map[string]interface{}{
				"narrative": "The drawer slides open to reveal a silver key.",
				"summary":   "A key is found.",
				"transition": map[string]interface{}{
					"type":           "scene",
					"reason":         "The key opens the cellar.",
					"suggested_name": "The Cellar",
				},
			},
		}, nil)
	s.mockRelay.EXPECT().SceneCreated(gomock.Any(), "session-1", gomock.Any(), "The Cellar")
	s.mockRelay.EXPECT().TurnCompleted(gomock.Any(), "session-1", "turn-1", gomock.Any(), gomock.Any())

	out, err := svc.ProcessTurn(s.ctx, &turnorch.ProcessTurnInput{
		TurnID: "turn-1", SessionID: "session-1", SubmittedBy: "player-1",
	})
	s.Require().NoError(err)
	s.Require().NotNil(out.Completion)
	s.Equal(entities.TurnCompleted, out.Completion.Status)
	s.NotEqual("scene-1", out.Completion.SceneID)

	stored, err := s.turnRepo.Get(s.ctx, turnrepo.GetInput{ID: "turn-1"})
	s.Require().NoError(err)
	s.Equal(entities.TurnCompleted, stored.Turn.Status)
	s.Require().NotNil(stored.Turn.Reaction)
	s.Equal("The drawer slides open to reveal a silver key.", stored.Turn.Reaction.Description)

	oldScene, err := s.sceneRepo.Get(s.ctx, scene.GetInput{ID: "scene-1"})
	s.Require().NoError(err)
	s.Equal(entities.NarrativeCompleted, oldScene.Scene.Status)
}

func (s *OrchestratorTestSuite) TestProcessTurnSyncGenerationTimeoutFailsTurn() {
	s.seed()
	svc := s.newService(false)

	s.mockRelay.EXPECT().TurnProcessing(gomock.Any(), "session-1", "turn-1")
	s.mockNarrator.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(nil, errors.DeadlineExceeded("narrator request timed out"))
	s.mockRelay.EXPECT().TurnFailed(gomock.Any(), "session-1", "turn-1", gomock.Any())

	_, err := svc.ProcessTurn(s.ctx, &turnorch.ProcessTurnInput{
		TurnID: "turn-1", SessionID: "session-1", SubmittedBy: "player-1",
	})
	s.Require().Error(err)
	s.True(errors.IsDeadlineExceeded(err))

	stored, err := s.turnRepo.Get(s.ctx, turnrepo.GetInput{ID: "turn-1"})
	s.Require().NoError(err)
	s.Equal(entities.TurnFailed, stored.Turn.Status)
	s.Contains(stored.Turn.Error, "timed out")
}

func (s *OrchestratorTestSuite) processToProcessing(svc turnorch.Service) {
	s.mockRelay.EXPECT().TurnProcessing(gomock.Any(), "session-1", "turn-1")
	s.mockNarrator.EXPECT().
		Dispatch(gomock.Any(), gomock.Any()).
		Return(narrator.OutcomeDelivered, nil)

	_, err := svc.ProcessTurn(s.ctx, &turnorch.ProcessTurnInput{
		TurnID: "turn-1", SessionID: "session-1", SubmittedBy: "player-1",
	})
	s.Require().NoError(err)
}

func (s *OrchestratorTestSuite) TestCompleteSuccessWithoutTransition() {
	s.seed()
	svc := s.newService(true)
	s.processToProcessing(svc)

	s.mockRelay.EXPECT().TurnCompleted(gomock.Any(), "session-1", "turn-1", "scene-1", gomock.Any())

	out, err := svc.Complete(s.ctx, &turnorch.CompleteInput{
		TurnID: "turn-1",
		Payload: turnorch.CallbackPayload{
			TurnID:  "turn-1",
			Success: true,
			Result: &turnorch.CallbackResult{
				Narrative: "Dust motes drift in the lamplight.",
			},
		},
	})
	s.Require().NoError(err)
	s.Equal(entities.TurnCompleted, out.Status)
	s.Equal("scene-1", out.SceneID)

	status, err := svc.GetStatus(s.ctx, &turnorch.GetStatusInput{TurnID: "turn-1"})
	s.Require().NoError(err)
	s.Equal(entities.TurnCompleted, status.Status)
	s.True(status.HasReaction)
	s.Empty(status.Error)
}

func (s *OrchestratorTestSuite) TestCompleteFailurePayload() {
	s.seed()
	svc := s.newService(true)
	s.processToProcessing(svc)

	s.mockRelay.EXPECT().TurnFailed(gomock.Any(), "session-1", "turn-1", "model crashed")

	out, err := svc.Complete(s.ctx, &turnorch.CompleteInput{
		TurnID: "turn-1",
		Payload: turnorch.CallbackPayload{
			TurnID: "turn-1", Success: false, Error: "model crashed",
		},
	})
	s.Require().NoError(err)
	s.Equal(entities.TurnFailed, out.Status)

	status, err := svc.GetStatus(s.ctx, &turnorch.GetStatusInput{TurnID: "turn-1"})
	s.Require().NoError(err)
	s.Equal(entities.TurnFailed, status.Status)
	s.False(status.HasReaction)
	s.Equal("model crashed", status.Error)
}

func (s *OrchestratorTestSuite) TestCompleteChapterTransition() {
	s.seed()
	svc := s.newService(true)
	s.processToProcessing(svc)

	s.mockRelay.EXPECT().ChapterCreated(gomock.Any(), "session-1", gomock.Any(), gomock.Any(), "Ashes")
	s.mockRelay.EXPECT().TurnCompleted(gomock.Any(), "session-1", "turn-1", gomock.Any(), gomock.Any())

	out, err := svc.Complete(s.ctx, &turnorch.CompleteInput{
		TurnID: "turn-1",
		Payload: turnorch.CallbackPayload{
			TurnID:  "turn-1",
			Success: true,
			Result: &turnorch.CallbackResult{
				Narrative: "The house collapses in flame.",
				Transition: map[string]interface{}{
					"type":           "chapter",
					"reason":         "The house is gone.",
					"suggested_name": "Ashes",
				},
			},
		},
	})
	s.Require().NoError(err)
	s.Equal(entities.TurnCompleted, out.Status)
	s.NotEmpty(out.ChapterID)
	s.NotEqual("chapter-1", out.ChapterID)

	oldChapter, err := s.chapterRepo.Get(s.ctx, chapter.GetInput{ID: "chapter-1"})
	s.Require().NoError(err)
	s.Equal(entities.NarrativeCompleted, oldChapter.Chapter.Status)
}

func (s *OrchestratorTestSuite) TestCompleteReappliesDuplicateCallback() {
	s.seed()
	svc := s.newService(true)
	s.processToProcessing(svc)

	s.mockRelay.EXPECT().
		TurnCompleted(gomock.Any(), "session-1", "turn-1", "scene-1", gomock.Any()).
		Times(2)

	for _, narrative := range []string{"First delivery.", "Second delivery."} {
		_, err := svc.Complete(s.ctx, &turnorch.CompleteInput{
			TurnID: "turn-1",
			Payload: turnorch.CallbackPayload{
				TurnID:  "turn-1",
				Success: true,
				Result:  &turnorch.CallbackResult{Narrative: narrative},
			},
		})
		s.Require().NoError(err)
	}

	// The second callback overwrote the first; duplicates are not
	// deduplicated.
	stored, err := s.turnRepo.Get(s.ctx, turnrepo.GetInput{ID: "turn-1"})
	s.Require().NoError(err)
	s.Equal("Second delivery.", stored.Turn.Reaction.Description)
}

func (s *OrchestratorTestSuite) TestGetStatusNotFound() {
	s.seed()
	svc := s.newService(true)

	_, err := svc.GetStatus(s.ctx, &turnorch.GetStatusInput{TurnID: "turn-gone"})
	s.Require().Error(err)
	s.True(errors.IsNotFound(err))
}

func TestOrchestratorTestSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
