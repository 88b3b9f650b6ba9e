package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/greymere/keeper-api/internal/clients/narrator"
	narratormock "github.com/greymere/keeper-api/internal/clients/narrator/mock"
	"github.com/greymere/keeper-api/internal/entities"
	"github.com/greymere/keeper-api/internal/handlers/api"
	turnorch "github.com/greymere/keeper-api/internal/orchestrators/turn"
	turnorchmock "github.com/greymere/keeper-api/internal/orchestrators/turn/mock"
	"github.com/greymere/keeper-api/internal/pkg/clock"
	"github.com/greymere/keeper-api/internal/repositories/actiondraft"
	"github.com/greymere/keeper-api/internal/repositories/campaign"
	"github.com/greymere/keeper-api/internal/repositories/chapter"
	"github.com/greymere/keeper-api/internal/repositories/character"
	"github.com/greymere/keeper-api/internal/repositories/npc"
	"github.com/greymere/keeper-api/internal/repositories/player"
	"github.com/greymere/keeper-api/internal/repositories/realm"
	"github.com/greymere/keeper-api/internal/repositories/scene"
	"github.com/greymere/keeper-api/internal/repositories/session"
	turnrepo "github.com/greymere/keeper-api/internal/repositories/turn"
	"github.com/greymere/keeper-api/internal/repositories/world"
	"github.com/greymere/keeper-api/internal/testutils"
)

type HandlerTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	worldRepo    world.Repository
	realmRepo    realm.Repository
	campaignRepo campaign.Repository
	chapterRepo  chapter.Repository
	sceneRepo    scene.Repository
	turnRepo     turnrepo.Repository

	mockTurns  *turnorchmock.MockService
	mockOracle *narratormock.MockClient

	server *httptest.Server
	now    time.Time
}

func (s *HandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.now = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

	client, _ := testutils.CreateTestRedisClient(s.T())

	var err error
	s.worldRepo, err = world.NewRedis(&world.Config{Client: client})
	s.Require().NoError(err)
	s.realmRepo, err = realm.NewRedis(&realm.Config{Client: client})
	s.Require().NoError(err)
	s.campaignRepo, err = campaign.NewRedis(&campaign.Config{Client: client})
	s.Require().NoError(err)
	s.chapterRepo, err = chapter.NewRedis(&chapter.Config{Client: client})
	s.Require().NoError(err)
	s.sceneRepo, err = scene.NewRedis(&scene.Config{Client: client})
	s.Require().NoError(err)
	s.turnRepo, err = turnrepo.NewRedis(&turnrepo.Config{Client: client})
	s.Require().NoError(err)
	characterRepo, err := character.NewRedis(&character.Config{Client: client})
	s.Require().NoError(err)
	npcRepo, err := npc.NewRedis(&npc.Config{Client: client})
	s.Require().NoError(err)
	playerRepo, err := player.NewRedis(&player.Config{Client: client})
	s.Require().NoError(err)
	sessionRepo, err := session.NewRedis(&session.Config{Client: client})
	s.Require().NoError(err)
	draftRepo, err := actiondraft.NewRedis(&actiondraft.Config{Client: client})
	s.Require().NoError(err)

	s.mockTurns = turnorchmock.NewMockService(s.ctrl)
	s.mockOracle = narratormock.NewMockClient(s.ctrl)

	h, err := api.NewHandler(&api.Config{
		WorldRepo:     s.worldRepo,
		RealmRepo:     s.realmRepo,
		CampaignRepo:  s.campaignRepo,
		ChapterRepo:   s.chapterRepo,
		SceneRepo:     s.sceneRepo,
		TurnRepo:      s.turnRepo,
		CharacterRepo: characterRepo,
		NPCRepo:       npcRepo,
		PlayerRepo:    playerRepo,
		SessionRepo:   sessionRepo,
		DraftRepo:     draftRepo,
		Turns:         s.mockTurns,
		Oracle:        s.mockOracle,
		Clock:         &clock.Fixed{T: s.now},
	})
	s.Require().NoError(err)

	s.server = httptest.NewServer(h.Router())
	s.T().Cleanup(s.server.Close)
}

func (s *HandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerTestSuite) do(method, path string, body interface{}) *http.Response {
	s.T().Helper()

	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *HandlerTestSuite) decode(resp *http.Response, v interface{}) {
	s.T().Helper()
	defer func() { _ = resp.Body.Close() }()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

// createWorld seeds a world through the API and returns its id.
func (s *HandlerTestSuite) createWorld() string {
	resp := s.do(http.MethodPost, "/api/v1/worlds", map[string]interface{}{
		"name":    "Arkham 1925",
		"ruleset": "coc7e",
		"meta":    map[string]string{"created_by": "player-1"},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var wd entities.World
	s.decode(resp, &wd)
	return wd.ID
}

func (s *HandlerTestSuite) createRealm(worldID string) string {
	resp := s.do(http.MethodPost, "/api/v1/realms", map[string]interface{}{
		"world_id": worldID,
		"name":     "The Miskatonic Circle",
		"meta":     map[string]string{"created_by": "player-1"},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var rm entities.Realm
	s.decode(resp, &rm)
	return rm.ID
}

func (s *HandlerTestSuite) createCampaign(realmID string) string {
	resp := s.do(http.MethodPost, "/api/v1/campaigns", map[string]interface{}{
		"realm_id": realmID,
		"name":     "The Haunting",
		"meta":     map[string]string{"created_by": "player-1"},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var c entities.Campaign
	s.decode(resp, &c)
	return c.ID
}

func (s *HandlerTestSuite) createChapter(campaignID string) string {
	resp := s.do(http.MethodPost, "/api/v1/chapters", map[string]interface{}{
		"campaign_id": campaignID,
		"name":        "The Boarded House",
		"meta":        map[string]string{"created_by": "player-1"},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var c entities.Chapter
	s.decode(resp, &c)
	return c.ID
}

func (s *HandlerTestSuite) createScene(chapterID string) string {
	resp := s.do(http.MethodPost, "/api/v1/scenes", map[string]interface{}{
		"chapter_id": chapterID,
		"name":       "The Front Parlor",
		"meta":       map[string]string{"created_by": "player-1"},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var sc entities.Scene
	s.decode(resp, &sc)
	return sc.ID
}

func (s *HandlerTestSuite) TestHealthz() {
	resp := s.do(http.MethodGet, "/healthz", nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	var body map[string]string
	s.decode(resp, &body)
	s.Equal("ok", body["status"])
}

func (s *HandlerTestSuite) TestWorldLifecycle() {
	id := s.createWorld()
	s.Contains(id, "world-")

	resp := s.do(http.MethodGet, "/api/v1/worlds/"+id, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var wd entities.World
	s.decode(resp, &wd)
	s.Equal(entities.KindWorld, wd.Kind)
	s.Equal("Arkham 1925", wd.Name)
	s.Require().Len(wd.Changes, 1)
	s.Equal(entities.ChangeCreated, wd.Changes[0].Type)
	s.Equal("player-1", wd.Changes[0].By)
	s.Equal(s.now, wd.Meta.CreatedAt)

	resp = s.do(http.MethodPut, "/api/v1/worlds/"+id, map[string]interface{}{
		"name": "Arkham 1926",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.decode(resp, &wd)
	s.Equal("Arkham 1926", wd.Name)
	s.Equal("coc7e", wd.Ruleset)
	s.Require().Len(wd.Changes, 2)
	s.Equal(entities.ChangeUpdated, wd.Changes[1].Type)

	resp = s.do(http.MethodDelete, "/api/v1/worlds/"+id, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.do(http.MethodGet, "/api/v1/worlds/"+id, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *HandlerTestSuite) TestListWorlds() {
	s.createWorld()
	s.createWorld()

	resp := s.do(http.MethodGet, "/api/v1/worlds", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var worlds []entities.World
	s.decode(resp, &worlds)
	s.Len(worlds, 2)
}

func (s *HandlerTestSuite) TestCreateRealmRequiresWorld() {
	resp := s.do(http.MethodPost, "/api/v1/realms", map[string]interface{}{
		"world_id": "world-missing",
		"name":     "Orphans",
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.do(http.MethodPost, "/api/v1/realms", map[string]interface{}{
		"name": "No Parent",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *HandlerTestSuite) TestCampaignWiredIntoRealm() {
	worldID := s.createWorld()
	realmID := s.createRealm(worldID)
	campaignID := s.createCampaign(realmID)

	resp := s.do(http.MethodGet, "/api/v1/realms/"+realmID, nil)
	var rm entities.Realm
	s.decode(resp, &rm)
	s.Equal([]string{campaignID}, rm.Campaigns)

	resp = s.do(http.MethodDelete, "/api/v1/campaigns/"+campaignID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.do(http.MethodGet, "/api/v1/realms/"+realmID, nil)
	s.decode(resp, &rm)
	s.Empty(rm.Campaigns)
}

func (s *HandlerTestSuite) TestChapterJoinsStoryArc() {
	worldID := s.createWorld()
	realmID := s.createRealm(worldID)
	campaignID := s.createCampaign(realmID)
	chapterID := s.createChapter(campaignID)

	resp := s.do(http.MethodGet, "/api/v1/chapters/"+chapterID, nil)
	var ch entities.Chapter
	s.decode(resp, &ch)
	s.Equal(entities.NarrativeActive, ch.Status)
	s.Equal(1, ch.Order)

	resp = s.do(http.MethodGet, "/api/v1/campaigns/"+campaignID, nil)
	var c entities.Campaign
	s.decode(resp, &c)
	s.Require().NotNil(c.StoryArc)
	s.Equal([]string{chapterID}, c.StoryArc.Chapters)

	second := s.createChapter(campaignID)
	resp = s.do(http.MethodGet, "/api/v1/chapters/"+second, nil)
	s.decode(resp, &ch)
	s.Equal(2, ch.Order)
}

func (s *HandlerTestSuite) TestSceneJoinsChapter() {
	worldID := s.createWorld()
	realmID := s.createRealm(worldID)
	campaignID := s.createCampaign(realmID)
	chapterID := s.createChapter(campaignID)
	sceneID := s.createScene(chapterID)

	resp := s.do(http.MethodGet, "/api/v1/chapters/"+chapterID, nil)
	var ch entities.Chapter
	s.decode(resp, &ch)
	s.Equal([]string{sceneID}, ch.Scenes)

	resp = s.do(http.MethodDelete, "/api/v1/scenes/"+sceneID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.do(http.MethodGet, "/api/v1/chapters/"+chapterID, nil)
	s.decode(resp, &ch)
	s.Empty(ch.Scenes)
}

func (s *HandlerTestSuite) TestListScenesRequiresChapterID() {
	resp := s.do(http.MethodGet, "/api/v1/scenes", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *HandlerTestSuite) TestTurnCreateForcesDraft() {
	worldID := s.createWorld()
	realmID := s.createRealm(worldID)
	campaignID := s.createCampaign(realmID)
	chapterID := s.createChapter(campaignID)
	sceneID := s.createScene(chapterID)

	resp := s.do(http.MethodPost, "/api/v1/turns", map[string]interface{}{
		"scene_id": sceneID,
		"status":   "completed",
		"actions": []map[string]interface{}{
			{"actor_id": "char-1", "act": "I open the door."},
		},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var t entities.Turn
	s.decode(resp, &t)
	s.Equal(entities.TurnDraft, t.Status)
	s.Equal(1, t.Order)
	s.Require().Len(t.Actions, 1)

	resp = s.do(http.MethodGet, "/api/v1/scenes/"+sceneID, nil)
	var sc entities.Scene
	s.decode(resp, &sc)
	s.Equal([]string{t.ID}, sc.Turns)
}

func (s *HandlerTestSuite) TestUpdateNonDraftTurnRejected() {
	worldID := s.createWorld()
	realmID := s.createRealm(worldID)
	campaignID := s.createCampaign(realmID)
	chapterID := s.createChapter(campaignID)
	sceneID := s.createScene(chapterID)

	resp := s.do(http.MethodPost, "/api/v1/turns", map[string]interface{}{"scene_id": sceneID})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var t entities.Turn
	s.decode(resp, &t)

	t.Status = entities.TurnCompleted
	_, err := s.turnRepo.Update(s.T().Context(), turnrepo.UpdateInput{Turn: &t})
	s.Require().NoError(err)

	resp = s.do(http.MethodPut, "/api/v1/turns/"+t.ID, map[string]interface{}{
		"actions": []map[string]interface{}{{"actor_id": "char-1", "act": "Too late."}},
	})
	s.Equal(http.StatusPreconditionFailed, resp.StatusCode)
	_ = resp.Body.Close()

	resp = s.do(http.MethodDelete, "/api/v1/turns/"+t.ID, nil)
	s.Equal(http.StatusPreconditionFailed, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *HandlerTestSuite) TestActionDraftRoundTrip() {
	resp := s.do(http.MethodPut, "/api/v1/action-drafts/session-1/player-1", map[string]interface{}{
		"character_id": "char-1",
		"act":          "I check the bookshelf.",
		"ready":        true,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var d entities.ActionDraft
	s.decode(resp, &d)
	s.Equal("session-1", d.SessionID)
	s.Equal("player-1", d.PlayerID)
	s.Equal(s.now, d.UpdatedAt)

	resp = s.do(http.MethodGet, "/api/v1/action-drafts?session_id=session-1", nil)
	var drafts []entities.ActionDraft
	s.decode(resp, &drafts)
	s.Len(drafts, 1)

	resp = s.do(http.MethodDelete, "/api/v1/action-drafts/session/session-1", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var cleared map[string]int
	s.decode(resp, &cleared)
	s.Equal(1, cleared["removed"])

	resp = s.do(http.MethodGet, "/api/v1/action-drafts/session-1/player-1", nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *HandlerTestSuite) TestSubmitTurn() {
	s.mockTurns.EXPECT().
		ProcessTurn(gomock.Any(), &turnorch.ProcessTurnInput{
			TurnID:      "turn-1",
			SessionID:   "session-1",
			SubmittedBy: "player-1",
		}).
		Return(&turnorch.ProcessTurnOutput{
			Turn: &entities.Turn{ID: "turn-1", Status: entities.TurnProcessing},
		}, nil)

	resp := s.do(http.MethodPost, "/api/v1/turns/turn-1/submit", map[string]interface{}{
		"session_id":   "session-1",
		"submitted_by": "player-1",
	})
	s.Require().Equal(http.StatusAccepted, resp.StatusCode)

	var body map[string]interface{}
	s.decode(resp, &body)
	s.Equal("turn-1", body["turn_id"])
	s.Equal("processing", body["status"])
}

func (s *HandlerTestSuite) TestSubmitTurnEmptyBody() {
	s.mockTurns.EXPECT().
		ProcessTurn(gomock.Any(), &turnorch.ProcessTurnInput{TurnID: "turn-1"}).
		Return(&turnorch.ProcessTurnOutput{
			Turn: &entities.Turn{ID: "turn-1", Status: entities.TurnProcessing},
		}, nil)

	resp := s.do(http.MethodPost, "/api/v1/turns/turn-1/submit", nil)
	s.Equal(http.StatusAccepted, resp.StatusCode)
	_ = resp.Body.Close()
}

func (s *HandlerTestSuite) TestCompleteTurn() {
	s.mockTurns.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, in *turnorch.CompleteInput) (*turnorch.CompleteOutput, error) {
			s.Equal("turn-1", in.TurnID)
			s.True(in.Payload.Success)
			s.Require().NotNil(in.Payload.Result)
			s.Equal("The door creaks open.", in.Payload.Result.Narrative)
			return &turnorch.CompleteOutput{
				Status:    entities.TurnCompleted,
				TurnID:    "turn-1",
				SceneID:   "scene-1",
				ChapterID: "chapter-1",
			}, nil
		})

	resp := s.do(http.MethodPost, "/api/v1/turns/internal/turn-1/complete", map[string]interface{}{
		"turn_id": "turn-1",
		"success": true,
		"result":  map[string]interface{}{"narrative": "The door creaks open."},
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	s.decode(resp, &body)
	s.Equal("completed", body["status"])
	s.Equal("scene-1", body["scene_id"])
	s.Equal("chapter-1", body["chapter_id"])
}

func (s *HandlerTestSuite) TestTurnStatus() {
	s.mockTurns.EXPECT().
		GetStatus(gomock.Any(), &turnorch.GetStatusInput{TurnID: "turn-9"}).
		Return(&turnorch.GetStatusOutput{
			TurnID:      "turn-9",
			Status:      entities.TurnFailed,
			HasReaction: false,
			Error:       "narrator unreachable",
		}, nil)

	resp := s.do(http.MethodGet, "/api/v1/turns/turn-9/status", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	s.decode(resp, &body)
	s.Equal("failed", body["status"])
	s.Equal("narrator unreachable", body["error"])
}

func (s *HandlerTestSuite) TestAskOracle() {
	s.mockOracle.EXPECT().
		AskRules(gomock.Any(), &narrator.AskRulesInput{
			PlayerID: "player-1",
			Question: "Can I dodge and fight back in the same round?",
		}).
		Return(&narrator.AskRulesOutput{Answer: "No, pick one reaction."}, nil)

	resp := s.do(http.MethodPost, "/api/v1/oracle/ask", map[string]interface{}{
		"player_id": "player-1",
		"question":  "Can I dodge and fight back in the same round?",
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	s.decode(resp, &body)
	s.Equal("No, pick one reaction.", body["answer"])
}

func (s *HandlerTestSuite) TestSessionNumbering() {
	worldID := s.createWorld()
	realmID := s.createRealm(worldID)
	campaignID := s.createCampaign(realmID)

	for i := 1; i <= 2; i++ {
		resp := s.do(http.MethodPost, "/api/v1/sessions", map[string]interface{}{
			"campaign_id": campaignID,
		})
		s.Require().Equal(http.StatusCreated, resp.StatusCode)
		var sess entities.Session
		s.decode(resp, &sess)
		s.Equal(i, sess.SessionNumber)
		s.Equal(realmID, sess.RealmID)
	}
}

func (s *HandlerTestSuite) TestInvalidBodyRejected() {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/v1/worlds",
		bytes.NewBufferString("{not json"))
	s.Require().NoError(err)
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
