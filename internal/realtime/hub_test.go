package realtime_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/greymere/keeper-api/internal/clients/narrator"
	"github.com/greymere/keeper-api/internal/realtime"
)

type stubOracle struct {
	answer string
	err    error
}

func (s *stubOracle) AskRules(_ context.Context, _ *narrator.AskRulesInput) (*narrator.AskRulesOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &narrator.AskRulesOutput{Answer: s.answer}, nil
}

type HubTestSuite struct {
	suite.Suite
	hub    *realtime.Hub
	server *httptest.Server
	oracle *stubOracle
}

func (s *HubTestSuite) SetupTest() {
	s.oracle = &stubOracle{answer: "Roll Luck to find the book."}

	var err error
	s.hub, err = realtime.NewHub(&realtime.Config{Oracle: s.oracle})
	s.Require().NoError(err)

	s.server = httptest.NewServer(s.hub)
	s.T().Cleanup(s.server.Close)
}

func (s *HubTestSuite) dial() *websocket.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = ws.Close() })

	// Every connection is greeted first.
	env := s.read(ws)
	s.Require().Equal(realtime.EventConnected, env.Event)
	return ws
}

func (s *HubTestSuite) read(ws *websocket.Conn) realtime.Envelope {
	s.Require().NoError(ws.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var env realtime.Envelope
	s.Require().NoError(ws.ReadJSON(&env))
	return env
}

func (s *HubTestSuite) send(ws *websocket.Conn, event string, data interface{}) {
	raw, err := json.Marshal(data)
	s.Require().NoError(err)
	s.Require().NoError(ws.WriteJSON(realtime.Envelope{Event: event, Data: raw}))
}

func (s *HubTestSuite) join(ws *websocket.Conn, sessionID, playerID, playerName string) {
	s.send(ws, realtime.EventJoinSession, map[string]string{
		"session_id":  sessionID,
		"player_id":   playerID,
		"player_name": playerName,
	})
	env := s.read(ws)
	s.Require().Equal(realtime.EventSessionJoined, env.Event)
}

func (s *HubTestSuite) TestJoinBuildsPresence() {
	alice := s.dial()
	s.join(alice, "session-1", "player-alice", "Alice")

	bob := s.dial()
	s.send(bob, realtime.EventJoinSession, map[string]string{
		"session_id": "session-1", "player_id": "player-bob", "player_name": "Bob",
	})

	env := s.read(bob)
	s.Require().Equal(realtime.EventSessionJoined, env.Event)

	var joined struct {
		SessionID     string            `json:"session_id"`
		PlayersOnline []realtime.Member `json:"players_online"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &joined))
	s.Equal("session-1", joined.SessionID)
	s.Len(joined.PlayersOnline, 2)

	// The earlier member hears about the newcomer.
	env = s.read(alice)
	s.Equal(realtime.EventPlayerJoined, env.Event)

	members := s.hub.Presence("session-1")
	s.Len(members, 2)
}

func (s *HubTestSuite) TestJoinRequiresIdentity() {
	ws := s.dial()
	s.send(ws, realtime.EventJoinSession, map[string]string{"session_id": "session-1"})

	env := s.read(ws)
	s.Equal(realtime.EventError, env.Event)
	s.Empty(s.hub.Presence("session-1"))
}

func (s *HubTestSuite) TestServerBroadcastReachesRoom() {
	alice := s.dial()
	s.join(alice, "session-1", "player-alice", "Alice")
	bob := s.dial()
	s.join(bob, "session-1", "player-bob", "Bob")
	s.read(alice) // player_joined for bob

	err := s.hub.Broadcast("session-1", realtime.EventTurnProcessing,
		map[string]string{"turn_id": "turn-9"})
	s.Require().NoError(err)

	for _, ws := range []*websocket.Conn{alice, bob} {
		env := s.read(ws)
		s.Equal(realtime.EventTurnProcessing, env.Event)

		var data map[string]string
		s.Require().NoError(json.Unmarshal(env.Data, &data))
		s.Equal("turn-9", data["turn_id"])
	}
}

func (s *HubTestSuite) TestDraftEditsSkipSender() {
	alice := s.dial()
	s.join(alice, "session-1", "player-alice", "Alice")
	bob := s.dial()
	s.join(bob, "session-1", "player-bob", "Bob")
	s.read(alice) // player_joined for bob

	s.send(alice, realtime.EventActionDraftUpdated, map[string]string{
		"player_id": "player-alice", "act": "searches the bookshelf",
	})

	env := s.read(bob)
	s.Equal(realtime.EventActionDraftUpdated, env.Event)

	// The sender gets nothing back; the next frame it sees is an
	// unrelated server push.
	s.Require().NoError(s.hub.Broadcast("session-1", realtime.EventTurnProcessing, nil))
	env = s.read(alice)
	s.Equal(realtime.EventTurnProcessing, env.Event)
}

func (s *HubTestSuite) TestTurnSubmittedFansOut() {
	alice := s.dial()
	s.join(alice, "session-1", "player-alice", "Alice")
	bob := s.dial()
	s.join(bob, "session-1", "player-bob", "Bob")
	s.read(alice) // player_joined for bob

	s.send(alice, realtime.EventTurnSubmitted, map[string]string{
		"turn_id": "turn-1", "submitted_by": "player-alice",
	})

	env := s.read(bob)
	s.Require().Equal(realtime.EventTurnSubmitted, env.Event)

	var data map[string]string
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal("turn-1", data["turn_id"])

	// The submitter is not echoed its own announcement.
	s.Require().NoError(s.hub.Broadcast("session-1", realtime.EventTurnProcessing, nil))
	env = s.read(alice)
	s.Equal(realtime.EventTurnProcessing, env.Event)
}

func (s *HubTestSuite) TestOracleAnswersPrivately() {
	alice := s.dial()
	s.join(alice, "session-1", "player-alice", "Alice")
	bob := s.dial()
	s.join(bob, "session-1", "player-bob", "Bob")
	s.read(alice) // player_joined for bob

	s.send(alice, realtime.EventOracleQuestion, map[string]string{
		"player_id": "player-alice", "question": "Where is the tome?",
	})

	env := s.read(alice)
	s.Require().Equal(realtime.EventOracleAnswer, env.Event)

	var answer narrator.AskRulesOutput
	s.Require().NoError(json.Unmarshal(env.Data, &answer))
	s.Equal("Roll Luck to find the book.", answer.Answer)

	// Bob hears a room broadcast afterwards, never the private answer.
	s.Require().NoError(s.hub.Broadcast("session-1", realtime.EventTurnProcessing, nil))
	env = s.read(bob)
	s.Equal(realtime.EventTurnProcessing, env.Event)
}

func (s *HubTestSuite) TestLeaveAnnouncesAndClearsPresence() {
	alice := s.dial()
	s.join(alice, "session-1", "player-alice", "Alice")
	bob := s.dial()
	s.join(bob, "session-1", "player-bob", "Bob")
	s.read(alice) // player_joined for bob

	s.send(bob, realtime.EventLeaveSession, nil)

	env := s.read(alice)
	s.Equal(realtime.EventPlayerLeft, env.Event)

	var data map[string]string
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Equal("player-bob", data["player_id"])

	s.Eventually(func() bool {
		return len(s.hub.Presence("session-1")) == 1
	}, time.Second, 10*time.Millisecond)
}

func (s *HubTestSuite) TestDisconnectAnnounced() {
	alice := s.dial()
	s.join(alice, "session-1", "player-alice", "Alice")
	bob := s.dial()
	s.join(bob, "session-1", "player-bob", "Bob")
	s.read(alice) // player_joined for bob

	s.Require().NoError(bob.Close())

	env := s.read(alice)
	s.Equal(realtime.EventPlayerDisconnected, env.Event)

	s.Eventually(func() bool {
		return len(s.hub.Presence("session-1")) == 1
	}, time.Second, 10*time.Millisecond)
}

func (s *HubTestSuite) TestEventBeforeJoinRejected() {
	ws := s.dial()
	s.send(ws, realtime.EventRealmChatMessage, map[string]string{"message": "hello?"})

	env := s.read(ws)
	s.Equal(realtime.EventError, env.Event)
}

func TestHubTestSuite(t *testing.T) {
	suite.Run(t, new(HubTestSuite))
}
