package ws_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/mocks"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/relay"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/matchmaking"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/session"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage/memory"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/testutil"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/ws"
)

type stubGenerator struct{}

func (stubGenerator) Reply(ctx context.Context, transcript []model.Message, humanID model.PlayerID) string {
	return "just people watching, honestly"
}

type DispatcherSuite struct {
	suite.Suite

	storage    *memory.Storage
	recorder   *relay.Recorder
	random     *mocks.MockRandom
	dispatcher *ws.Dispatcher

	ctx context.Context
}

func (s *DispatcherSuite) SetupTest() {
	s.storage = memory.New()
	s.recorder = relay.NewRecorder()
	s.random = mocks.NewMockRandom()
	clk := mocks.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))

	sessions := session.NewController(
		s.storage, s.recorder, stubGenerator{}, clk, s.random,
		session.DefaultConfig(), testutil.NopLogger(),
	)
	queue := matchmaking.NewController(
		s.storage, sessions, s.recorder, clk, s.random,
		matchmaking.DefaultConfig(), testutil.NopLogger(),
	)
	s.dispatcher = ws.NewDispatcher(s.storage, queue, sessions, s.recorder, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *DispatcherSuite) savePlayer(id string) {
	require.NoError(s.T(), s.storage.SavePlayer(s.ctx, &model.Player{
		ID:          model.PlayerID(id),
		DisplayName: id,
		IsGuest:     true,
	}))
}

// pairPlayers drives both players through matchmaking into a shared session
func (s *DispatcherSuite) pairPlayers() {
	s.savePlayer("alice")
	s.savePlayer("bob")
	s.random.QueueIntn(1)
	s.random.QueueString("GAME1234")
	s.dispatcher.Dispatch("alice", []byte(`{"event": "request_match"}`))
	s.dispatcher.Dispatch("bob", []byte(`{"event": "request_match"}`))
}

func (s *DispatcherSuite) TestRequestMatchQueuesPlayer() {
	s.savePlayer("alice")
	s.random.QueueIntn(1)

	s.dispatcher.Dispatch("alice", []byte(`{"event": "request_match"}`))

	s.Equal(model.EventWaitingForPlayer, s.recorder.LastPlayerEvent("alice").Type)
	count, err := s.storage.WaitingCount(s.ctx)
	s.NoError(err)
	s.Equal(1, count)
}

func (s *DispatcherSuite) TestFullRoundOverWire() {
	s.pairPlayers()

	sess, err := s.storage.GetSessionForPlayer(s.ctx, "alice")
	require.NoError(s.T(), err)
	s.Equal(model.PlayerID("alice"), sess.TurnOwner)

	s.dispatcher.Dispatch("alice", []byte(`{"event": "send_message", "payload": {"text": "long wait today"}}`))
	bobLast := s.recorder.LastPlayerEvent("bob")
	s.Equal(model.EventGameMessage, bobLast.Type)
	s.Equal("long wait today", bobLast.Payload.(model.GameMessagePayload).Text)

	s.dispatcher.Dispatch("bob", []byte(`{"event": "typing", "payload": {"is_typing": true}}`))
	s.Equal(model.EventTypingIndicator, s.recorder.LastPlayerEvent("alice").Type)

	s.dispatcher.Dispatch("bob", []byte(`{"event": "send_guess", "payload": {"guess": "human"}}`))
	events := s.recorder.PlayerEvents("bob")
	var result *model.GuessResultPayload
	for _, e := range events {
		if e.Type == model.EventGuessResult {
			p := e.Payload.(model.GuessResultPayload)
			result = &p
		}
	}
	require.NotNil(s.T(), result)
	s.True(result.Correct)
	s.False(result.WasBot)

	_, err = s.storage.GetSessionForPlayer(s.ctx, "alice")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *DispatcherSuite) TestOutOfTurnMappedToError() {
	s.pairPlayers()

	s.dispatcher.Dispatch("bob", []byte(`{"event": "send_message", "payload": {"text": "me first"}}`))

	last := s.recorder.LastPlayerEvent("bob")
	s.Equal(model.EventError, last.Type)
	s.Equal("not your turn", last.Payload.(model.ErrorPayload).Message)
}

func (s *DispatcherSuite) TestInvalidGuessMappedToError() {
	s.pairPlayers()

	s.dispatcher.Dispatch("alice", []byte(`{"event": "send_guess", "payload": {"guess": "alien"}}`))

	last := s.recorder.LastPlayerEvent("alice")
	s.Equal(model.EventError, last.Type)
}

func (s *DispatcherSuite) TestMessageWithoutSessionIsSilent() {
	s.savePlayer("alice")

	s.dispatcher.Dispatch("alice", []byte(`{"event": "send_message", "payload": {"text": "hello?"}}`))

	s.Empty(s.recorder.PlayerEvents("alice"))
}

func (s *DispatcherSuite) TestMalformedFrame() {
	s.dispatcher.Dispatch("alice", []byte(`{not json`))

	last := s.recorder.LastPlayerEvent("alice")
	s.Equal(model.EventError, last.Type)
	s.Equal("malformed event", last.Payload.(model.ErrorPayload).Message)
}

func (s *DispatcherSuite) TestUnknownEvent() {
	s.dispatcher.Dispatch("alice", []byte(`{"event": "reboot_kiosk"}`))

	last := s.recorder.LastPlayerEvent("alice")
	s.Equal(model.EventError, last.Type)
	s.Equal("unknown event", last.Payload.(model.ErrorPayload).Message)
}

func (s *DispatcherSuite) TestDisconnectedCleansUpQueueAndSession() {
	s.pairPlayers()

	s.dispatcher.Disconnected("alice")

	_, err := s.storage.GetSessionForPlayer(s.ctx, "bob")
	s.ErrorIs(err, model.ErrSessionNotFound)

	types := s.recorder.PlayerEventTypes("bob")
	s.Contains(types, model.EventOpponentLeft)
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}
