package matchmaking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/clock"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/mocks"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/relay"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/matchmaking"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/session"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage/memory"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/testutil"
)

type stubGenerator struct{}

func (stubGenerator) Reply(ctx context.Context, transcript []model.Message, humanID model.PlayerID) string {
	return "not much, just waiting"
}

// blockingClock holds every Sleep until released, so tests can observe the
// search in its pending state.
type blockingClock struct {
	*mocks.MockClock
	release chan struct{}
}

var _ clock.Clock = (*blockingClock)(nil)

func (c *blockingClock) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.release:
		return nil
	}
}

type ControllerSuite struct {
	suite.Suite

	storage    *memory.Storage
	recorder   *relay.Recorder
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	sessions   *session.Controller
	controller *matchmaking.Controller

	ctx context.Context
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.recorder = relay.NewRecorder()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.sessions = session.NewController(
		s.storage, s.recorder, stubGenerator{}, s.clock, s.random,
		session.DefaultConfig(), testutil.NopLogger(),
	)
	s.controller = matchmaking.NewController(
		s.storage, s.sessions, s.recorder, s.clock, s.random,
		matchmaking.DefaultConfig(), testutil.NopLogger(),
	)
	s.ctx = context.Background()
}

// withBlockingClock swaps in a matchmaking controller whose search delay
// never elapses until released
func (s *ControllerSuite) withBlockingClock() chan struct{} {
	release := make(chan struct{})
	s.controller = matchmaking.NewController(
		s.storage, s.sessions, s.recorder,
		&blockingClock{MockClock: s.clock, release: release},
		s.random, matchmaking.DefaultConfig(), testutil.NopLogger(),
	)
	return release
}

func (s *ControllerSuite) player(id string) model.Player {
	return model.Player{ID: model.PlayerID(id), DisplayName: id, IsGuest: true, CreatedAt: s.clock.Now()}
}

func (s *ControllerSuite) TestCoinFlipQueuesPlayer() {
	s.random.QueueIntn(1)

	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))

	s.Equal(model.EventWaitingForPlayer, s.recorder.LastPlayerEvent("alice").Type)
	count, err := s.controller.WaitingCount(s.ctx)
	s.NoError(err)
	s.Equal(1, count)
}

func (s *ControllerSuite) TestRepeatedRequestWhileWaiting() {
	// A requester at its own queue head flips the coin again; both flips
	// land on the wait branch here
	s.random.QueueIntn(1)
	s.random.QueueIntn(1)
	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))
	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))

	s.Equal([]model.EventType{
		model.EventWaitingForPlayer,
		model.EventWaitingForPlayer,
	}, s.recorder.PlayerEventTypes("alice"))

	count, err := s.controller.WaitingCount(s.ctx)
	s.NoError(err)
	s.Equal(1, count)
}

func (s *ControllerSuite) TestRepeatedRequestCanReachBotSearch() {
	// First flip queues alice; the re-request's flip picks the bot path,
	// which pulls her out of the queue and runs the simulated search
	s.random.QueueIntn(1)
	s.random.QueueIntn(0)
	s.random.QueueString("BOTGAME1")

	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))
	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))

	s.Equal(model.EventSearchingForPartner, s.recorder.LastPlayerEvent("alice").Type)
	count, err := s.controller.WaitingCount(s.ctx)
	s.NoError(err)
	s.Equal(0, count)

	s.Require().Eventually(func() bool {
		sess, err := s.storage.GetSessionForPlayer(s.ctx, "alice")
		return err == nil && sess.IsBot
	}, time.Second, 5*time.Millisecond)
}

func (s *ControllerSuite) TestPairsWithWaitingPlayer() {
	s.random.QueueIntn(1)
	s.random.QueueString("GAME1234")
	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))
	s.NoError(s.controller.RequestMatch(s.ctx, s.player("bob")))

	count, err := s.controller.WaitingCount(s.ctx)
	s.NoError(err)
	s.Equal(0, count)

	sess, err := s.storage.GetSessionForPlayer(s.ctx, "alice")
	require.NoError(s.T(), err)
	s.False(sess.IsBot)
	s.Len(sess.Participants, 2)
	// The player who waited opens
	s.Equal(model.PlayerID("alice"), sess.TurnOwner)
	s.True(sess.HasParticipant("bob"))

	s.Equal(model.EventGameStarted, s.recorder.LastPlayerEvent("alice").Type)
	s.Equal(model.EventGameStarted, s.recorder.LastPlayerEvent("bob").Type)
}

func (s *ControllerSuite) TestCoinFlipStartsBotSearch() {
	s.random.QueueIntn(0)
	s.random.QueueString("BOTGAME1")

	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))
	s.Equal(model.EventSearchingForPartner, s.recorder.LastPlayerEvent("alice").Type)

	s.Require().Eventually(func() bool {
		sess, err := s.storage.GetSessionForPlayer(s.ctx, "alice")
		return err == nil && sess.IsBot
	}, time.Second, 5*time.Millisecond)

	s.Contains(s.clock.SleptDurations(), matchmaking.DefaultConfig().SearchDelayMin)
}

func (s *ControllerSuite) TestRequestWhileSearchingReacknowledges() {
	release := s.withBlockingClock()
	defer close(release)
	s.random.QueueIntn(0)

	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))
	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))

	s.Equal([]model.EventType{
		model.EventSearchingForPartner,
		model.EventSearchingForPartner,
	}, s.recorder.PlayerEventTypes("alice"))

	count, err := s.controller.WaitingCount(s.ctx)
	s.NoError(err)
	s.Equal(0, count)
}

func (s *ControllerSuite) TestRequestWhileInGameRejected() {
	s.random.QueueString("GAME1234")
	_, err := s.sessions.CreateSession(s.ctx, []model.Player{s.player("alice"), s.player("bob")}, false)
	require.NoError(s.T(), err)

	s.ErrorIs(s.controller.RequestMatch(s.ctx, s.player("alice")), model.ErrAlreadyInGame)
}

func (s *ControllerSuite) TestDisconnectCancelsSearch() {
	release := s.withBlockingClock()
	s.random.QueueIntn(0)

	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))
	s.NoError(s.controller.HandleDisconnect(s.ctx, "alice"))
	close(release)

	s.Never(func() bool {
		_, err := s.storage.GetSessionForPlayer(s.ctx, "alice")
		return err == nil
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func (s *ControllerSuite) TestDisconnectRemovesFromQueue() {
	s.random.QueueIntn(1)
	s.NoError(s.controller.RequestMatch(s.ctx, s.player("alice")))
	s.NoError(s.controller.HandleDisconnect(s.ctx, "alice"))

	count, err := s.controller.WaitingCount(s.ctx)
	s.NoError(err)
	s.Equal(0, count)
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}
