package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/clock"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/random"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/relay"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/generator"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage"
)

const (
	// GameIDLength is the length of generated game ids
	GameIDLength = 8
	// GameIDAlphabet is the characters used in game ids (avoid confusing chars)
	GameIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Config holds the session-lifecycle delays
type Config struct {
	// TypingDelayMin/Max bound the simulated "typing" pause before a
	// generated reply is relayed
	TypingDelayMin time.Duration
	TypingDelayMax time.Duration
	// SettleDelay is the pause between a resolved guess and the
	// restart signal
	SettleDelay time.Duration
}

// DefaultConfig returns the default session configuration
func DefaultConfig() Config {
	return Config{
		TypingDelayMin: 1 * time.Second,
		TypingDelayMax: 3 * time.Second,
		SettleDelay:    4 * time.Second,
	}
}

// Controller owns the game session table: every create, transition, and
// delete goes through it. Mutations on the same game id are serialized with
// a per-key lock; different sessions interleave freely.
type Controller struct {
	storage   storage.Storage
	emitter   relay.Emitter
	generator generator.ReplyGenerator
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	cfg       Config

	mu    sync.Mutex
	locks map[model.GameID]*sync.Mutex
}

// NewController creates a new session Controller
func NewController(
	store storage.Storage,
	emitter relay.Emitter,
	gen generator.ReplyGenerator,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.TypingDelayMax == 0 {
		cfg = DefaultConfig()
	}
	return &Controller{
		storage:   store,
		emitter:   emitter,
		generator: gen,
		clock:     clk,
		random:    rnd,
		logger:    logger.With(slog.String("component", "session")),
		cfg:       cfg,
		locks:     make(map[model.GameID]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing mutations of one session
func (c *Controller) lockFor(id model.GameID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.locks[id]
	if !ok {
		m = &sync.Mutex{}
		c.locks[id] = m
	}
	return m
}

// releaseLock drops the per-session mutex once the session is gone
func (c *Controller) releaseLock(id model.GameID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, id)
}

// CreateSession creates a new session and notifies the participants. For a
// human pair the first participant (the player who was waiting) takes the
// opening turn; for a bot-backed session the single human does.
func (c *Controller) CreateSession(ctx context.Context, participants []model.Player, isBot bool) (*model.GameSession, error) {
	for _, p := range participants {
		if _, err := c.storage.GetSessionForPlayer(ctx, p.ID); err == nil {
			return nil, model.ErrAlreadyInGame
		} else if !errors.Is(err, model.ErrSessionNotFound) {
			return nil, err
		}
	}

	// Re-roll on collision; short ids can repeat under load
	var gameID model.GameID
	for {
		gameID = model.GameID(c.random.String(GameIDLength, GameIDAlphabet))
		exists, err := c.storage.SessionExists(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	now := c.clock.Now()
	session := &model.GameSession{
		ID:           gameID,
		Participants: participants,
		IsBot:        isBot,
		Transcript:   []model.Message{},
		TurnOwner:    participants[0].ID,
		State:        model.SessionStateActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	for _, p := range participants {
		c.emitter.JoinRoom(gameID, p.ID)
		c.emitter.ToPlayer(p.ID, relay.Event{
			Type: model.EventGameStarted,
			Payload: model.GameStartedPayload{
				GameID:        string(gameID),
				OpponentLabel: model.OpponentLabel,
				YourTurn:      p.ID == session.TurnOwner,
			},
		})
	}

	c.logger.Info("game session created",
		slog.String("game_id", string(gameID)),
		slog.Int("participants", len(participants)),
		slog.Bool("is_bot", isBot),
	)

	return session, nil
}

// GetSession retrieves a session by id
func (c *Controller) GetSession(ctx context.Context, gameID model.GameID) (*model.GameSession, error) {
	return c.storage.GetSession(ctx, gameID)
}

// SubmitMessage handles a chat message from a participant. The sender must
// hold the turn; on acceptance the message is appended to the transcript,
// the turn flips, and the message is relayed to the opponent only. For a
// bot-backed session the turn owner becomes the "none" sentinel until the
// generated reply has been relayed.
func (c *Controller) SubmitMessage(ctx context.Context, gameID model.GameID, senderID model.PlayerID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ErrEmptyMessage
	}

	lock := c.lockFor(gameID)
	lock.Lock()

	session, err := c.storage.GetSession(ctx, gameID)
	if err != nil {
		lock.Unlock()
		return err
	}
	if !session.HasParticipant(senderID) {
		lock.Unlock()
		return model.ErrNotParticipant
	}
	if session.TurnOwner != senderID {
		lock.Unlock()
		return model.ErrOutOfTurn
	}

	session.Transcript = append(session.Transcript, model.Message{
		SenderID: senderID,
		Text:     text,
		SentAt:   c.clock.Now(),
	})

	if session.IsBot {
		// Hold the turn at the sentinel until the reply lands so a
		// second human message cannot slip in mid-generation
		session.TurnOwner = model.TurnNone
	} else {
		session.TurnOwner = session.Opponent(senderID).ID
	}
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		lock.Unlock()
		return err
	}

	transcript := make([]model.Message, len(session.Transcript))
	copy(transcript, session.Transcript)
	isBot := session.IsBot
	var opponentID model.PlayerID
	if !isBot {
		opponentID = session.TurnOwner
	}
	lock.Unlock()

	if isBot {
		c.emitter.ToPlayer(senderID, relay.Event{
			Type:    model.EventTypingIndicator,
			Payload: model.TypingIndicatorPayload{IsTyping: true},
		})
		go c.relayBotReply(gameID, senderID, transcript)
		return nil
	}

	c.emitter.ToPlayer(opponentID, relay.Event{
		Type: model.EventGameMessage,
		Payload: model.GameMessagePayload{
			Text:              text,
			IsFromHumanSender: true,
			CanRespond:        true,
		},
	})
	return nil
}

// relayBotReply simulates the opponent's turn: a typing pause, the generated
// reply, then the turn handed back to the human. Runs detached so other
// sessions keep processing during the delay.
func (c *Controller) relayBotReply(gameID model.GameID, humanID model.PlayerID, transcript []model.Message) {
	ctx := context.Background()

	delay := c.random.Duration(c.cfg.TypingDelayMin, c.cfg.TypingDelayMax)
	_ = c.clock.Sleep(ctx, delay)

	// Never fails; falls back to a canned phrase
	reply := c.generator.Reply(ctx, transcript, humanID)

	lock := c.lockFor(gameID)
	lock.Lock()

	session, err := c.storage.GetSession(ctx, gameID)
	if err != nil {
		// Resolved or torn down while the reply was in flight
		lock.Unlock()
		c.clearTyping(humanID)
		return
	}

	session.Transcript = append(session.Transcript, model.Message{
		SenderID: model.BotSenderID,
		Text:     reply,
		SentAt:   c.clock.Now(),
	})
	session.TurnOwner = humanID
	session.UpdatedAt = c.clock.Now()

	if err := c.storage.SaveSession(ctx, session); err != nil {
		lock.Unlock()
		c.logger.Error("failed to save bot reply",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		c.clearTyping(humanID)
		return
	}
	lock.Unlock()

	c.emitter.ToPlayer(humanID, relay.Event{
		Type: model.EventGameMessage,
		Payload: model.GameMessagePayload{
			Text:              reply,
			IsFromHumanSender: false,
			CanRespond:        true,
		},
	})
	c.clearTyping(humanID)
}

func (c *Controller) clearTyping(playerID model.PlayerID) {
	c.emitter.ToPlayer(playerID, relay.Event{
		Type:    model.EventTypingIndicator,
		Payload: model.TypingIndicatorPayload{IsTyping: false},
	})
}

// Typing relays a typing indicator to the opponent. Bot-backed sessions
// swallow it; the simulated opponent has no typing UI.
func (c *Controller) Typing(ctx context.Context, gameID model.GameID, senderID model.PlayerID, isTyping bool) error {
	session, err := c.storage.GetSession(ctx, gameID)
	if err != nil {
		return err
	}
	if !session.HasParticipant(senderID) {
		return model.ErrNotParticipant
	}
	if session.IsBot {
		return nil
	}

	c.emitter.ToPlayer(session.Opponent(senderID).ID, relay.Event{
		Type:    model.EventTypingIndicator,
		Payload: model.TypingIndicatorPayload{IsTyping: isTyping},
	})
	return nil
}

// SubmitGuess resolves the round. An unknown game id is a silent no-op so a
// second guess after resolution is harmless. The verdict and ground truth go
// to every participant, the session is removed, and after the settle delay
// the participants are released to start a new round.
func (c *Controller) SubmitGuess(ctx context.Context, gameID model.GameID, guesserID model.PlayerID, guess model.Guess) error {
	if !guess.Valid() {
		return model.ErrInvalidGuess
	}

	lock := c.lockFor(gameID)
	lock.Lock()

	session, err := c.storage.GetSession(ctx, gameID)
	if err != nil {
		lock.Unlock()
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if !session.HasParticipant(guesserID) {
		lock.Unlock()
		return model.ErrNotParticipant
	}

	correct := session.VerdictFor(guess)
	session.State = model.SessionStateResolved

	if err := c.storage.DeleteSession(ctx, gameID); err != nil {
		lock.Unlock()
		return err
	}
	lock.Unlock()

	c.emitter.ToRoom(gameID, relay.Event{
		Type: model.EventGuessResult,
		Payload: model.GuessResultPayload{
			Correct: correct,
			WasBot:  session.IsBot,
		},
	})

	// The room and lock are torn down now so a reused game id cannot
	// collide with them; the settle signal addresses the participants
	// directly
	c.emitter.CloseRoom(gameID)
	c.releaseLock(gameID)

	c.logger.Info("guess resolved",
		slog.String("game_id", string(gameID)),
		slog.String("guesser", string(guesserID)),
		slog.String("guess", string(guess)),
		slog.Bool("correct", correct),
	)

	participants := session.Participants
	go func() {
		_ = c.clock.Sleep(context.Background(), c.cfg.SettleDelay)
		for _, p := range participants {
			c.emitter.ToPlayer(p.ID, relay.Event{Type: model.EventRestartGame})
		}
	}()

	return nil
}

// HandleDisconnect tears down the disconnected player's active session, if
// any. The remaining human, for a two-human session, is told the opponent
// left and released immediately.
func (c *Controller) HandleDisconnect(ctx context.Context, playerID model.PlayerID) error {
	session, err := c.storage.GetSessionForPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	lock := c.lockFor(session.ID)
	lock.Lock()

	// Re-check under the lock; a guess may have resolved it already
	session, err = c.storage.GetSession(ctx, session.ID)
	if err != nil {
		lock.Unlock()
		return nil
	}

	if err := c.storage.DeleteSession(ctx, session.ID); err != nil {
		lock.Unlock()
		return err
	}
	lock.Unlock()

	if opponent := session.Opponent(playerID); opponent != nil {
		c.emitter.ToPlayer(opponent.ID, relay.Event{Type: model.EventOpponentLeft})
		c.emitter.ToPlayer(opponent.ID, relay.Event{Type: model.EventRestartGame})
	}
	c.emitter.CloseRoom(session.ID)
	c.releaseLock(session.ID)

	c.logger.Info("session torn down on disconnect",
		slog.String("game_id", string(session.ID)),
		slog.String("player_id", string(playerID)),
	)
	return nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateSession(ctx context.Context, participants []model.Player, isBot bool) (*model.GameSession, error)
	GetSession(ctx context.Context, gameID model.GameID) (*model.GameSession, error)
	SubmitMessage(ctx context.Context, gameID model.GameID, senderID model.PlayerID, text string) error
	Typing(ctx context.Context, gameID model.GameID, senderID model.PlayerID, isTyping bool) error
	SubmitGuess(ctx context.Context, gameID model.GameID, guesserID model.PlayerID, guess model.Guess) error
	HandleDisconnect(ctx context.Context, playerID model.PlayerID) error
}

var _ ControllerInterface = (*Controller)(nil)
