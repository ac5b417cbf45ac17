package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/relay"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/matchmaking"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/session"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage"
)

// Inbound client event names
const (
	inboundRequestMatch = "request_match"
	inboundSendMessage  = "send_message"
	inboundSendGuess    = "send_guess"
	inboundTyping       = "typing"
)

type inboundEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type sendMessagePayload struct {
	Text string `json:"text"`
}

type sendGuessPayload struct {
	Guess string `json:"guess"`
}

type typingPayload struct {
	IsTyping bool `json:"is_typing"`
}

// Dispatcher routes inbound client events to the matchmaking and session
// controllers. A player is in at most one active session, so in-game events
// carry no game id; the dispatcher resolves it from the session table.
type Dispatcher struct {
	storage     storage.Storage
	matchmaking matchmaking.ControllerInterface
	sessions    session.ControllerInterface
	emitter     relay.Emitter
	logger      *slog.Logger
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	store storage.Storage,
	matchmakingController matchmaking.ControllerInterface,
	sessionController session.ControllerInterface,
	emitter relay.Emitter,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		storage:     store,
		matchmaking: matchmakingController,
		sessions:    sessionController,
		emitter:     emitter,
		logger:      logger.With(slog.String("component", "dispatch")),
	}
}

// Dispatch handles one inbound frame from a connected player
func (d *Dispatcher) Dispatch(playerID model.PlayerID, data []byte) {
	ctx := context.Background()

	var event inboundEvent
	if err := json.Unmarshal(data, &event); err != nil {
		d.sendError(playerID, "malformed event")
		return
	}

	var err error
	switch event.Event {
	case inboundRequestMatch:
		err = d.handleRequestMatch(ctx, playerID)
	case inboundSendMessage:
		err = d.handleSendMessage(ctx, playerID, event.Payload)
	case inboundSendGuess:
		err = d.handleSendGuess(ctx, playerID, event.Payload)
	case inboundTyping:
		err = d.handleTyping(ctx, playerID, event.Payload)
	default:
		d.sendError(playerID, "unknown event")
		return
	}

	if err != nil {
		d.handleError(playerID, event.Event, err)
	}
}

// Disconnected tears down the player's queue entry, pending search, and
// active session
func (d *Dispatcher) Disconnected(playerID model.PlayerID) {
	ctx := context.Background()

	if err := d.matchmaking.HandleDisconnect(ctx, playerID); err != nil {
		d.logger.Error("matchmaking disconnect cleanup failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
	}
	if err := d.sessions.HandleDisconnect(ctx, playerID); err != nil {
		d.logger.Error("session disconnect cleanup failed",
			slog.String("player_id", string(playerID)),
			slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) handleRequestMatch(ctx context.Context, playerID model.PlayerID) error {
	player, err := d.storage.GetPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	return d.matchmaking.RequestMatch(ctx, *player)
}

func (d *Dispatcher) handleSendMessage(ctx context.Context, playerID model.PlayerID, raw json.RawMessage) error {
	var payload sendMessagePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}

	sess, err := d.storage.GetSessionForPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	return d.sessions.SubmitMessage(ctx, sess.ID, playerID, payload.Text)
}

func (d *Dispatcher) handleSendGuess(ctx context.Context, playerID model.PlayerID, raw json.RawMessage) error {
	var payload sendGuessPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}

	sess, err := d.storage.GetSessionForPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	return d.sessions.SubmitGuess(ctx, sess.ID, playerID, model.Guess(payload.Guess))
}

func (d *Dispatcher) handleTyping(ctx context.Context, playerID model.PlayerID, raw json.RawMessage) error {
	var payload typingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}

	sess, err := d.storage.GetSessionForPlayer(ctx, playerID)
	if err != nil {
		return err
	}
	return d.sessions.Typing(ctx, sess.ID, playerID, payload.IsTyping)
}

// handleError maps controller errors onto the wire. A vanished session is
// expected during teardown races and stays silent.
func (d *Dispatcher) handleError(playerID model.PlayerID, event string, err error) {
	if errors.Is(err, model.ErrSessionNotFound) {
		return
	}

	switch {
	case errors.Is(err, model.ErrOutOfTurn):
		d.sendError(playerID, "not your turn")
	case errors.Is(err, model.ErrEmptyMessage):
		d.sendError(playerID, "message is empty")
	case errors.Is(err, model.ErrInvalidGuess):
		d.sendError(playerID, "guess must be human or bot")
	case errors.Is(err, model.ErrAlreadyInGame):
		d.sendError(playerID, "already in a game")
	case errors.Is(err, model.ErrNotParticipant):
		d.sendError(playerID, "not a participant")
	default:
		d.logger.Error("event handling failed",
			slog.String("player_id", string(playerID)),
			slog.String("event", event),
			slog.String("error", err.Error()))
		d.sendError(playerID, "internal error")
	}
}

func (d *Dispatcher) sendError(playerID model.PlayerID, message string) {
	d.emitter.ToPlayer(playerID, relay.Event{
		Type:    model.EventError,
		Payload: model.ErrorPayload{Message: message},
	})
}
