package model

// EventType identifies an outbound event emitted by the engine
type EventType string

const (
	// Matchmaking events
	EventWaitingForPlayer    EventType = "waiting_for_player"
	EventSearchingForPartner EventType = "searching_for_partner"
	EventGameStarted         EventType = "game_started"

	// In-game events
	EventGameMessage     EventType = "game_message"
	EventTypingIndicator EventType = "typing_indicator"
	EventGuessResult     EventType = "guess_result"
	EventRestartGame     EventType = "restart_game"
	EventOpponentLeft    EventType = "opponent_left"

	// EventError is addressed to the offending sender only
	EventError EventType = "error"
)

// OpponentLabel is shown in place of the partner's identity, which is
// withheld until the guess is resolved
const OpponentLabel = "Mystery Partner"

// GameStartedPayload announces a new session to its participants
type GameStartedPayload struct {
	GameID        string `json:"game_id"`
	OpponentLabel string `json:"opponent_label"`
	YourTurn      bool   `json:"your_turn"`
}

// GameMessagePayload carries a relayed chat message to the recipient.
// CanRespond tells the recipient whether the turn is now theirs.
type GameMessagePayload struct {
	Text              string `json:"text"`
	IsFromHumanSender bool   `json:"is_from_human_sender"`
	CanRespond        bool   `json:"can_respond"`
}

// TypingIndicatorPayload relays the opponent's typing state
type TypingIndicatorPayload struct {
	IsTyping bool `json:"is_typing"`
}

// GuessResultPayload carries the verdict and the ground truth
type GuessResultPayload struct {
	Correct bool `json:"correct"`
	WasBot  bool `json:"was_bot"`
}

// ErrorPayload carries a recoverable error message to the offending sender
type ErrorPayload struct {
	Message string `json:"message"`
}
