package model

import "time"

// GameID is the unique token identifying one matchmaking round
type GameID string

// SessionState represents the lifecycle of a game session
type SessionState string

const (
	SessionStateActive   SessionState = "active"   // Messages and guesses accepted
	SessionStateResolved SessionState = "resolved" // Guess evaluated, terminal
)

// TurnNone is the turn-owner sentinel used while a simulated-opponent reply
// is in flight. No message is accepted while it is set.
const TurnNone PlayerID = ""

// Guess is a player's verdict on who they have been talking to
type Guess string

const (
	GuessHuman Guess = "human"
	GuessBot   Guess = "bot"
)

// Valid reports whether the guess is one of the two accepted values
func (g Guess) Valid() bool {
	return g == GuessHuman || g == GuessBot
}

// Message is a single transcript entry
type Message struct {
	SenderID PlayerID
	Text     string
	SentAt   time.Time
}

// GameSession is the central entity of the engine: two humans, or one human
// and a simulated opponent, taking strictly alternating turns. The session
// table exclusively owns all records; everything else refers to a session
// only by GameID.
type GameSession struct {
	ID           GameID
	Participants []Player // one entry when IsBot is true
	IsBot        bool     // fixed at creation
	Transcript   []Message
	TurnOwner    PlayerID // TurnNone while a bot reply is pending
	State        SessionState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasParticipant reports whether the player belongs to this session
func (s *GameSession) HasParticipant(id PlayerID) bool {
	for _, p := range s.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Opponent returns the other human participant, or nil for bot-backed
// sessions and unknown ids
func (s *GameSession) Opponent(id PlayerID) *Player {
	if s.IsBot {
		return nil
	}
	for i := range s.Participants {
		if s.Participants[i].ID != id {
			return &s.Participants[i]
		}
	}
	return nil
}

// VerdictFor reports whether a guess matches the session's ground truth
func (s *GameSession) VerdictFor(g Guess) bool {
	return (g == GuessBot) == s.IsBot
}
