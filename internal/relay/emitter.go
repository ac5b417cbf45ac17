// Package relay defines the narrow contract between the game engine and the
// connection layer. The engine addresses events by player id or by game room,
// never by broadcast-to-all.
package relay

import "github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"

// Event is a single outbound event with its typed payload
type Event struct {
	Type    model.EventType `json:"event"`
	Payload any             `json:"payload,omitempty"`
}

// Emitter delivers events to connected players. Implementations must be safe
// for concurrent use and must tolerate targets that are no longer connected
// (delivery is best-effort; the engine never blocks on a slow client).
type Emitter interface {
	// JoinRoom subscribes a player's connection to a game room
	JoinRoom(gameID model.GameID, playerID model.PlayerID)

	// ToPlayer sends an event to a single player's connection
	ToPlayer(playerID model.PlayerID, event Event)

	// ToRoom sends an event to every player in a game room
	ToRoom(gameID model.GameID, event Event)

	// CloseRoom unsubscribes all players from a game room
	CloseRoom(gameID model.GameID)
}
