package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Matchmaking errors
	ErrAlreadyInGame = errors.New("player is already in an active game")

	// Session errors
	ErrSessionNotFound = errors.New("game session not found")
	ErrOutOfTurn       = errors.New("not this player's turn")
	ErrNotParticipant  = errors.New("player is not in this game session")
	ErrInvalidGuess    = errors.New("guess must be \"human\" or \"bot\"")
	ErrEmptyMessage    = errors.New("message text is empty")
)
