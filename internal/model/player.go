package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// BotSenderID is the sender id recorded on transcript entries written by the
// simulated opponent. It is never a real participant id.
const BotSenderID PlayerID = "bot"

// Player represents a matchmaking participant. Identity comes from the auth
// layer; the engine only ever keys on the ID.
type Player struct {
	ID          PlayerID
	DisplayName string
	IsGuest     bool // true for patients without staff accounts
	CreatedAt   time.Time
}

// StaffAccount extends a player with login credentials for hospital staff
// (nurses). Stored separately so password hashes never travel with sessions.
type StaffAccount struct {
	PlayerID     PlayerID
	Username     string // login username (immutable)
	PasswordHash string // bcrypt hash
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WaitingEntry is a player parked in the matchmaking queue.
// At most one entry exists per player id; the queue is FIFO.
type WaitingEntry struct {
	Player   Player
	QueuedAt time.Time
}
