package storage

import (
	"context"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
)

// Storage defines the interface for engine state persistence.
//
// Implementations only store and retrieve; serialization of mutations is the
// responsibility of the controllers that own each entity (the matchmaking
// queue and the session table).
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Staff account operations
	SaveStaffAccount(ctx context.Context, account *model.StaffAccount) error
	GetStaffAccount(ctx context.Context, playerID model.PlayerID) (*model.StaffAccount, error)
	GetStaffAccountByUsername(ctx context.Context, username string) (*model.StaffAccount, error)

	// Waiting queue operations. The queue is FIFO with at most one entry
	// per player id; Enqueue reports false when the player was already
	// queued, Dequeue and Peek return nil when the queue is empty.
	EnqueueWaiting(ctx context.Context, entry model.WaitingEntry) (bool, error)
	DequeueWaiting(ctx context.Context) (*model.WaitingEntry, error)
	PeekWaiting(ctx context.Context) (*model.WaitingEntry, error)
	RemoveWaiting(ctx context.Context, playerID model.PlayerID) (bool, error)
	WaitingCount(ctx context.Context) (int, error)

	// Session operations. Saving maintains a participant -> session index;
	// deleting clears it.
	SaveSession(ctx context.Context, session *model.GameSession) error
	GetSession(ctx context.Context, id model.GameID) (*model.GameSession, error)
	DeleteSession(ctx context.Context, id model.GameID) error
	SessionExists(ctx context.Context, id model.GameID) (bool, error)
	GetSessionForPlayer(ctx context.Context, playerID model.PlayerID) (*model.GameSession, error)
}
