package redis

import (
	"fmt"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
)

// Key prefix for all engine data
const keyPrefix = "sheep"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// staffAccountKey returns the Redis key for a StaffAccount
func staffAccountKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:staff:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// waitingListKey returns the Redis key for the FIFO waiting queue (a LIST of player ids)
func waitingListKey() string {
	return fmt.Sprintf("%s:waiting", keyPrefix)
}

// waitingSetKey returns the Redis key for the waiting-queue membership SET
func waitingSetKey() string {
	return fmt.Sprintf("%s:waiting:members", keyPrefix)
}

// waitingEntryKey returns the Redis key for a single WaitingEntry
func waitingEntryKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:waiting:entry:%s", keyPrefix, playerID)
}

// sessionKey returns the Redis key for a GameSession
func sessionKey(id model.GameID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// playerSessionIndexKey returns the Redis key for the player_id -> game_id index
func playerSessionIndexKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_session:%s", keyPrefix, playerID)
}
