package relay

import (
	"sync"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
)

// Recorder is an Emitter that records everything for test assertions
type Recorder struct {
	mu       sync.Mutex
	byPlayer map[model.PlayerID][]Event
	byRoom   map[model.GameID][]Event
	rooms    map[model.GameID]map[model.PlayerID]bool
}

// Ensure Recorder implements Emitter
var _ Emitter = (*Recorder)(nil)

// NewRecorder creates a new Recorder
func NewRecorder() *Recorder {
	return &Recorder{
		byPlayer: make(map[model.PlayerID][]Event),
		byRoom:   make(map[model.GameID][]Event),
		rooms:    make(map[model.GameID]map[model.PlayerID]bool),
	}
}

// JoinRoom records room membership
func (r *Recorder) JoinRoom(gameID model.GameID, playerID model.PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rooms[gameID] == nil {
		r.rooms[gameID] = make(map[model.PlayerID]bool)
	}
	r.rooms[gameID][playerID] = true
}

// ToPlayer records an event addressed to a single player
func (r *Recorder) ToPlayer(playerID model.PlayerID, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPlayer[playerID] = append(r.byPlayer[playerID], event)
}

// ToRoom records an event addressed to a room and fans it out to the
// recorded members
func (r *Recorder) ToRoom(gameID model.GameID, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRoom[gameID] = append(r.byRoom[gameID], event)
	for playerID := range r.rooms[gameID] {
		r.byPlayer[playerID] = append(r.byPlayer[playerID], event)
	}
}

// CloseRoom drops room membership
func (r *Recorder) CloseRoom(gameID model.GameID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, gameID)
}

// PlayerEvents returns a copy of all events delivered to a player
func (r *Recorder) PlayerEvents(playerID model.PlayerID) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.byPlayer[playerID]))
	copy(out, r.byPlayer[playerID])
	return out
}

// RoomEvents returns a copy of all events addressed to a room
func (r *Recorder) RoomEvents(gameID model.GameID) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.byRoom[gameID]))
	copy(out, r.byRoom[gameID])
	return out
}

// LastPlayerEvent returns the most recent event for a player, or a zero
// Event if none were delivered
func (r *Recorder) LastPlayerEvent(playerID model.PlayerID) Event {
	events := r.PlayerEvents(playerID)
	if len(events) == 0 {
		return Event{}
	}
	return events[len(events)-1]
}

// PlayerEventTypes returns just the event types delivered to a player, in order
func (r *Recorder) PlayerEventTypes(playerID model.PlayerID) []model.EventType {
	events := r.PlayerEvents(playerID)
	types := make([]model.EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

// InRoom reports whether a player is currently recorded as a room member
func (r *Recorder) InRoom(gameID model.GameID, playerID model.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms[gameID][playerID]
}
