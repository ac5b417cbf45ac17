package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/relay"
)

// Hub tracks connected clients and game rooms, and delivers engine events to
// them over their websocket send buffers. One client per player id; a new
// connection for the same player replaces the old one.
type Hub struct {
	mu      sync.RWMutex
	clients map[model.PlayerID]*Client
	rooms   map[model.GameID]map[model.PlayerID]bool
	logger  *slog.Logger
}

// Ensure Hub satisfies the engine's event relay contract
var _ relay.Emitter = (*Hub)(nil)

// NewHub creates a new Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[model.PlayerID]*Client),
		rooms:   make(map[model.GameID]map[model.PlayerID]bool),
		logger:  logger.With(slog.String("component", "ws")),
	}
}

// Register adds a client, displacing any existing connection for the player
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	old, exists := h.clients[client.playerID]
	h.clients[client.playerID] = client
	clientCount := len(h.clients)
	h.mu.Unlock()

	if exists {
		old.shutdown()
	}
	h.logger.Info("ws client registered",
		slog.String("player_id", string(client.playerID)),
		slog.Int("total_clients", clientCount))
}

// Unregister removes a client if it is still the player's current connection
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.playerID]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.playerID)
	clientCount := len(h.clients)
	h.mu.Unlock()

	client.shutdown()
	h.logger.Info("ws client unregistered",
		slog.String("player_id", string(client.playerID)),
		slog.Int("total_clients", clientCount))
}

// JoinRoom adds a player to a game room
func (h *Hub) JoinRoom(gameID model.GameID, playerID model.PlayerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[gameID] == nil {
		h.rooms[gameID] = make(map[model.PlayerID]bool)
	}
	h.rooms[gameID][playerID] = true
}

// CloseRoom drops a game room's membership
func (h *Hub) CloseRoom(gameID model.GameID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, gameID)
}

// ToPlayer delivers an event to a single player, if connected
func (h *Hub) ToPlayer(playerID model.PlayerID, event relay.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event",
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	client := h.clients[playerID]
	h.mu.RUnlock()

	if client == nil {
		return
	}
	h.deliver(client, data, event.Type)
}

// ToRoom delivers an event to every player in a game room
func (h *Hub) ToRoom(gameID model.GameID, event relay.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event",
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	var targets []*Client
	for playerID := range h.rooms[gameID] {
		if client := h.clients[playerID]; client != nil {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		h.deliver(client, data, event.Type)
	}
}

func (h *Hub) deliver(client *Client, data []byte, eventType model.EventType) {
	if !client.enqueue(data) {
		h.logger.Warn("ws message dropped - client gone or buffer full",
			slog.String("player_id", string(client.playerID)),
			slog.String("event", string(eventType)))
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
