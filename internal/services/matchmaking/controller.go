package matchmaking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/clock"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/random"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/relay"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/services/session"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage"
)

// Config holds the matchmaking delays
type Config struct {
	// SearchDelayMin/Max bound the simulated partner search before a
	// bot-backed session starts
	SearchDelayMin time.Duration
	SearchDelayMax time.Duration
}

// DefaultConfig returns the default matchmaking configuration
func DefaultConfig() Config {
	return Config{
		SearchDelayMin: 2 * time.Second,
		SearchDelayMax: 5 * time.Second,
	}
}

// Controller owns the waiting queue. A match request pairs the requester
// with the queue head when one is waiting; with an empty queue a coin flip
// decides between queueing the requester and starting a simulated partner
// search that ends in a bot-backed session. The decision is serialized under
// one mutex so two concurrent requesters cannot both see an empty queue.
type Controller struct {
	storage storage.Storage
	session session.ControllerInterface
	emitter relay.Emitter
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
	cfg     Config

	mu       sync.Mutex
	searches map[model.PlayerID]context.CancelFunc
}

// NewController creates a new matchmaking Controller
func NewController(
	store storage.Storage,
	sessionController session.ControllerInterface,
	emitter relay.Emitter,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	if cfg.SearchDelayMax == 0 {
		cfg = DefaultConfig()
	}
	return &Controller{
		storage:  store,
		session:  sessionController,
		emitter:  emitter,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "matchmaking")),
		cfg:      cfg,
		searches: make(map[model.PlayerID]context.CancelFunc),
	}
}

// RequestMatch handles a player's request for an opponent. A requester who
// is already at the head of the queue has no opponent available and goes
// back through the coin flip, so a re-request can still end in a bot match.
func (c *Controller) RequestMatch(ctx context.Context, player model.Player) error {
	if _, err := c.storage.GetSessionForPlayer(ctx, player.ID); err == nil {
		return model.ErrAlreadyInGame
	} else if !errors.Is(err, model.ErrSessionNotFound) {
		return err
	}

	c.mu.Lock()

	if _, searching := c.searches[player.ID]; searching {
		c.mu.Unlock()
		c.emitter.ToPlayer(player.ID, relay.Event{Type: model.EventSearchingForPartner})
		return nil
	}

	head, err := c.storage.PeekWaiting(ctx)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if head != nil && head.Player.ID != player.ID {
		if _, err := c.storage.DequeueWaiting(ctx); err != nil {
			c.mu.Unlock()
			return err
		}
		c.mu.Unlock()

		// The player who waited takes the opening turn
		_, err := c.session.CreateSession(ctx, []model.Player{head.Player, player}, false)
		if err != nil {
			return err
		}
		c.logger.Info("matched human pair",
			slog.String("waiting", string(head.Player.ID)),
			slog.String("requester", string(player.ID)),
		)
		return nil
	}

	// Empty queue, or the requester is its own head: no opponent available,
	// flip the coin
	atHead := head != nil

	if c.random.Intn(2) == 0 {
		if atHead {
			// Leaving the queue for the search keeps a single waiting
			// entry per player
			if _, err := c.storage.RemoveWaiting(ctx, player.ID); err != nil {
				c.mu.Unlock()
				return err
			}
		}
		searchCtx, cancel := context.WithCancel(context.Background())
		c.searches[player.ID] = cancel
		c.mu.Unlock()

		c.emitter.ToPlayer(player.ID, relay.Event{Type: model.EventSearchingForPartner})
		go c.runBotSearch(searchCtx, player)
		return nil
	}

	if !atHead {
		if _, err := c.storage.EnqueueWaiting(ctx, model.WaitingEntry{
			Player:   player,
			QueuedAt: c.clock.Now(),
		}); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.mu.Unlock()

	c.emitter.ToPlayer(player.ID, relay.Event{Type: model.EventWaitingForPlayer})
	if !atHead {
		c.logger.Info("player queued", slog.String("player_id", string(player.ID)))
	}
	return nil
}

// runBotSearch waits out the simulated search delay, then starts a
// bot-backed session unless the search was cancelled.
func (c *Controller) runBotSearch(ctx context.Context, player model.Player) {
	delay := c.random.Duration(c.cfg.SearchDelayMin, c.cfg.SearchDelayMax)
	err := c.clock.Sleep(ctx, delay)

	c.mu.Lock()
	delete(c.searches, player.ID)
	c.mu.Unlock()

	if err != nil {
		return
	}

	if _, err := c.session.CreateSession(context.Background(), []model.Player{player}, true); err != nil {
		c.logger.Error("failed to start bot session",
			slog.String("player_id", string(player.ID)),
			slog.String("error", err.Error()),
		)
	}
}

// HandleDisconnect removes the player from the queue and cancels any
// pending partner search.
func (c *Controller) HandleDisconnect(ctx context.Context, playerID model.PlayerID) error {
	c.mu.Lock()
	if cancel, ok := c.searches[playerID]; ok {
		cancel()
		delete(c.searches, playerID)
	}
	c.mu.Unlock()

	removed, err := c.storage.RemoveWaiting(ctx, playerID)
	if err != nil {
		return err
	}
	if removed {
		c.logger.Info("removed disconnected player from queue",
			slog.String("player_id", string(playerID)),
		)
	}
	return nil
}

// WaitingCount reports the number of players in the waiting queue
func (c *Controller) WaitingCount(ctx context.Context) (int, error) {
	return c.storage.WaitingCount(ctx)
}

// Interface for dependency injection
type ControllerInterface interface {
	RequestMatch(ctx context.Context, player model.Player) error
	HandleDisconnect(ctx context.Context, playerID model.PlayerID) error
	WaitingCount(ctx context.Context) (int, error)
}

var _ ControllerInterface = (*Controller)(nil)
