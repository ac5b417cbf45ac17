package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	data, err := json.Marshal(player)
	if err != nil {
		return err
	}

	// Apply TTL only for guest players
	var ttl time.Duration
	if player.IsGuest {
		ttl = s.cfg.GuestPlayerTTL
	}

	return s.client.Set(ctx, playerKey(player.ID), data, ttl).Err()
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	data, err := s.client.Get(ctx, playerKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var player model.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}
	return &player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	return s.client.Del(ctx, playerKey(id)).Err()
}

// Staff account operations

func (s *Storage) SaveStaffAccount(ctx context.Context, account *model.StaffAccount) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// Pipeline for atomic save + index update
	pipe := s.client.Pipeline()
	pipe.Set(ctx, staffAccountKey(account.PlayerID), data, 0)
	pipe.Set(ctx, usernameIndexKey(account.Username), string(account.PlayerID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetStaffAccount(ctx context.Context, playerID model.PlayerID) (*model.StaffAccount, error) {
	data, err := s.client.Get(ctx, staffAccountKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}

	var account model.StaffAccount
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *Storage) GetStaffAccountByUsername(ctx context.Context, username string) (*model.StaffAccount, error) {
	playerID, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, err
	}
	return s.GetStaffAccount(ctx, model.PlayerID(playerID))
}

// Waiting queue operations
//
// The queue is a LIST of player ids for ordering, a SET for membership, and
// one entry key per player for the payload.

func (s *Storage) EnqueueWaiting(ctx context.Context, entry model.WaitingEntry) (bool, error) {
	added, err := s.client.SAdd(ctx, waitingSetKey(), string(entry.Player.ID)).Result()
	if err != nil {
		return false, err
	}
	if added == 0 {
		return false, nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, waitingListKey(), string(entry.Player.ID))
	pipe.Set(ctx, waitingEntryKey(entry.Player.ID), data, s.cfg.WaitingTTL)
	_, err = pipe.Exec(ctx)
	return err == nil, err
}

func (s *Storage) DequeueWaiting(ctx context.Context) (*model.WaitingEntry, error) {
	playerID, err := s.client.LPop(ctx, waitingListKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	entry, err := s.getWaitingEntry(ctx, model.PlayerID(playerID))
	if err != nil {
		return nil, err
	}

	pipe := s.client.Pipeline()
	pipe.SRem(ctx, waitingSetKey(), playerID)
	pipe.Del(ctx, waitingEntryKey(model.PlayerID(playerID)))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Storage) PeekWaiting(ctx context.Context) (*model.WaitingEntry, error) {
	playerID, err := s.client.LIndex(ctx, waitingListKey(), 0).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return s.getWaitingEntry(ctx, model.PlayerID(playerID))
}

func (s *Storage) RemoveWaiting(ctx context.Context, playerID model.PlayerID) (bool, error) {
	removed, err := s.client.SRem(ctx, waitingSetKey(), string(playerID)).Result()
	if err != nil {
		return false, err
	}
	if removed == 0 {
		return false, nil
	}

	pipe := s.client.Pipeline()
	pipe.LRem(ctx, waitingListKey(), 1, string(playerID))
	pipe.Del(ctx, waitingEntryKey(playerID))
	_, err = pipe.Exec(ctx)
	return err == nil, err
}

func (s *Storage) WaitingCount(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, waitingListKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Storage) getWaitingEntry(ctx context.Context, playerID model.PlayerID) (*model.WaitingEntry, error) {
	data, err := s.client.Get(ctx, waitingEntryKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Entry expired out from under the list; surface as an
			// entry with just the id so callers can still match.
			return &model.WaitingEntry{Player: model.Player{ID: playerID}}, nil
		}
		return nil, err
	}

	var entry model.WaitingEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionKey(session.ID), data, s.cfg.SessionTTL)
	for _, p := range session.Participants {
		pipe.Set(ctx, playerSessionIndexKey(p.ID), string(session.ID), s.cfg.SessionTTL)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetSession(ctx context.Context, id model.GameID) (*model.GameSession, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.GameSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.GameID) error {
	session, err := s.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.Pipeline()
	for _, p := range session.Participants {
		pipe.Del(ctx, playerSessionIndexKey(p.ID))
	}
	pipe.Del(ctx, sessionKey(id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) SessionExists(ctx context.Context, id model.GameID) (bool, error) {
	n, err := s.client.Exists(ctx, sessionKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Storage) GetSessionForPlayer(ctx context.Context, playerID model.PlayerID) (*model.GameSession, error) {
	gameID, err := s.client.Get(ctx, playerSessionIndexKey(playerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}
	return s.GetSession(ctx, model.GameID(gameID))
}
