package memory

import (
	"context"
	"sync"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/model"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	players       map[model.PlayerID]*model.Player
	staffAccounts map[model.PlayerID]*model.StaffAccount
	usernameIndex map[string]model.PlayerID
	waiting       []model.WaitingEntry
	sessions      map[model.GameID]*model.GameSession
	playerSession map[model.PlayerID]model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:       make(map[model.PlayerID]*model.Player),
		staffAccounts: make(map[model.PlayerID]*model.StaffAccount),
		usernameIndex: make(map[string]model.PlayerID),
		sessions:      make(map[model.GameID]*model.GameSession),
		playerSession: make(map[model.PlayerID]model.GameID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player
	return nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return player, nil
}

func (s *Storage) DeletePlayer(ctx context.Context, id model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.players, id)
	return nil
}

// Staff account operations

func (s *Storage) SaveStaffAccount(ctx context.Context, account *model.StaffAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staffAccounts[account.PlayerID] = account
	s.usernameIndex[account.Username] = account.PlayerID
	return nil
}

func (s *Storage) GetStaffAccount(ctx context.Context, playerID model.PlayerID) (*model.StaffAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.staffAccounts[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return account, nil
}

func (s *Storage) GetStaffAccountByUsername(ctx context.Context, username string) (*model.StaffAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playerID, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	account, ok := s.staffAccounts[playerID]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return account, nil
}

// Waiting queue operations

func (s *Storage) EnqueueWaiting(ctx context.Context, entry model.WaitingEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.waiting {
		if e.Player.ID == entry.Player.ID {
			return false, nil
		}
	}
	s.waiting = append(s.waiting, entry)
	return true, nil
}

func (s *Storage) DequeueWaiting(ctx context.Context) (*model.WaitingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.waiting) == 0 {
		return nil, nil
	}
	entry := s.waiting[0]
	s.waiting = s.waiting[1:]
	return &entry, nil
}

func (s *Storage) PeekWaiting(ctx context.Context) (*model.WaitingEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.waiting) == 0 {
		return nil, nil
	}
	entry := s.waiting[0]
	return &entry, nil
}

func (s *Storage) RemoveWaiting(ctx context.Context, playerID model.PlayerID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.waiting {
		if e.Player.ID == playerID {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) WaitingCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.waiting), nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	for _, p := range session.Participants {
		s.playerSession[p.ID] = session.ID
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, id model.GameID) (*model.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil
	}
	for _, p := range session.Participants {
		if s.playerSession[p.ID] == id {
			delete(s.playerSession, p.ID)
		}
	}
	delete(s.sessions, id)
	return nil
}

func (s *Storage) SessionExists(ctx context.Context, id model.GameID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok, nil
}

func (s *Storage) GetSessionForPlayer(ctx context.Context, playerID model.PlayerID) (*model.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gameID, ok := s.playerSession[playerID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	session, ok := s.sessions[gameID]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}
