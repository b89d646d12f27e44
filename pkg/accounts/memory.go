package accounts

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/match-server/pkg/elo"
)

// MemoryStore is an in-memory implementation of Store, used in tests and
// when the server runs without a database (guest-only play).
type MemoryStore struct {
	accounts map[string]*Account
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*Account),
		logger:   logger,
	}
}

// Create inserts a new account, enforcing username and email uniqueness.
func (s *MemoryStore) Create(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.Username == account.Username {
			return errors.New("username already exists")
		}
		if existing.Email == account.Email {
			return errors.New("email already exists")
		}
	}

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.Rating == 0 {
		account.Rating = elo.DefaultRating
	}

	stored := *account
	s.accounts[stored.ID] = &stored
	return nil
}

// FindByID retrieves an account by its id.
func (s *MemoryStore) FindByID(_ context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *account
	return &copied, nil
}

// FindByUsername retrieves an account by username.
func (s *MemoryStore) FindByUsername(_ context.Context, username string) (*Account, error) {
	return s.findBy(func(a *Account) bool { return a.Username == username })
}

// FindByEmail retrieves an account by email.
func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*Account, error) {
	return s.findBy(func(a *Account) bool { return a.Email == email })
}

func (s *MemoryStore) findBy(match func(*Account) bool) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, account := range s.accounts {
		if match(account) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateRating sets the account's rating.
func (s *MemoryStore) UpdateRating(_ context.Context, id string, newRating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.Rating = newRating
	return nil
}

// IncrementStats bumps the played counter and the counter matching result.
func (s *MemoryStore) IncrementStats(_ context.Context, id string, result elo.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}

	account.GamesPlayed++
	switch result {
	case elo.Win:
		account.GamesWon++
	case elo.Loss:
		account.GamesLost++
	case elo.Draw:
		account.GamesDrawn++
	}
	return nil
}

// Leaderboard returns the top accounts by rating.
func (s *MemoryStore) Leaderboard(_ context.Context, limit int) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		list = append(list, *account)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Rating > list[j].Rating })

	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
