// Package stores provides UserStore implementations. The in-memory
// store here backs tests and credential-less development runs; the
// gorm subpackage holds the production store.
package stores

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	soulauth "github.com/rishav-raunak/SearchImage-unplace"
)

// MemUserStore is a mutex-guarded in-memory UserStore. Uniqueness of
// email and provider ids is enforced under the same lock as the
// insert, so concurrent creates behave like a database unique index:
// exactly one wins, the rest get a duplicate error.
type MemUserStore struct {
	mu         sync.RWMutex
	byID       map[string]*soulauth.User
	byEmail    map[string]string
	byProvider map[soulauth.Provider]map[string]string
}

var _ soulauth.UserStore = (*MemUserStore)(nil)

func NewMemUserStore() *MemUserStore {
	byProvider := make(map[soulauth.Provider]map[string]string)
	for _, p := range soulauth.Providers() {
		byProvider[p] = make(map[string]string)
	}
	return &MemUserStore{
		byID:       make(map[string]*soulauth.User),
		byEmail:    make(map[string]string),
		byProvider: byProvider,
	}
}

func (s *MemUserStore) GetUserByID(ctx context.Context, id string) (*soulauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, soulauth.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (s *MemUserStore) GetUserByEmail(ctx context.Context, email string) (*soulauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, soulauth.ErrUserNotFound
	}
	return copyUser(s.byID[id]), nil
}

func (s *MemUserStore) GetUserByProviderID(ctx context.Context, p soulauth.Provider, providerID string) (*soulauth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byProvider[p][providerID]
	if !ok {
		return nil, soulauth.ErrUserNotFound
	}
	return copyUser(s.byID[id]), nil
}

func (s *MemUserStore) CreateUser(ctx context.Context, user *soulauth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return soulauth.ErrDuplicateEmail
	}
	for _, p := range soulauth.Providers() {
		if pid := user.ProviderID(p); pid != "" {
			if _, taken := s.byProvider[p][pid]; taken {
				return soulauth.ErrDuplicateProviderID
			}
		}
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.index(copyUser(user))
	return nil
}

func (s *MemUserStore) SaveUser(ctx context.Context, user *soulauth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.byID[user.ID]
	if !ok {
		return soulauth.ErrUserNotFound
	}
	if id, taken := s.byEmail[user.Email]; taken && id != user.ID {
		return soulauth.ErrDuplicateEmail
	}
	for _, p := range soulauth.Providers() {
		if pid := user.ProviderID(p); pid != "" {
			if id, taken := s.byProvider[p][pid]; taken && id != user.ID {
				return soulauth.ErrDuplicateProviderID
			}
		}
	}

	s.unindex(prev)
	user.UpdatedAt = time.Now()
	s.index(copyUser(user))
	return nil
}

func (s *MemUserStore) index(user *soulauth.User) {
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user.ID
	for _, p := range soulauth.Providers() {
		if pid := user.ProviderID(p); pid != "" {
			s.byProvider[p][pid] = user.ID
		}
	}
}

func (s *MemUserStore) unindex(user *soulauth.User) {
	delete(s.byEmail, user.Email)
	for _, p := range soulauth.Providers() {
		if pid := user.ProviderID(p); pid != "" {
			delete(s.byProvider[p], pid)
		}
	}
}

func copyUser(u *soulauth.User) *soulauth.User {
	out := *u
	return &out
}
