package account

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"schemeportal/internal/identity/models"
	"schemeportal/pkg/sentinel"
)

// MemoryStore keeps accounts in process memory. It mirrors the Postgres
// store's constraint behavior so unit tests exercise the same error paths.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]models.Account
	byIdentity map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[uuid.UUID]models.Account),
		byIdentity: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byIdentity[account.LoginIdentity]; exists {
		return sentinel.ErrConflict
	}
	s.byID[account.ID] = *account
	s.byIdentity[account.LoginIdentity] = account.ID
	return nil
}

func (s *MemoryStore) FindByLoginIdentity(_ context.Context, identity string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byIdentity[identity]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	account := s.byID[id]
	return &account, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &account, nil
}
