package profile

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"schemeportal/internal/identity/models"
	"schemeportal/pkg/sentinel"
)

type phoneKey struct {
	role  models.Role
	phone string
}

// MemoryStore keeps profiles in process memory, enforcing the same
// uniqueness rules as the Postgres schema: one profile per account, one
// phone number per role.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]models.Profile
	byAccount map[uuid.UUID]uuid.UUID
	byPhone   map[phoneKey]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[uuid.UUID]models.Profile),
		byAccount: make(map[uuid.UUID]uuid.UUID),
		byPhone:   make(map[phoneKey]uuid.UUID),
	}
}

func (s *MemoryStore) Create(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byAccount[p.AccountID]; exists {
		return sentinel.ErrConflict
	}
	key := phoneKey{role: p.Role, phone: p.PhoneNumber}
	if _, exists := s.byPhone[key]; exists {
		return sentinel.ErrConflict
	}
	s.byID[p.ID] = *p
	s.byAccount[p.AccountID] = p.ID
	s.byPhone[key] = p.ID
	return nil
}

func (s *MemoryStore) FindByAccountID(_ context.Context, accountID uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byAccount[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p := s.byID[id]
	return &p, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}
