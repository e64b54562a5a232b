package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"schemeportal/internal/scheme/models"
	"schemeportal/pkg/sentinel"
)

// MemoryStore keeps schemes in process memory, mirroring the Postgres
// store's case-insensitive name uniqueness.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]models.Scheme
	byName map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[uuid.UUID]models.Scheme),
		byName: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) Create(_ context.Context, scheme *models.Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(scheme.Name)
	if _, exists := s.byName[key]; exists {
		return sentinel.ErrConflict
	}
	s.byID[scheme.ID] = *scheme
	s.byName[key] = scheme.ID
	return nil
}

func (s *MemoryStore) ListActive(_ context.Context) ([]models.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var schemes []models.Scheme
	for _, scheme := range s.byID {
		if scheme.IsActive {
			schemes = append(schemes, scheme)
		}
	}
	sort.Slice(schemes, func(i, j int) bool {
		return schemes[i].CreatedAt.After(schemes[j].CreatedAt)
	})
	return schemes, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scheme, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &scheme, nil
}
