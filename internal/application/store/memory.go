package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"schemeportal/internal/application/models"
	"schemeportal/pkg/sentinel"
)

type pairKey struct {
	citizenProfileID uuid.UUID
	schemeID         uuid.UUID
}

// MemoryStore keeps applications in process memory, mirroring the Postgres
// store's uniqueness and conditional-update behavior.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]models.Application
	byPair map[pairKey]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[uuid.UUID]models.Application),
		byPair: make(map[pairKey]uuid.UUID),
	}
}

func (s *MemoryStore) Create(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{citizenProfileID: app.CitizenProfileID, schemeID: app.SchemeID}
	if _, exists := s.byPair[key]; exists {
		return sentinel.ErrConflict
	}
	s.byID[app.ID] = *app
	s.byPair[key] = app.ID
	return nil
}

func (s *MemoryStore) ListByCitizen(_ context.Context, citizenProfileID uuid.UUID) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var apps []models.Application
	for _, app := range s.byID {
		if app.CitizenProfileID == citizenProfileID {
			apps = append(apps, app)
		}
	}
	sortNewestFirst(apps)
	return apps, nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	apps := make([]models.Application, 0, len(s.byID))
	for _, app := range s.byID {
		apps = append(apps, app)
	}
	sortNewestFirst(apps)
	return apps, nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &app, nil
}

// UpdateStatusIfPending applies a review decision only when the application
// is still pending, returning ErrInvalidState once a decision exists.
func (s *MemoryStore) UpdateStatusIfPending(_ context.Context, id uuid.UUID, status models.Status, reviewedAt time.Time, notes string) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if app.Status != models.StatusPending {
		return nil, sentinel.ErrInvalidState
	}
	app.Status = status
	app.ReviewedAt = &reviewedAt
	app.AdminNotes = &notes
	s.byID[id] = app
	return &app, nil
}

func sortNewestFirst(apps []models.Application) {
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
}
