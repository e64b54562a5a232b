package lockout

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	count     int
	expiresAt time.Time
}

// MemoryStore is the in-process failure counter used in tests and
// single-instance deployments without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

func (s *MemoryStore) RecordFailure(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	rec, ok := s.records[key]
	if !ok || now.After(rec.expiresAt) {
		rec = memoryRecord{count: 0, expiresAt: now.Add(window)}
	}
	rec.count++
	s.records[key] = rec
	return rec.count, nil
}

func (s *MemoryStore) Failures(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if !ok || s.now().After(rec.expiresAt) {
		return 0, nil
	}
	return rec.count, nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}
