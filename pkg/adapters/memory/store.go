package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Store implements ports.JourneyStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Journey
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Journey),
	}
}

// Save persists a deep copy of the journey.
func (s *Store) Save(ctx context.Context, j *domain.Journey) error {
	if j == nil || j.ID == "" {
		return fmt.Errorf("%w: journey id", domain.ErrMissingRequiredField)
	}
	copied := j.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[j.ID] = copied
	return nil
}

// Load returns a copy so callers can't mutate the stored journey through the pointer.
func (s *Store) Load(ctx context.Context, id string) (*domain.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrJourneyNotFound, id)
	}
	return j.Clone(), nil
}

// Delete removes the journey.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns summaries sorted by id.
func (s *Store) List(ctx context.Context) ([]domain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Summary, 0, len(s.data))
	for _, j := range s.data {
		out = append(out, j.Summarize())
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}
