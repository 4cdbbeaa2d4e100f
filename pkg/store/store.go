package store

import (
	"log/slog"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/google/uuid"
)

// Observer is notified after every successful mutation.
type Observer func(prev, next *domain.Journey)

// Recorder receives the outcome of every operation. *observability.Metrics satisfies it.
type Recorder interface {
	ObserveMutation(operation string, err error)
}

// Store holds the current journey snapshot and its mutation operations.
type Store struct {
	current *domain.Journey

	clock    func() time.Time
	newID    func() string
	logger   *slog.Logger
	recorder Recorder

	observers map[int]Observer
	nextObs   int
}

// Option configures the Store.
type Option func(*Store)

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.clock = clock
	}
}

// WithIDGenerator overrides the id source (default: random UUIDs).
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		s.newID = gen
	}
}

// WithRecorder reports operation outcomes, typically to Prometheus.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		s.recorder = r
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(obs Observer) Option {
	return func(s *Store) {
		s.Subscribe(obs)
	}
}

func newStore(opts []Option) *Store {
	s := &Store{
		clock:     time.Now,
		newID:     uuid.NewString,
		logger:    logging.NewNop(),
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New creates a store holding a fresh, empty journey.
func New(opts ...Option) *Store {
	s := newStore(opts)
	now := s.clock()
	s.current = &domain.Journey{
		ID:         s.newID(),
		Properties: []domain.Property{},
		Nodes:      []domain.Node{},
		Functions:  []domain.Function{},
		Mappings:   []domain.NodeFunctionMapping{},
		Edges:      []domain.Edge{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s
}

// Snapshot returns the current journey. The value is shared and must not be modified.
func (s *Store) Snapshot() *domain.Journey {
	return s.current
}

// Subscribe registers obs and returns a function that removes it.
func (s *Store) Subscribe(obs Observer) (cancel func()) {
	id := s.nextObs
	s.nextObs++
	s.observers[id] = obs
	return func() {
		delete(s.observers, id)
	}
}

// apply runs fn against a private copy of the snapshot and publishes the copy if fn
// succeeds. On error nothing changes.
func (s *Store) apply(operation string, fn func(next *domain.Journey) error) error {
	next := s.current.Clone()
	if err := fn(next); err != nil {
		s.record(operation, err)
		s.logger.Debug("Mutation rejected", "operation", operation, "journey_id", s.current.ID, "err", err)
		return err
	}

	next.UpdatedAt = s.stamp()
	prev := s.current
	s.current = next
	s.record(operation, nil)
	s.logger.Debug("Mutation applied", "operation", operation, "journey_id", next.ID)

	for _, obs := range s.observers {
		obs(prev, next)
	}
	return nil
}

// stamp returns a timestamp strictly after the current UpdatedAt, so every mutation
// is observable even with a coarse or frozen clock.
func (s *Store) stamp() time.Time {
	now := s.clock()
	if last := s.current.UpdatedAt; !now.After(last) {
		now = last.Add(time.Nanosecond)
	}
	return now
}

func (s *Store) record(operation string, err error) {
	if s.recorder != nil {
		s.recorder.ObserveMutation(operation, err)
	}
}

// DetailsPatch edits the journey header. Nil fields are left alone.
type DetailsPatch struct {
	Name        *string
	Description *string
}

// UpdateDetails edits the journey name and description.
func (s *Store) UpdateDetails(patch DetailsPatch) {
	_ = s.apply("update_details", func(j *domain.Journey) error {
		if patch.Name != nil {
			j.Name = *patch.Name
		}
		if patch.Description != nil {
			j.Description = *patch.Description
		}
		return nil
	})
}

// SetActive sets the activation flag. It has no cascading effect.
func (s *Store) SetActive(active bool) {
	_ = s.apply("set_active", func(j *domain.Journey) error {
		j.IsActive = active
		return nil
	})
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
