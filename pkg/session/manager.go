package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/store"
)

var (
	// ErrSessionBusy is returned when a journey already has an editor.
	ErrSessionBusy = errors.New("journey is already open in another session")
	// ErrSessionNotFound is returned for operations on a journey that is not open.
	ErrSessionNotFound = errors.New("session not found")
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates edit sessions, ensuring one editor per journey and
// serialized access to each session.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	repo ports.JourneyStore

	mu       sync.Mutex            // guards locks, sessions and opening
	locks    map[string]*lockEntry // per-journey request locks
	sessions map[string]*Session
	opening  map[string]bool

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger

	storeOpts  []store.Option
	canvasOpts []canvas.ControllerOption
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets how long a distributed editor lock lives (default 12h).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithStoreOptions are applied to every model store the manager opens.
func WithStoreOptions(opts ...store.Option) Option {
	return func(m *Manager) {
		m.storeOpts = append(m.storeOpts, opts...)
	}
}

// WithCanvasOptions are applied to every canvas controller the manager opens.
func WithCanvasOptions(opts ...canvas.ControllerOption) Option {
	return func(m *Manager) {
		m.canvasOpts = append(m.canvasOpts, opts...)
	}
}

// NewManager creates a new Session Manager backed by repo.
func NewManager(repo ports.JourneyStore, opts ...Option) *Manager {
	m := &Manager{
		repo:     repo,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*Session),
		opening:  make(map[string]bool),
		lockTTL:  12 * time.Hour,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// withLock runs fn while holding the request lock for id.
func (m *Manager) withLock(id string, fn func() error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	return fn()
}

// reserve claims id for a session that is being opened.
func (m *Manager) reserve(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, open := m.sessions[id]; open || m.opening[id] {
		return fmt.Errorf("%w: %s", ErrSessionBusy, id)
	}
	m.opening[id] = true
	return nil
}

// finish completes or abandons a reservation.
func (m *Manager) finish(id string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.opening, id)
	if s != nil {
		m.sessions[id] = s
	}
}

func (m *Manager) lockRemote(ctx context.Context, id string) (ports.UnlockFunc, error) {
	if m.locker == nil {
		return nil, nil
	}
	unlock, ok, err := m.locker.TryLock(ctx, "journey:"+id, m.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s (held by another replica)", ErrSessionBusy, id)
	}
	return unlock, nil
}

// Create opens a session on a new, empty journey.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	st := store.New(m.storeOpts...)
	id := st.Snapshot().ID
	if err := m.reserve(id); err != nil {
		return nil, err
	}
	unlock, err := m.lockRemote(ctx, id)
	if err != nil {
		m.finish(id, nil)
		return nil, err
	}
	s := newSession(st, canvas.NewController(m.canvasOpts...), nil, unlock)
	m.finish(id, s)
	m.logger.Info("Session created", "journey_id", id)
	return s, nil
}

// Open loads a stored journey and opens a session on it.
// It fails with ErrSessionBusy if the journey is already being edited.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	if err := m.reserve(id); err != nil {
		return nil, err
	}
	unlock, err := m.lockRemote(ctx, id)
	if err != nil {
		m.finish(id, nil)
		return nil, err
	}

	s, err := m.load(ctx, id, unlock)
	if err != nil {
		if unlock != nil {
			if uerr := unlock(ctx); uerr != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)", "journey_id", id, "err", uerr)
			}
		}
		m.finish(id, nil)
		return nil, err
	}
	m.finish(id, s)
	m.logger.Info("Session opened", "journey_id", id, "repairs", len(s.Repairs))
	return s, nil
}

func (m *Manager) load(ctx context.Context, id string, unlock ports.UnlockFunc) (*Session, error) {
	j, err := m.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	st, repairs, err := store.Hydrate(j, m.storeOpts...)
	if err != nil {
		return nil, err
	}
	return newSession(st, canvas.NewController(m.canvasOpts...), repairs, unlock), nil
}

// Get returns the open session for id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Sessions returns the ids of open journeys, sorted.
func (m *Manager) Sessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WithSession runs fn on the open session for id. Calls for the same journey are
// serialized.
func (m *Manager) WithSession(ctx context.Context, id string, fn func(ctx context.Context, s *Session) error) error {
	return m.withLock(id, func() error {
		s, err := m.Get(id)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

// Save persists the session's current snapshot. A journey needs a name to be saved.
func (m *Manager) Save(ctx context.Context, id string) error {
	return m.WithSession(ctx, id, func(ctx context.Context, s *Session) error {
		j := s.Store.Snapshot()
		if j.Name == "" {
			return fmt.Errorf("%w: journey name", domain.ErrMissingRequiredField)
		}
		if err := m.repo.Save(ctx, j); err != nil {
			return err
		}
		s.markSaved()
		m.logger.Debug("Session saved", "journey_id", id)
		return nil
	})
}

// Close discards the session without saving and releases its locks.
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.withLock(id, func() error {
		m.mu.Lock()
		s, ok := m.sessions[id]
		delete(m.sessions, id)
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		m.shutdown(ctx, s)
		return nil
	})
}

func (m *Manager) shutdown(ctx context.Context, s *Session) {
	s.closeWatchers()
	if s.unlock != nil {
		if err := s.unlock(ctx); err != nil {
			m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
				"journey_id", s.JourneyID,
				"err", err,
			)
		}
	}
	m.logger.Info("Session closed", "journey_id", s.JourneyID, "dirty", s.Dirty())
}

// Delete closes any open session on id and removes the journey from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.Close(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	return m.withLock(id, func() error {
		return m.repo.Delete(ctx, id)
	})
}

// CloseAll closes every open session. Unsaved changes are lost.
func (m *Manager) CloseAll(ctx context.Context) {
	for _, id := range m.Sessions() {
		_ = m.Close(ctx, id)
	}
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]domain.Summary, error) {
	return m.repo.List(ctx)
}

// Repository returns the underlying journey store.
func (m *Manager) Repository() ports.JourneyStore {
	return m.repo
}
