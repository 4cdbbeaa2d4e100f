package session

import (
	"sync"
	"time"

	"github.com/aretw0/waypoint/pkg/canvas"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/store"
)

// watchBuffer is how many diffs a slow watcher may fall behind before diffs are dropped.
const watchBuffer = 16

// Session is one open editor on a journey.
type Session struct {
	JourneyID string
	OpenedAt  time.Time

	// Store and Canvas are single-owner. Use them only inside Manager.WithSession.
	Store  *store.Store
	Canvas *canvas.Controller

	// Repairs lists what hydration fixed when the journey was loaded.
	Repairs []domain.Violation

	unlock ports.UnlockFunc

	mu       sync.Mutex
	dirty    bool
	revision uint64
	watchers map[int]chan *domain.JourneyDiff
	nextW    int
}

func newSession(st *store.Store, ctrl *canvas.Controller, repairs []domain.Violation, unlock ports.UnlockFunc) *Session {
	s := &Session{
		JourneyID: st.Snapshot().ID,
		OpenedAt:  time.Now(),
		Store:     st,
		Canvas:    ctrl,
		Repairs:   repairs,
		unlock:    unlock,
		watchers:  make(map[int]chan *domain.JourneyDiff),
	}
	ctrl.SetSnapshot(st.Snapshot())
	st.Subscribe(s.onChange)
	return s
}

func (s *Session) onChange(prev, next *domain.Journey) {
	s.Canvas.SetSnapshot(next)

	diff := domain.Diff(prev, next)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	s.revision++
	if diff == nil {
		return
	}
	for _, ch := range s.watchers {
		select {
		case ch <- diff:
		default:
		}
	}
}

// Dirty reports whether the journey changed since it was opened or last saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Revision counts applied mutations.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Session) markSaved() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// Watch streams a diff for every applied mutation. Diffs are dropped when the
// receiver falls behind. cancel closes the channel.
func (s *Session) Watch() (<-chan *domain.JourneyDiff, func()) {
	ch := make(chan *domain.JourneyDiff, watchBuffer)

	s.mu.Lock()
	id := s.nextW
	s.nextW++
	s.watchers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.watchers[id]; ok {
				delete(s.watchers, id)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
}

func (s *Session) closeWatchers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
}
