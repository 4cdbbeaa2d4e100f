package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns a store with sequential ids and a frozen clock.
func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	n := 0
	base := []Option{
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
		WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
	}
	return New(append(base, opts...)...)
}

func mustNode(t *testing.T, s *Store, name string, typ domain.NodeType) domain.Node {
	t.Helper()
	n, err := s.AddNode(domain.Node{ID: name, Name: name, Type: typ})
	require.NoError(t, err)
	return n
}

func TestNew_EmptyJourney(t *testing.T) {
	s := newTestStore(t)
	j := s.Snapshot()

	assert.Equal(t, "id-1", j.ID)
	assert.Empty(t, j.Nodes)
	assert.NotNil(t, j.Edges)
	assert.False(t, j.IsActive)
	assert.Equal(t, j.CreatedAt, j.UpdatedAt)
}

func TestApply_ReplacesSnapshotAndStampsUpdatedAt(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot()

	_, err := s.AddProperty("age", domain.PropertyNumber, "")
	require.NoError(t, err)

	after := s.Snapshot()
	assert.NotSame(t, before, after)
	assert.Empty(t, before.Properties, "previous snapshot must stay untouched")
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))

	s.SetActive(true)
	assert.True(t, s.Snapshot().UpdatedAt.After(after.UpdatedAt))
}

func TestApply_RejectionLeavesSnapshot(t *testing.T) {
	s := newTestStore(t)
	mustNode(t, s, "a", domain.NodeTypeInput)
	before := s.Snapshot()

	_, err := s.AddEdge(domain.Edge{FromNodeID: "a", ToNodeID: "a"})
	require.ErrorIs(t, err, domain.ErrSelfLoop)
	assert.Same(t, before, s.Snapshot())
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t)
	var calls int
	var lastPrev, lastNext *domain.Journey
	cancel := s.Subscribe(func(prev, next *domain.Journey) {
		calls++
		lastPrev, lastNext = prev, next
	})

	first := s.Snapshot()
	s.SetActive(true)
	assert.Equal(t, 1, calls)
	assert.Same(t, first, lastPrev)
	assert.Same(t, s.Snapshot(), lastNext)

	_, _ = s.AddProperty("", domain.PropertyString, "")
	assert.Equal(t, 1, calls, "rejected operations do not notify")

	cancel()
	s.SetActive(false)
	assert.Equal(t, 1, calls)
}

type recorderSpy struct{ ops []string }

func (r *recorderSpy) ObserveMutation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "err"
	}
	r.ops = append(r.ops, op+":"+outcome)
}

func TestRecorder(t *testing.T) {
	spy := &recorderSpy{}
	s := newTestStore(t, WithRecorder(spy))
	mustNode(t, s, "a", domain.NodeTypeInput)
	_, _ = s.AddNode(domain.Node{Name: "", Type: domain.NodeTypeInput})

	assert.Equal(t, []string{"add_node:ok", "add_node:err"}, spy.ops)
}

func TestUpdateDetails(t *testing.T) {
	s := newTestStore(t)
	name := "Onboarding"
	s.UpdateDetails(DetailsPatch{Name: &name})

	assert.Equal(t, "Onboarding", s.Snapshot().Name)
	assert.Empty(t, s.Snapshot().Description)
}
