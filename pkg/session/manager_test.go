package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/aretw0/waypoint/pkg/store"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, ids ...string) *memory.Store {
	t.Helper()
	repo := memory.NewStore()
	for _, id := range ids {
		require.NoError(t, repo.Save(context.Background(), ports.ContractJourney(id)))
	}
	return repo
}

func TestManager_OpenIsExclusive(t *testing.T) {
	mgr := session.NewManager(seeded(t, "j1"))
	ctx := context.Background()

	s, err := mgr.Open(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", s.JourneyID)
	assert.Empty(t, s.Repairs)
	assert.Equal(t, "j1", s.Canvas.Snapshot().ID, "canvas starts on the loaded snapshot")

	_, err = mgr.Open(ctx, "j1")
	assert.ErrorIs(t, err, session.ErrSessionBusy)

	require.NoError(t, mgr.Close(ctx, "j1"))
	_, err = mgr.Open(ctx, "j1")
	assert.NoError(t, err, "closing frees the journey")
}

func TestManager_OpenMissing(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	_, err := mgr.Open(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrJourneyNotFound)

	assert.Empty(t, mgr.Sessions(), "failed open leaves no reservation")
	_, err = mgr.Open(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrJourneyNotFound)
}

func TestManager_MutationsReachCanvasAndWatchers(t *testing.T) {
	mgr := session.NewManager(seeded(t, "j1"))
	ctx := context.Background()
	_, err := mgr.Open(ctx, "j1")
	require.NoError(t, err)

	var diffs <-chan *domain.JourneyDiff
	var cancel func()
	require.NoError(t, mgr.WithSession(ctx, "j1", func(ctx context.Context, s *session.Session) error {
		diffs, cancel = s.Watch()
		assert.False(t, s.Dirty())
		_, err := s.Store.AddNode(domain.Node{Name: "Extra", Type: domain.NodeTypeLoader})
		return err
	}))
	defer cancel()

	select {
	case d := <-diffs:
		require.NotNil(t, d.Nodes)
		assert.Len(t, d.Nodes.Added, 1)
	case <-time.After(time.Second):
		t.Fatal("no diff delivered")
	}

	s, err := mgr.Get("j1")
	require.NoError(t, err)
	assert.True(t, s.Dirty())
	assert.Equal(t, uint64(1), s.Revision())
	assert.Len(t, s.Canvas.Snapshot().Nodes, 4)
}

func TestManager_SaveRequiresName(t *testing.T) {
	repo := memory.NewStore()
	mgr := session.NewManager(repo)
	ctx := context.Background()

	s, err := mgr.Create(ctx)
	require.NoError(t, err)

	err = mgr.Save(ctx, s.JourneyID)
	assert.ErrorIs(t, err, domain.ErrMissingRequiredField)

	name := "Onboarding"
	require.NoError(t, mgr.WithSession(ctx, s.JourneyID, func(ctx context.Context, s *session.Session) error {
		s.Store.UpdateDetails(store.DetailsPatch{Name: &name})
		return nil
	}))
	require.NoError(t, mgr.Save(ctx, s.JourneyID))
	assert.False(t, s.Dirty())

	got, err := repo.Load(ctx, s.JourneyID)
	require.NoError(t, err)
	assert.Equal(t, "Onboarding", got.Name)
}

func TestManager_DeleteClosesSession(t *testing.T) {
	repo := seeded(t, "j1")
	mgr := session.NewManager(repo)
	ctx := context.Background()

	s, err := mgr.Open(ctx, "j1")
	require.NoError(t, err)
	diffs, _ := s.Watch()

	require.NoError(t, mgr.Delete(ctx, "j1"))

	_, open := <-diffs
	assert.False(t, open, "watchers are closed with the session")
	_, err = mgr.Get("j1")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = repo.Load(ctx, "j1")
	assert.ErrorIs(t, err, domain.ErrJourneyNotFound)

	assert.NoError(t, mgr.Delete(ctx, "never-opened"))
}

func TestManager_WithSessionSerializes(t *testing.T) {
	mgr := session.NewManager(seeded(t, "j1"))
	ctx := context.Background()
	_, err := mgr.Open(ctx, "j1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = mgr.WithSession(ctx, "j1", func(ctx context.Context, s *session.Session) error {
				_, err := s.Store.AddProperty(fmt.Sprintf("k%d", i), domain.PropertyString, "")
				return err
			})
		}(i)
	}
	wg.Wait()

	s, err := mgr.Get("j1")
	require.NoError(t, err)
	assert.Len(t, s.Store.Snapshot().Properties, 22)
	assert.Equal(t, uint64(20), s.Revision())
}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		s, err := mgr.Create(ctx)
		require.NoError(t, err)
		require.NoError(t, mgr.Close(ctx, s.JourneyID))
	}
	assert.Empty(t, mgr.Sessions())
}

func TestManager_DistributedLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := seeded(t, "j1")
	replicaA := session.NewManager(repo, session.WithLocker(redis.NewLocker(client, "waypoint:")))
	replicaB := session.NewManager(repo, session.WithLocker(redis.NewLocker(client, "waypoint:")), session.WithLockTTL(time.Minute))
	ctx := context.Background()

	_, err = replicaA.Open(ctx, "j1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("waypoint:lock:journey:j1"))

	_, err = replicaB.Open(ctx, "j1")
	assert.ErrorIs(t, err, session.ErrSessionBusy)

	require.NoError(t, replicaA.Close(ctx, "j1"))
	assert.False(t, mr.Exists("waypoint:lock:journey:j1"))

	_, err = replicaB.Open(ctx, "j1")
	assert.NoError(t, err)
}
