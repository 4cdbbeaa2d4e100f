package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/ports"
	"github.com/aretw0/waypoint/pkg/serialization"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.JourneyStore = (*redis.Store)(nil)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunJourneyStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_Contract_JSON(t *testing.T) {
	_, client := newClient(t)
	ser, err := serialization.New(serialization.NewJSONCodec(), serialization.CompressionNone)
	require.NoError(t, err)
	ports.RunJourneyStoreContract(t, redis.NewFromClient(client, redis.WithSerializer(ser)))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	j := ports.ContractJourney("journey-ttl")

	require.NoError(t, store.Save(ctx, j))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, j.ID, list[0].ID)

	// Expire the key itself.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, j.ID)
	assert.ErrorIs(t, err, domain.ErrJourneyNotFound)

	// Index pruning compares against the wall clock.
	time.Sleep(1100 * time.Millisecond)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, mr.Exists("waypoint:journey:summaries"), "summary hash is pruned with the index")
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ports.ContractJourney("my-journey")))

	assert.True(t, mr.Exists("custom:app:my-journey"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:summaries"))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Contract my-journey", list[0].Name)
}

func TestRedisStore_ListWithoutSummary(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ports.ContractJourney("j1")))
	mr.HDel("waypoint:journey:summaries", "j1")

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "j1", list[0].ID)
	assert.Empty(t, list[0].Name)
}
