package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)
	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	ports.RunSnapshotStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	snap := &domain.Snapshot{Kind: "div"}

	require.NoError(t, store.Save(ctx, "c1", snap))

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "div", loaded.Kind)

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestRedisStore_ListPrunesExpired(t *testing.T) {
	_, client := setup(t)
	ctx := context.Background()
	store := redis.NewFromClient(client)

	require.NoError(t, store.Save(ctx, "keep", &domain.Snapshot{Kind: "p"}))

	// An index entry whose expiry is in the past is pruned by the next List.
	past := float64(time.Now().Add(-time.Hour).Unix())
	require.NoError(t, client.ZAdd(ctx, redis.DefaultPrefix+"index", backend.Z{Score: past, Member: "gone"}).Err())

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:"))

	require.NoError(t, store.Save(context.Background(), "c1", &domain.Snapshot{Kind: "div"}))
	assert.True(t, mr.Exists("custom:c1"))
	assert.False(t, mr.Exists(redis.DefaultPrefix+"c1"))
}
