package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/aretw0/arbor/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var counter = domain.NewComponent("Counter", func(h domain.Hooks, _ domain.Props) (domain.Element, error) {
	count, setCount := domain.UseState(h, 0)
	return domain.H("button", domain.Props{
		"id":      "inc",
		"onClick": func() { setCount.Update(func(n int) int { return n + 1 }) },
	}, count), nil
})

func counterFactory(ctx context.Context, id string) (runner.Target, error) {
	host := memory.NewHost()
	rt, err := arbor.New(host, arbor.WithName(id))
	if err != nil {
		return nil, err
	}
	rt.Render(domain.C(counter, nil), host.NewContainer())
	return rt, nil
}

func TestManager_OpenPersistsFirstFrame(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store, counterFactory)
	ctx := context.Background()

	sess, err := mgr.Open(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", sess.ID)

	snap, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, `<button id="inc">0</button>`, snap.Markup())

	again, err := mgr.Open(ctx, "c1")
	require.NoError(t, err)
	assert.Same(t, sess, again, "Open returns the live session")
}

func TestManager_OpenGeneratesID(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), counterFactory)
	sess, err := mgr.Open(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, sess.ID, 36)
	assert.Equal(t, []string{sess.ID}, mgr.Live())
}

func TestManager_DispatchCommitsAndPersists(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store, counterFactory)
	ctx := context.Background()

	_, err := mgr.Open(ctx, "c1")
	require.NoError(t, err)

	handled, err := mgr.Dispatch(ctx, "c1", "inc", "click", nil)
	require.NoError(t, err)
	assert.True(t, handled)

	snap, err := mgr.Snapshot(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "1", snap.TextContent())

	_, err = mgr.Dispatch(ctx, "absent", "inc", "click", nil)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_ConcurrentDispatchIsSerialized(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), counterFactory)
	ctx := context.Background()
	_, err := mgr.Open(ctx, "c1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	clicks := 20
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mgr.Dispatch(ctx, "c1", "inc", "click", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := mgr.Snapshot(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprint(clicks), snap.TextContent())
}

func TestManager_DispatchFrameCapturesOwnCommit(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), counterFactory)
	ctx := context.Background()
	_, err := mgr.Open(ctx, "c1")
	require.NoError(t, err)

	frame, err := mgr.Frame(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "0", frame.Tree.TextContent())
	first := frame.Report.Pass

	var (
		mu     sync.Mutex
		counts = make(map[string]bool)
		passes = make(map[uint64]bool)
		wg     sync.WaitGroup
	)
	clicks := 20
	for i := 0; i < clicks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			frame, handled, err := mgr.DispatchFrame(ctx, "c1", "inc", "click", nil)
			if !assert.NoError(t, err) {
				return
			}
			assert.True(t, handled)
			assert.Equal(t, "c1", frame.ID)
			mu.Lock()
			counts[frame.Tree.TextContent()] = true
			passes[frame.Report.Pass] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, counts, clicks)
	assert.Len(t, passes, clicks)
	assert.False(t, passes[first])

	_, err = mgr.Frame(ctx, "absent")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, _, err = mgr.DispatchFrame(ctx, "absent", "inc", "click", nil)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_Close(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store, counterFactory)
	ctx := context.Background()

	_, err := mgr.Open(ctx, "c1")
	require.NoError(t, err)
	require.NoError(t, mgr.Close(ctx, "c1"))

	_, ok := mgr.Get("c1")
	assert.False(t, ok)
	_, err = store.Load(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrSnapshotNotFound)
}

func TestManager_FactoryError(t *testing.T) {
	boom := errors.New("boom")
	mgr := session.NewManager(memory.NewStore(), func(context.Context, string) (runner.Target, error) {
		return nil, boom
	})
	_, err := mgr.Open(context.Background(), "c1")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mgr.Live())
}

func TestManager_DistributedLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})

	store := redis.NewFromClient(client)
	mgr := session.NewManager(store, counterFactory,
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	_, err = mgr.Open(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:c1"), "lock released after Open")

	err = mgr.WithLock(ctx, "c1", func(context.Context) error {
		assert.True(t, mr.Exists("test:lock:c1"), "lock held inside WithLock")
		return nil
	})
	require.NoError(t, err)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)
}
