package runner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWorker reports MoreWork for the first `slices-1` calls.
type scriptedWorker struct {
	mu     sync.Mutex
	slices int
	calls  int
	err    error
	done   chan struct{}
}

func (w *scriptedWorker) Work(ctx context.Context, _ ports.Deadline) (domain.Status, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.calls == w.slices {
		close(w.done)
		return domain.StatusIdle, w.err
	}
	return domain.StatusMoreWork, nil
}

func TestDeadlines(t *testing.T) {
	assert.Greater(t, Unlimited.TimeRemaining(), time.Hour)
	assert.LessOrEqual(t, Budget(0).TimeRemaining(), time.Duration(0))
	assert.Greater(t, Budget(time.Minute).TimeRemaining(), 59*time.Second)
	assert.LessOrEqual(t, Until(time.Now().Add(-time.Second)).TimeRemaining(), time.Duration(0))

	d := Units(2)
	assert.Greater(t, d.TimeRemaining(), time.Duration(0))
	assert.Zero(t, d.TimeRemaining())
}

func TestFlush(t *testing.T) {
	w := &scriptedWorker{slices: 3, done: make(chan struct{})}
	require.NoError(t, Flush(context.Background(), w))
	assert.Equal(t, 3, w.calls)

	boom := errors.New("boom")
	w = &scriptedWorker{slices: 1, err: boom, done: make(chan struct{})}
	assert.ErrorIs(t, Flush(context.Background(), w), boom)
}

func TestFrameLoop_PostRunsBeforeIdle(t *testing.T) {
	loop := NewFrameLoop(WithFrameInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	done := make(chan struct{})
	loop.Post(func() { record("task") })
	loop.RequestIdleSlice(func(d ports.Deadline) {
		record("idle")
		assert.Greater(t, d.TimeRemaining(), time.Duration(0))
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("idle slice never served")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"task", "idle"}, order)
}

func TestFrameLoop_Do(t *testing.T) {
	loop := NewFrameLoop()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = loop.Run(ctx)
		close(stopped)
	}()

	ran := false
	require.NoError(t, loop.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)

	cancel()
	<-stopped
	assert.ErrorIs(t, loop.Do(context.Background(), func() {}), ErrLoopStopped)
}

func TestDriver_RequestsSlicesUntilIdle(t *testing.T) {
	loop := NewFrameLoop(WithFrameInterval(time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	w := &scriptedWorker{slices: 4, done: make(chan struct{})}
	d := NewDriver(w, loop, nil)
	d.Wake()
	d.Wake() // coalesced with the pending request

	select {
	case <-w.done:
	case <-time.After(2 * time.Second):
		t.Fatal("driver stopped before the worker was idle")
	}
	require.NoError(t, loop.Do(context.Background(), func() {}))
	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Equal(t, 4, w.calls)
}

func TestDriver_ReportsErrors(t *testing.T) {
	loop := NewFrameLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = loop.Run(ctx) }()

	boom := errors.New("boom")
	errs := make(chan error, 1)
	w := &scriptedWorker{slices: 1, err: boom, done: make(chan struct{})}
	NewDriver(w, loop, func(err error) { errs <- err }).Wake()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("error never reported")
	}
}
