package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalManager_RearmAndStop(t *testing.T) {
	sm := NewSignalManager()
	defer sm.Stop()

	first := sm.Context()
	require.NoError(t, first.Err())

	sm.Rearm()
	second := sm.Context()
	assert.ErrorIs(t, first.Err(), context.Canceled, "rearming drops the old listener")
	assert.NoError(t, second.Err())
	assert.False(t, sm.Interrupted())

	sm.Stop()
	assert.True(t, sm.Interrupted())
	assert.True(t, sm.Settle(), "settle returns at once when interrupted")
}

func TestSignalManager_Bind(t *testing.T) {
	sm := NewSignalManager()
	defer sm.Stop()

	parent, cancelParent := context.WithCancel(context.Background())
	defer cancelParent()

	ctx, release := sm.Bind(parent)
	defer release()
	require.NoError(t, ctx.Err())

	sm.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("bound context was not cancelled by the signal context")
	}
	assert.NoError(t, parent.Err(), "the parent is left alone")
}

func TestSignalManager_SettleTimesOut(t *testing.T) {
	sm := NewSignalManager()
	defer sm.Stop()
	sm.grace = 20 * time.Millisecond

	start := time.Now()
	assert.False(t, sm.Settle())
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}
