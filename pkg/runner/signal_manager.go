package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// settleGrace is how long Settle waits for a signal after an input error.
const settleGrace = 100 * time.Millisecond

// SignalManager ends an interactive loop on SIGINT or SIGTERM.
//
// Terminals close stdin slightly before delivering Ctrl+C, so the loop sees
// EOF first. Settle lets the caller tell an interrupt from a real end of input.
type SignalManager struct {
	ctx    context.Context
	cancel context.CancelFunc
	grace  time.Duration
}

// NewSignalManager starts listening for signals immediately.
func NewSignalManager() *SignalManager {
	sm := &SignalManager{grace: settleGrace}
	sm.Rearm()
	return sm
}

// Context is cancelled by the first signal after the last Rearm.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Interrupted reports whether a signal arrived (or Stop was called).
func (sm *SignalManager) Interrupted() bool {
	return sm.ctx.Err() != nil
}

// Rearm drops the current listener and starts a fresh one.
func (sm *SignalManager) Rearm() {
	if sm.cancel != nil {
		sm.cancel()
	}
	sm.ctx, sm.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Stop releases the listener.
func (sm *SignalManager) Stop() {
	if sm.cancel != nil {
		sm.cancel()
	}
}

// Bind derives a context from parent that a signal also cancels.
func (sm *SignalManager) Bind(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(sm.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Settle waits up to the grace period for a signal and reports whether one
// arrived. It returns at once when already interrupted.
func (sm *SignalManager) Settle() bool {
	if sm.ctx.Err() != nil {
		return true
	}
	timer := time.NewTimer(sm.grace)
	defer timer.Stop()
	select {
	case <-sm.ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}
