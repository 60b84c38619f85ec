package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/ports"
)

// ErrNeverIdle is returned by Flush when the worker keeps reporting more work.
var ErrNeverIdle = errors.New("worker never became idle")

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("frame loop stopped")

const (
	// DefaultFrameInterval paces idle slices at roughly 60 frames per second.
	DefaultFrameInterval = 16 * time.Millisecond
	// DefaultSliceBudget is the time granted to idle callbacks per frame.
	DefaultSliceBudget = 5 * time.Millisecond
)

// FrameLoop is a single-goroutine event loop implementing ports.IdleScheduler.
//
// Each frame first runs the posted tasks (events, renders), then serves the
// idle callbacks requested so far with one shared deadline of SliceBudget.
// Everything runs on the loop goroutine, which makes it the one place allowed
// to touch a runtime.
type FrameLoop struct {
	interval time.Duration
	budget   time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	tasks  []func()
	idle   []func(ports.Deadline)
	wake   chan struct{}
	done   chan struct{}
	frames uint64
}

// FrameOption configures a FrameLoop.
type FrameOption func(*FrameLoop)

// WithFrameInterval sets the pause between frames when nothing wakes the loop.
func WithFrameInterval(d time.Duration) FrameOption {
	return func(l *FrameLoop) {
		if d > 0 {
			l.interval = d
		}
	}
}

// WithSliceBudget sets the idle time granted per frame.
func WithSliceBudget(d time.Duration) FrameOption {
	return func(l *FrameLoop) {
		if d > 0 {
			l.budget = d
		}
	}
}

// WithFrameLogger sets the structured logger.
func WithFrameLogger(logger *slog.Logger) FrameOption {
	return func(l *FrameLoop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewFrameLoop creates a loop. It does nothing until Run is called.
func NewFrameLoop(opts ...FrameOption) *FrameLoop {
	l := &FrameLoop{
		interval: DefaultFrameInterval,
		budget:   DefaultSliceBudget,
		logger:   logging.NewNop(),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RequestIdleSlice schedules callback for the next frame.
func (l *FrameLoop) RequestIdleSlice(callback func(ports.Deadline)) {
	l.mu.Lock()
	l.idle = append(l.idle, callback)
	l.mu.Unlock()
	l.signal()
}

// Post queues fn to run on the loop goroutine before the next idle slices.
func (l *FrameLoop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	l.signal()
}

// Do runs fn on the loop goroutine and waits for it to return.
func (l *FrameLoop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *FrameLoop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run processes frames until ctx is cancelled.
func (l *FrameLoop) Run(ctx context.Context) error {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("frame loop started", "interval", l.interval, "budget", l.budget)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("frame loop stopped", "frames", l.frames)
			return ctx.Err()
		case <-l.wake:
		case <-ticker.C:
		}
		l.frame()
	}
}

// frame must only be called from the loop goroutine.
func (l *FrameLoop) frame() {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()

	for _, task := range tasks {
		task()
	}

	l.mu.Lock()
	idle := l.idle
	l.idle = nil
	l.mu.Unlock()

	if len(idle) == 0 {
		return
	}
	l.frames++
	deadline := Budget(l.budget)
	for _, callback := range idle {
		callback(deadline)
	}

	// Tasks posted by idle callbacks must not wait for the next tick.
	l.mu.Lock()
	pending := len(l.tasks) > 0
	l.mu.Unlock()
	if pending {
		l.signal()
	}
}
