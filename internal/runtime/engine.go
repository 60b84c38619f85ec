package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// ErrRenderLoop is returned when state setters called during evaluation keep
// restarting the pass.
var ErrRenderLoop = errors.New("too many re-renders")

// Engine is the reconciliation session for one host: it owns the committed
// tree, the tree being built, the pending work unit and the deletion set.
//
// An Engine is single-threaded. Render, Work and hook setters must be called
// from the same goroutine (or under the caller's lock).
type Engine struct {
	host       ports.Host
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	onSchedule func()

	currentRoot *Fiber
	wipRoot     *Fiber
	nextUnit    *Fiber
	deletions   []*Fiber

	pass       uint64
	units      int
	restarts   int
	lastCommit domain.CommitReport
}

// maxRestarts bounds how many times setters called during evaluation may
// restart a pass before it commits.
const maxRestarts = 50

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithScheduleNotifier registers a callback invoked every time a pass is
// scheduled, so a driver can request an idle slice.
func WithScheduleNotifier(fn func()) EngineOption {
	return func(e *Engine) {
		e.onSchedule = fn
	}
}

// NewEngine creates a new engine bound to a host environment.
func NewEngine(host ports.Host, opts ...EngineOption) *Engine {
	e := &Engine{
		host:   host,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetScheduleNotifier replaces the schedule callback.
func (e *Engine) SetScheduleNotifier(fn func()) {
	e.onSchedule = fn
}

// Render schedules a top-down pass that reconciles root into container.
// A pass already in flight is abandoned (last render wins).
func (e *Engine) Render(root domain.Element, container domain.NodeRef) {
	e.restarts = 0
	e.schedule(&Fiber{
		Kind:      domain.RootKind,
		Node:      container,
		Props:     domain.Props{domain.PropChildren: []domain.Element{root}},
		Alternate: e.currentRoot,
	}, false)
}

// rerender restarts a full-tree pass anchored at the committed root, so hook
// updates do not need the original Render call.
func (e *Engine) rerender() {
	switch {
	case e.currentRoot != nil:
		cur := e.currentRoot
		e.schedule(&Fiber{
			Kind:      domain.RootKind,
			Node:      cur.Node,
			Props:     cur.Props,
			Alternate: cur,
		}, true)
	case e.wipRoot != nil:
		// Nothing committed yet: restart the first pass.
		wip := e.wipRoot
		e.schedule(&Fiber{
			Kind:  domain.RootKind,
			Node:  wip.Node,
			Props: wip.Props,
		}, true)
	default:
		e.logger.Debug("state update ignored: no tree to re-render")
	}
}

func (e *Engine) schedule(root *Fiber, fromSetter bool) {
	superseded := e.wipRoot != nil
	e.pass++
	e.wipRoot = root
	e.nextUnit = root
	e.deletions = nil
	e.units = 0

	e.logger.Debug("render scheduled", "pass", e.pass, "setter", fromSetter, "superseded", superseded)
	if e.hooks.OnRenderScheduled != nil {
		e.hooks.OnRenderScheduled(context.Background(), &domain.RenderEvent{
			EventBase:  e.event(domain.EventRenderScheduled),
			Setter:     fromSetter,
			Superseded: superseded,
		})
	}
	if e.onSchedule != nil {
		e.onSchedule()
	}
}

// Work runs work units until none remain or deadline reports less than a
// millisecond left; the deadline is checked after every unit, so each call
// makes progress. When the last unit drains, the pass is committed in the same
// call. Cancelling ctx ends the slice early without discarding the pass.
//
// Errors abort the pass: the work-in-progress tree is dropped and the
// committed tree stays current.
func (e *Engine) Work(ctx context.Context, deadline ports.Deadline) (domain.Status, error) {
	units := 0
	for e.nextUnit != nil {
		if err := ctx.Err(); err != nil {
			return domain.StatusMoreWork, err
		}

		pass := e.pass
		next, err := e.performUnitOfWork(ctx, e.nextUnit)
		units++
		if err != nil {
			if e.pass == pass {
				e.abort(ctx, err)
			}
			return e.Status(), err
		}
		// A setter called during evaluation scheduled a new pass; keep its root.
		if e.pass == pass {
			e.units++
			e.nextUnit = next
		} else {
			e.restarts++
			if e.restarts > maxRestarts {
				err := fmt.Errorf("%w: %d restarts without a commit", ErrRenderLoop, e.restarts)
				e.restarts = 0
				e.abort(ctx, err)
				return e.Status(), err
			}
		}

		if deadline.TimeRemaining() < time.Millisecond {
			break
		}
	}

	if e.nextUnit == nil && e.wipRoot != nil {
		if err := e.commitRoot(ctx); err != nil {
			return e.Status(), err
		}
	}

	if e.nextUnit != nil {
		e.logger.Debug("yielding", "pass", e.pass, "units", units)
		if e.hooks.OnYield != nil {
			e.hooks.OnYield(ctx, &domain.YieldEvent{EventBase: e.event(domain.EventYield), Units: units})
		}
	}
	return e.Status(), nil
}

// Status reports whether work is outstanding.
func (e *Engine) Status() domain.Status {
	if e.nextUnit != nil || e.wipRoot != nil {
		return domain.StatusMoreWork
	}
	return domain.StatusIdle
}

func (e *Engine) abort(ctx context.Context, err error) {
	e.logger.Warn("render pass aborted", "pass", e.pass, "units", e.units, "err", err)
	e.wipRoot = nil
	e.nextUnit = nil
	e.deletions = nil
	if e.hooks.OnAbort != nil {
		e.hooks.OnAbort(ctx, &domain.AbortEvent{EventBase: e.event(domain.EventAbort), Err: err})
	}
}

func (e *Engine) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, Pass: e.pass}
}

// Current returns the root of the last committed tree, or nil.
func (e *Engine) Current() *Fiber { return e.currentRoot }

// Pending returns the root of the tree being built, or nil.
func (e *Engine) Pending() *Fiber { return e.wipRoot }

// Deletions returns the fibers the pending pass will remove.
func (e *Engine) Deletions() []*Fiber { return e.deletions }

// LastCommit returns the report of the most recent successful commit.
func (e *Engine) LastCommit() domain.CommitReport { return e.lastCommit }

// Host returns the host environment.
func (e *Engine) Host() ports.Host { return e.host }
