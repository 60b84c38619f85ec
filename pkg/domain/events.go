package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRenderScheduled EventType = "render_scheduled"
	EventWorkUnit        EventType = "work_unit"
	EventYield           EventType = "yield"
	EventCommit          EventType = "commit"
	EventAbort           EventType = "abort"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Pass      uint64    `json:"pass"`
}

// RenderEvent is emitted when a pass is scheduled.
type RenderEvent struct {
	EventBase
	// Setter is true when the pass was requested by a hook setter.
	Setter bool `json:"setter"`
	// Superseded is true when a pass in flight was abandoned.
	Superseded bool `json:"superseded"`
}

// WorkEvent is emitted after each work unit.
type WorkEvent struct {
	EventBase
	Kind string `json:"kind"`
}

// YieldEvent is emitted when a slice ends with work remaining.
type YieldEvent struct {
	EventBase
	Units int `json:"units"`
}

// CommitEvent carries the report of a successful commit.
type CommitEvent struct {
	EventBase
	Report CommitReport `json:"report"`
}

// AbortEvent is emitted when a pass is discarded because of an error.
type AbortEvent struct {
	EventBase
	Err error `json:"-"`
}

// LifecycleHooks defines callbacks for runtime observability.
type LifecycleHooks struct {
	OnRenderScheduled func(context.Context, *RenderEvent)
	OnWorkUnit        func(context.Context, *WorkEvent)
	OnYield           func(context.Context, *YieldEvent)
	OnCommit          func(context.Context, *CommitEvent)
	OnAbort           func(context.Context, *AbortEvent)
}

// MergeHooks chains several hook sets; callbacks run in argument order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, s := range sets {
		out.OnRenderScheduled = chain(out.OnRenderScheduled, s.OnRenderScheduled)
		out.OnWorkUnit = chain(out.OnWorkUnit, s.OnWorkUnit)
		out.OnYield = chain(out.OnYield, s.OnYield)
		out.OnCommit = chain(out.OnCommit, s.OnCommit)
		out.OnAbort = chain(out.OnAbort, s.OnAbort)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
