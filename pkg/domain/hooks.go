package domain

import "fmt"

// Action transforms the previous state of a hook cell into the next one.
type Action func(prev any) any

// Hooks is the scope a component uses to reach the state cells of the fiber
// being rendered. Cells are identified by call order, so a component must call
// its hooks unconditionally and in the same order on every render; the runtime
// aborts the pass when the cell count differs from the previous render.
type Hooks interface {
	// State returns the current value of the next cell (created with initial on
	// first render) and a dispatcher that enqueues an Action and schedules a pass.
	State(initial any) (any, func(Action))
}

// Setter enqueues typed updates on a state cell.
type Setter[T any] struct {
	dispatch func(Action)
}

// Set replaces the state with v.
func (s Setter[T]) Set(v T) {
	s.dispatch(func(any) any { return v })
}

// Update applies fn to the previous state.
func (s Setter[T]) Update(fn func(T) T) {
	s.dispatch(func(prev any) any {
		return fn(prev.(T))
	})
}

// UseState is the typed form of Hooks.State.
func UseState[T any](h Hooks, initial T) (T, Setter[T]) {
	raw, dispatch := h.State(initial)
	v, ok := raw.(T)
	if !ok && raw != nil {
		panic(fmt.Sprintf("arbor: state cell holds %T, want %T", raw, initial))
	}
	return v, Setter[T]{dispatch: dispatch}
}
