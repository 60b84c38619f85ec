package runtime

import "github.com/aretw0/arbor/pkg/domain"

// hookCell is one persistent state slot of a component fiber.
// queue keeps every action dispatched on the cell; the next render folds it
// into the state of the replacing cell, which starts with an empty queue.
//
// base is the committed cell a pending cell was derived from. It is released
// when the pass commits.
type hookCell struct {
	state any
	queue []domain.Action
	base  *hookCell
}

// target returns the cell whose queue the next pass will fold. A pass is
// always re-anchored at the committed tree, so updates dispatched on a cell
// that has not committed yet go to its committed origin.
func (c *hookCell) target() *hookCell {
	if c.base != nil {
		return c.base
	}
	return c
}

// hookScope implements domain.Hooks for the fiber being evaluated.
type hookScope struct {
	engine *Engine
	fiber  *Fiber
}

// State returns the value of the next cell by call order.
func (s *hookScope) State(initial any) (any, func(domain.Action)) {
	f := s.fiber
	idx := len(f.hooks)

	cell := &hookCell{state: initial}
	if alt := f.Alternate; alt != nil && idx < len(alt.hooks) {
		old := alt.hooks[idx]
		cell.base = old
		cell.state = old.state
		for _, action := range old.queue {
			cell.state = action(cell.state)
		}
	}
	f.hooks = append(f.hooks, cell)

	e := s.engine
	return cell.state, func(action domain.Action) {
		if action == nil {
			return
		}
		t := cell.target()
		t.queue = append(t.queue, action)
		e.rerender()
	}
}
