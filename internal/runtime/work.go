package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// performUnitOfWork reconciles the children of one fiber and returns the next
// fiber to process in depth-first order, or nil when the tree is exhausted.
// It never touches the host: placements get their node during commit.
func (e *Engine) performUnitOfWork(ctx context.Context, f *Fiber) (*Fiber, error) {
	switch f.Kind.Tag() {
	case domain.KindComponent:
		if err := e.updateComponent(f); err != nil {
			return nil, err
		}
	case domain.KindHost, domain.KindText, domain.KindRoot:
		e.reconcileChildren(f, f.Props.Children())
	default:
		return nil, fmt.Errorf("unknown kind %q at %q", f.Kind.Tag(), f.Path())
	}

	if e.hooks.OnWorkUnit != nil {
		e.hooks.OnWorkUnit(ctx, &domain.WorkEvent{EventBase: e.event(domain.EventWorkUnit), Kind: f.Kind.String()})
	}
	return nextInOrder(f, nil), nil
}

// updateComponent evaluates a component fiber and reconciles its single child.
func (e *Engine) updateComponent(f *Fiber) error {
	comp := f.Kind.Component()
	if comp == nil || comp.Render == nil {
		return &ComponentError{Component: f.Kind.Name(), Path: f.Path(), Err: errors.New("component has no render function")}
	}

	f.hooks = nil
	pass := e.pass
	child, err := evaluate(comp, &hookScope{engine: e, fiber: f}, f.Props)
	if err != nil {
		return &ComponentError{Component: comp.Name, Path: f.Path(), Err: err}
	}
	if e.pass != pass {
		// A setter restarted the pass; this fiber belongs to the abandoned tree.
		return nil
	}

	if alt := f.Alternate; alt != nil && len(alt.hooks) != len(f.hooks) {
		return &HookMismatchError{
			Component: comp.Name,
			Path:      f.Path(),
			Previous:  len(alt.hooks),
			Current:   len(f.hooks),
		}
	}

	var children []domain.Element
	if !child.IsZero() {
		children = []domain.Element{child}
	}
	e.reconcileChildren(f, children)
	return nil
}

func evaluate(comp *domain.Component, hooks domain.Hooks, props domain.Props) (el domain.Element, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return comp.Render(hooks, props)
}
