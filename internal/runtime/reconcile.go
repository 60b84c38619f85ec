package runtime

import "github.com/aretw0/arbor/pkg/domain"

// reconcileChildren diffs the previous child chain of parent (reached through
// parent.Alternate) against elements and installs the new chain as
// parent.Child.
//
// Matching is positional plus kind equality; there are no keys. Reordering a
// list shows up as updates, placements and deletions from the first diverging
// position onwards.
func (e *Engine) reconcileChildren(parent *Fiber, elements []domain.Element) {
	var old *Fiber
	if parent.Alternate != nil {
		old = parent.Alternate.Child
	}

	parent.Child = nil
	var prev *Fiber

	for i := 0; i < len(elements) || old != nil; i++ {
		var el *domain.Element
		if i < len(elements) {
			el = &elements[i]
		}
		sameKind := el != nil && old != nil && el.Kind.Equal(old.Kind)

		var next *Fiber
		switch {
		case sameKind:
			next = &Fiber{
				Kind:      old.Kind,
				Props:     el.Props,
				Node:      old.Node,
				Parent:    parent,
				Alternate: old,
				Effect:    domain.EffectUpdate,
				index:     i,
			}
		case el != nil:
			next = &Fiber{
				Kind:   el.Kind,
				Props:  el.Props,
				Parent: parent,
				Effect: domain.EffectPlacement,
				index:  i,
			}
		}

		if old != nil && !sameKind {
			old.Effect = domain.EffectDeletion
			e.deletions = append(e.deletions, old)
		}
		if old != nil {
			old = old.Sibling
		}

		if next == nil {
			continue
		}
		if prev == nil {
			parent.Child = next
		} else {
			prev.Sibling = next
		}
		prev = next
	}
}
