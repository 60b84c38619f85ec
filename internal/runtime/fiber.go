package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Fiber is the mutable unit of work and of persistent structure: one per
// rendered element instance.
//
// Ownership: a fiber owns its child chain (Child, then each Sibling) and the
// host node it created, until the node is removed or the fiber is discarded.
// Alternate is a non-owning lookup link to the fiber at the same position in
// the last committed tree. It is only read while the pass that set it is in
// flight and is released (nil) once that pass commits.
type Fiber struct {
	Kind  domain.Kind
	Props domain.Props
	Node  domain.NodeRef

	Parent  *Fiber
	Child   *Fiber
	Sibling *Fiber

	Alternate *Fiber
	Effect    domain.EffectTag

	hooks []*hookCell
	index int
}

// HookCount returns the number of state cells the fiber's component used.
func (f *Fiber) HookCount() int { return len(f.hooks) }

// Index returns the position of the fiber among its siblings.
func (f *Fiber) Index() int { return f.index }

// Children returns the child chain as a slice.
func (f *Fiber) Children() []*Fiber {
	var out []*Fiber
	for c := f.Child; c != nil; c = c.Sibling {
		out = append(out, c)
	}
	return out
}

// Path locates the fiber from its root, e.g. "div[0]/ul[1]/li[2]".
func (f *Fiber) Path() string {
	var segments []string
	for n := f; n != nil && n.Kind.Tag() != domain.KindRoot; n = n.Parent {
		segments = append(segments, fmt.Sprintf("%s[%d]", n.Kind.Name(), n.index))
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return strings.Join(segments, "/")
}

// Walk visits the subtree rooted at f depth-first, in the same order the
// scheduler processes work units.
func (f *Fiber) Walk(fn func(*Fiber)) {
	for n := f; n != nil; n = nextInOrder(n, f) {
		fn(n)
	}
}

// ownsNode reports whether the fiber kind materializes a host node.
func (f *Fiber) ownsNode() bool {
	switch f.Kind.Tag() {
	case domain.KindHost, domain.KindText, domain.KindRoot:
		return true
	default:
		return false
	}
}

// nextInOrder returns the next fiber in depth-first order without leaving the
// subtree of boundary (nil means the whole tree): the first child, else the
// nearest next sibling walking up through ancestors.
func nextInOrder(f, boundary *Fiber) *Fiber {
	if f.Child != nil {
		return f.Child
	}
	for n := f; n != nil && n != boundary; n = n.Parent {
		if n.Sibling != nil {
			return n.Sibling
		}
	}
	return nil
}
