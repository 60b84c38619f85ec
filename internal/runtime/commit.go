package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// commitRoot applies the pending pass to the host in one uninterrupted walk:
// deletions first, then every fiber of the new tree depth-first. On success the
// work-in-progress tree becomes the committed tree. On failure the pass is
// dropped and the committed tree is left as it was.
func (e *Engine) commitRoot(ctx context.Context) error {
	start := time.Now()
	root := e.wipRoot
	report := domain.CommitReport{
		Pass:      e.pass,
		Units:     e.units,
		Deletions: len(e.deletions),
	}

	for _, f := range e.deletions {
		if err := e.commitDeletion(f); err != nil {
			e.abort(ctx, err)
			return err
		}
		report.Effects = append(report.Effects, domain.Effect{
			Tag:  domain.EffectDeletion,
			Kind: f.Kind.String(),
			Path: f.Path(),
		})
	}

	for f := root.Child; f != nil; f = nextInOrder(f, root) {
		effect, err := e.commitWork(f)
		if err != nil {
			e.abort(ctx, err)
			return err
		}
		if effect != nil {
			report.Effects = append(report.Effects, *effect)
		}
	}

	// Promotion is the only moment the previous tree is discarded.
	root.Walk(func(f *Fiber) {
		f.Alternate = nil
		f.Effect = domain.EffectNone
		for _, c := range f.hooks {
			c.base = nil
		}
	})
	e.currentRoot = root
	e.wipRoot = nil
	e.deletions = nil
	e.restarts = 0

	report.Duration = time.Since(start)
	e.lastCommit = report

	e.logger.Debug("committed",
		"pass", report.Pass,
		"units", report.Units,
		"effects", len(report.Effects),
		"deletions", report.Deletions,
		"duration", report.Duration,
	)
	if e.hooks.OnCommit != nil {
		e.hooks.OnCommit(ctx, &domain.CommitEvent{EventBase: e.event(domain.EventCommit), Report: report})
	}
	return nil
}

// commitWork applies exactly one host mutation matching the fiber's effect tag.
func (e *Engine) commitWork(f *Fiber) (*domain.Effect, error) {
	switch f.Effect {
	case domain.EffectPlacement:
		if f.ownsNode() {
			if err := e.placeNode(f); err != nil {
				return nil, err
			}
		}
		return &domain.Effect{Tag: domain.EffectPlacement, Kind: f.Kind.String(), Path: f.Path()}, nil

	case domain.EffectUpdate:
		effect := &domain.Effect{Tag: domain.EffectUpdate, Kind: f.Kind.String(), Path: f.Path()}
		if f.ownsNode() && f.Alternate != nil {
			diff := domain.DiffProps(f.Alternate.Props, f.Props)
			if err := e.applyDiff(f, diff); err != nil {
				return nil, err
			}
			effect.Changed = diff.Changed()
		}
		return effect, nil

	default:
		return nil, nil
	}
}

// placeNode creates the host node, applies every prop and inserts it under the
// nearest ancestor owning a node.
func (e *Engine) placeNode(f *Fiber) error {
	kind := f.Kind.Name()
	node, err := e.host.CreateNode(kind)
	if err != nil {
		return &HostError{Op: "create", Kind: kind, Path: f.Path(), Err: err}
	}
	f.Node = node

	if err := e.applyDiff(f, domain.DiffProps(nil, f.Props)); err != nil {
		return err
	}

	parent := hostParent(f)
	if parent == nil {
		return &HostError{Op: "append", Kind: kind, Path: f.Path(), Err: errors.New("no ancestor owns a host node")}
	}

	if inserter, ok := e.host.(ports.NodeInserter); ok {
		if ref := nextMountedSibling(f); ref != nil {
			if err := inserter.InsertBefore(parent.Node, node, ref); err != nil {
				return &HostError{Op: "insert", Kind: kind, Path: f.Path(), Err: err}
			}
			return nil
		}
	}
	if err := e.host.AppendChild(parent.Node, node); err != nil {
		return &HostError{Op: "append", Kind: kind, Path: f.Path(), Err: err}
	}
	return nil
}

// applyDiff translates a props diff into host calls, in deterministic order.
func (e *Engine) applyDiff(f *Fiber, diff *domain.PropsDiff) error {
	kind := f.Kind.Name()
	for _, event := range domain.SortedKeys(diff.Unlisten) {
		if err := e.host.RemoveListener(f.Node, event, diff.Unlisten[event]); err != nil {
			return &HostError{Op: "removeListener", Kind: kind, Path: f.Path(), Err: err}
		}
	}
	for _, name := range diff.Cleared {
		if err := e.host.ClearAttribute(f.Node, name); err != nil {
			return &HostError{Op: "clearAttribute", Kind: kind, Path: f.Path(), Err: err}
		}
	}
	for _, name := range domain.SortedKeys(diff.Set) {
		if err := e.host.SetAttribute(f.Node, name, diff.Set[name]); err != nil {
			return &HostError{Op: "setAttribute", Kind: kind, Path: f.Path(), Err: err}
		}
	}
	for _, event := range domain.SortedKeys(diff.Listen) {
		if err := e.host.AddListener(f.Node, event, diff.Listen[event]); err != nil {
			return &HostError{Op: "addListener", Kind: kind, Path: f.Path(), Err: err}
		}
	}
	return nil
}

// commitDeletion removes the host nodes of a discarded fiber from the nearest
// ancestor owning a node. Component fibers own none, so their top-level host
// descendants are removed instead.
func (e *Engine) commitDeletion(f *Fiber) error {
	parent := hostParent(f)
	if parent == nil {
		return &HostError{Op: "remove", Kind: f.Kind.Name(), Path: f.Path(), Err: errors.New("no ancestor owns a host node")}
	}
	return e.removeNodes(parent.Node, f)
}

func (e *Engine) removeNodes(parent domain.NodeRef, f *Fiber) error {
	if f.ownsNode() && f.Node != nil {
		if err := e.host.RemoveChild(parent, f.Node); err != nil {
			return &HostError{Op: "remove", Kind: f.Kind.Name(), Path: f.Path(), Err: err}
		}
		return nil
	}
	for c := f.Child; c != nil; c = c.Sibling {
		if err := e.removeNodes(parent, c); err != nil {
			return err
		}
	}
	return nil
}

// hostParent returns the nearest ancestor of f that owns a host node.
func hostParent(f *Fiber) *Fiber {
	p := f.Parent
	for p != nil && (!p.ownsNode() || p.Node == nil) {
		p = p.Parent
	}
	return p
}

// nextMountedSibling finds the host node that follows f under the same host
// parent and is already mounted, so a placement can be inserted before it.
// The search crosses component boundaries but stops at the host parent.
func nextMountedSibling(f *Fiber) domain.NodeRef {
	for n := f; n != nil; n = n.Parent {
		for s := n.Sibling; s != nil; s = s.Sibling {
			if node := firstMountedNode(s); node != nil {
				return node
			}
		}
		if n.Parent == nil || n.Parent.ownsNode() {
			return nil
		}
	}
	return nil
}

func firstMountedNode(f *Fiber) domain.NodeRef {
	if f.Effect == domain.EffectPlacement {
		return nil
	}
	if f.ownsNode() {
		return f.Node
	}
	for c := f.Child; c != nil; c = c.Sibling {
		if node := firstMountedNode(c); node != nil {
			return node
		}
	}
	return nil
}
