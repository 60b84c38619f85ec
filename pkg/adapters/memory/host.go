package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// ErrForeignNode is returned when a NodeRef was not created by this host.
var ErrForeignNode = errors.New("node does not belong to this host")

// Node is a host node of the in-memory tree.
type Node struct {
	ID       int
	Kind     string
	Attrs    map[string]any
	Text     string
	Parent   *Node
	Children []*Node

	listeners map[string]domain.Handler
}

// Op records one host call, in call order.
type Op struct {
	Name   string // create, set, clear, listen, unlisten, append, insert, remove
	Kind   string
	Detail string
}

func (o Op) String() string {
	if o.Detail == "" {
		return o.Name + " " + o.Kind
	}
	return o.Name + " " + o.Kind + " " + o.Detail
}

type fault struct {
	after int
	err   error
}

// Host implements ports.Host as a plain tree of Nodes.
// It records every call in an op log and can be told to fail a given call,
// which makes it the reference host for runtime tests.
// Safe for concurrent use.
type Host struct {
	mu     sync.Mutex
	nextID int
	ops    []Op
	counts map[string]int
	faults map[string]fault
}

// NewHost creates an empty in-memory host.
func NewHost() *Host {
	return &Host{
		counts: make(map[string]int),
		faults: make(map[string]fault),
	}
}

// NewContainer allocates a detached container node to render into.
// It is not recorded in the op log.
func (h *Host) NewContainer() *Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	return &Node{ID: h.nextID, Kind: domain.RootTag, Attrs: map[string]any{}}
}

// FailOn makes the nth call (1-based, counted from now) of op return err.
func (h *Host) FailOn(op string, nth int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.faults[op] = fault{after: h.counts[op] + nth, err: err}
}

// Ops returns a copy of the op log.
func (h *Host) Ops() []Op {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Op(nil), h.ops...)
}

// Count returns how many calls of op were recorded.
func (h *Host) Count(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, o := range h.ops {
		if o.Name == op {
			n++
		}
	}
	return n
}

// ResetOps clears the op log. Pending faults keep their position.
func (h *Host) ResetOps() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ops = nil
}

// record must be called with the lock held.
func (h *Host) record(name, kind, detail string) error {
	h.counts[name]++
	if f, ok := h.faults[name]; ok && h.counts[name] == f.after {
		delete(h.faults, name)
		return f.err
	}
	h.ops = append(h.ops, Op{Name: name, Kind: kind, Detail: detail})
	return nil
}

func asNode(ref domain.NodeRef) (*Node, error) {
	n, ok := ref.(*Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignNode, ref)
	}
	return n, nil
}

// CreateNode allocates a detached node.
func (h *Host) CreateNode(kind string) (domain.NodeRef, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("create", kind, ""); err != nil {
		return nil, err
	}
	h.nextID++
	return &Node{ID: h.nextID, Kind: kind, Attrs: map[string]any{}}, nil
}

// SetAttribute stores the value; nodeValue on a text node sets its text.
func (h *Host) SetAttribute(ref domain.NodeRef, name string, value any) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("set", n.Kind, fmt.Sprintf("%s=%v", name, value)); err != nil {
		return err
	}
	if n.Kind == domain.TextTag && name == domain.PropNodeValue {
		n.Text = fmt.Sprint(value)
		return nil
	}
	n.Attrs[name] = value
	return nil
}

// ClearAttribute removes the attribute.
func (h *Host) ClearAttribute(ref domain.NodeRef, name string) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("clear", n.Kind, name); err != nil {
		return err
	}
	if n.Kind == domain.TextTag && name == domain.PropNodeValue {
		n.Text = ""
		return nil
	}
	delete(n.Attrs, name)
	return nil
}

// AddListener registers the handler for event, replacing any previous one.
func (h *Host) AddListener(ref domain.NodeRef, event string, handler domain.Handler) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("listen", n.Kind, event); err != nil {
		return err
	}
	if n.listeners == nil {
		n.listeners = make(map[string]domain.Handler)
	}
	n.listeners[event] = handler
	return nil
}

// RemoveListener drops the handler registered for event.
// A node holds one handler per event, so the handler argument is not compared.
func (h *Host) RemoveListener(ref domain.NodeRef, event string, _ domain.Handler) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("unlisten", n.Kind, event); err != nil {
		return err
	}
	delete(n.listeners, event)
	return nil
}

// AppendChild moves child to the end of parent's children.
func (h *Host) AppendChild(parentRef, childRef domain.NodeRef) error {
	parent, err := asNode(parentRef)
	if err != nil {
		return err
	}
	child, err := asNode(childRef)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("append", child.Kind, "into "+parent.Kind); err != nil {
		return err
	}
	detach(child)
	child.Parent = parent
	parent.Children = append(parent.Children, child)
	return nil
}

// InsertBefore moves child right before ref, which must be a child of parent.
func (h *Host) InsertBefore(parentRef, childRef, refRef domain.NodeRef) error {
	parent, err := asNode(parentRef)
	if err != nil {
		return err
	}
	child, err := asNode(childRef)
	if err != nil {
		return err
	}
	ref, err := asNode(refRef)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("insert", child.Kind, "before "+ref.Kind); err != nil {
		return err
	}
	detach(child)
	idx := indexOf(parent, ref)
	if idx < 0 {
		return fmt.Errorf("reference %s#%d is not a child of %s#%d", ref.Kind, ref.ID, parent.Kind, parent.ID)
	}
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[idx+1:], parent.Children[idx:])
	parent.Children[idx] = child
	child.Parent = parent
	return nil
}

// RemoveChild detaches child from parent.
func (h *Host) RemoveChild(parentRef, childRef domain.NodeRef) error {
	parent, err := asNode(parentRef)
	if err != nil {
		return err
	}
	child, err := asNode(childRef)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("remove", child.Kind, "from "+parent.Kind); err != nil {
		return err
	}
	if child.Parent != parent {
		return fmt.Errorf("%s#%d is not a child of %s#%d", child.Kind, child.ID, parent.Kind, parent.ID)
	}
	detach(child)
	return nil
}

// Dispatch calls the handler registered for event on node.
// The host lock is released before the handler runs, so handlers may trigger
// renders that call back into the host.
func (h *Host) Dispatch(ref domain.NodeRef, event string, payload any) (bool, error) {
	n, err := asNode(ref)
	if err != nil {
		return false, err
	}
	h.mu.Lock()
	handler, ok := n.listeners[event]
	h.mu.Unlock()
	if !ok || handler == nil {
		return false, nil
	}
	handler(domain.Event{Type: event, Target: n, Payload: payload})
	return true, nil
}

// Find returns the first node under root (depth-first) whose "id" attribute is id.
func (h *Host) Find(rootRef domain.NodeRef, id string) (domain.NodeRef, bool) {
	root, err := asNode(rootRef)
	if err != nil {
		return nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if n := find(root, id); n != nil {
		return n, true
	}
	return nil, false
}

func find(n *Node, id string) *Node {
	if v, ok := n.Attrs["id"]; ok && fmt.Sprint(v) == id {
		return n
	}
	for _, c := range n.Children {
		if found := find(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Snapshot describes the subtree rooted at node.
func (h *Host) Snapshot(ref domain.NodeRef) (*domain.Snapshot, error) {
	n, err := asNode(ref)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return snapshot(n), nil
}

func snapshot(n *Node) *domain.Snapshot {
	s := &domain.Snapshot{Kind: n.Kind, Text: n.Text}
	if len(n.Attrs) > 0 {
		s.Attrs = make(map[string]any, len(n.Attrs))
		for k, v := range n.Attrs {
			s.Attrs[k] = v
		}
	}
	if len(n.listeners) > 0 {
		s.Events = domain.SortedKeys(n.listeners)
	}
	for _, c := range n.Children {
		s.Children = append(s.Children, snapshot(c))
	}
	return s
}

// Render prints the subtree rooted at node as markup, attributes sorted.
// Containers print only their children.
func (h *Host) Render(ref domain.NodeRef) string {
	snap, err := h.Snapshot(ref)
	if err != nil {
		return ""
	}
	return snap.Markup()
}

func detach(child *Node) {
	p := child.Parent
	if p == nil {
		return
	}
	if idx := indexOf(p, child); idx >= 0 {
		p.Children = append(p.Children[:idx], p.Children[idx+1:]...)
	}
	child.Parent = nil
}

func indexOf(parent, child *Node) int {
	for i, c := range parent.Children {
		if c == child {
			return i
		}
	}
	return -1
}
