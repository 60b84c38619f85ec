// Package htmlhost renders element trees into golang.org/x/net/html node trees,
// so committed output can be served or written as HTML.
package htmlhost

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNotChild is returned by RemoveChild and InsertBefore when a node is not
// a child of the given parent.
var ErrNotChild = errors.New("node is not a child of parent")

// Host implements ports.Host over *html.Node trees.
// Listeners are kept beside the tree, since HTML nodes cannot carry functions.
// Safe for concurrent use.
type Host struct {
	mu        sync.Mutex
	listeners map[*html.Node]map[string]domain.Handler
	policy    *bluemonday.Policy
}

// Option configures a Host.
type Option func(*Host)

// WithPolicy replaces the sanitization policy used by RenderSanitized.
func WithPolicy(p *bluemonday.Policy) Option {
	return func(h *Host) {
		h.policy = p
	}
}

// New creates an HTML host. RenderSanitized defaults to bluemonday's UGC policy.
func New(opts ...Option) *Host {
	h := &Host{
		listeners: make(map[*html.Node]map[string]domain.Handler),
		policy:    bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewContainer allocates a document fragment to render into.
func (h *Host) NewContainer() *html.Node {
	return &html.Node{Type: html.DocumentNode}
}

func asNode(ref domain.NodeRef) (*html.Node, error) {
	n, ok := ref.(*html.Node)
	if !ok || n == nil {
		return nil, fmt.Errorf("htmlhost: foreign node %T", ref)
	}
	return n, nil
}

// CreateNode allocates an element, or a text node for domain.TextTag.
func (h *Host) CreateNode(kind string) (domain.NodeRef, error) {
	if kind == domain.TextTag {
		return &html.Node{Type: html.TextNode}, nil
	}
	if kind == "" {
		return nil, fmt.Errorf("htmlhost: empty tag")
	}
	return &html.Node{
		Type:     html.ElementNode,
		Data:     kind,
		DataAtom: atom.Lookup([]byte(kind)),
	}, nil
}

// SetAttribute sets an attribute. Booleans follow HTML semantics: true
// renders the bare attribute, false removes it.
func (h *Host) SetAttribute(ref domain.NodeRef, name string, value any) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	if n.Type == html.TextNode {
		if name != domain.PropNodeValue {
			return fmt.Errorf("htmlhost: text nodes only accept %s, got %q", domain.PropNodeValue, name)
		}
		n.Data = fmt.Sprint(value)
		return nil
	}

	var val string
	switch v := value.(type) {
	case bool:
		if !v {
			removeAttr(n, name)
			return nil
		}
	case nil:
		removeAttr(n, name)
		return nil
	case string:
		val = v
	default:
		val = fmt.Sprint(v)
	}

	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = val
			return nil
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: val})
	return nil
}

// ClearAttribute removes an attribute; text nodes are emptied.
func (h *Host) ClearAttribute(ref domain.NodeRef, name string) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	if n.Type == html.TextNode {
		n.Data = ""
		return nil
	}
	removeAttr(n, name)
	return nil
}

func removeAttr(n *html.Node, name string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != name {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// AddListener registers the handler for event, replacing any previous one.
func (h *Host) AddListener(ref domain.NodeRef, event string, handler domain.Handler) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners[n] == nil {
		h.listeners[n] = make(map[string]domain.Handler)
	}
	h.listeners[n][event] = handler
	return nil
}

// RemoveListener drops the handler for event.
func (h *Host) RemoveListener(ref domain.NodeRef, event string, _ domain.Handler) error {
	n, err := asNode(ref)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.listeners[n], event)
	if len(h.listeners[n]) == 0 {
		delete(h.listeners, n)
	}
	return nil
}

// AppendChild moves child to the end of parent.
func (h *Host) AppendChild(parentRef, childRef domain.NodeRef) error {
	parent, err := asNode(parentRef)
	if err != nil {
		return err
	}
	child, err := asNode(childRef)
	if err != nil {
		return err
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
	return nil
}

// InsertBefore moves child in front of ref, which must be a child of parent.
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
	if ref.Parent != parent {
		return ErrNotChild
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.InsertBefore(child, ref)
	return nil
}

// RemoveChild detaches child and forgets the listeners of its subtree.
func (h *Host) RemoveChild(parentRef, childRef domain.NodeRef) error {
	parent, err := asNode(parentRef)
	if err != nil {
		return err
	}
	child, err := asNode(childRef)
	if err != nil {
		return err
	}
	if child.Parent != parent {
		return ErrNotChild
	}
	parent.RemoveChild(child)

	h.mu.Lock()
	defer h.mu.Unlock()
	walk(child, func(n *html.Node) { delete(h.listeners, n) })
	return nil
}

// Dispatch calls the handler registered for event on node.
func (h *Host) Dispatch(ref domain.NodeRef, event string, payload any) (bool, error) {
	n, err := asNode(ref)
	if err != nil {
		return false, err
	}
	h.mu.Lock()
	handler, ok := h.listeners[n][event]
	h.mu.Unlock()
	if !ok || handler == nil {
		return false, nil
	}
	handler(domain.Event{Type: event, Target: n, Payload: payload})
	return true, nil
}

// Find returns the first element under root whose id attribute is id.
func (h *Host) Find(rootRef domain.NodeRef, id string) (domain.NodeRef, bool) {
	root, err := asNode(rootRef)
	if err != nil {
		return nil, false
	}
	var found *html.Node
	walk(root, func(n *html.Node) {
		if found != nil || n.Type != html.ElementNode {
			return
		}
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				found = n
				return
			}
		}
	})
	return found, found != nil
}

// Snapshot describes the subtree rooted at node.
func (h *Host) Snapshot(ref domain.NodeRef) (*domain.Snapshot, error) {
	n, err := asNode(ref)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshot(n), nil
}

func (h *Host) snapshot(n *html.Node) *domain.Snapshot {
	var s *domain.Snapshot
	switch n.Type {
	case html.DocumentNode:
		s = &domain.Snapshot{Kind: domain.RootTag}
	case html.TextNode:
		return &domain.Snapshot{Kind: domain.TextTag, Text: n.Data}
	default:
		s = &domain.Snapshot{Kind: n.Data}
	}
	if len(n.Attr) > 0 {
		s.Attrs = make(map[string]any, len(n.Attr))
		for _, a := range n.Attr {
			s.Attrs[a.Key] = a.Val
		}
	}
	if events := h.listeners[n]; len(events) > 0 {
		s.Events = make([]string, 0, len(events))
		for e := range events {
			s.Events = append(s.Events, e)
		}
		sort.Strings(s.Events)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		s.Children = append(s.Children, h.snapshot(c))
	}
	return s
}

// Render serializes the subtree rooted at node. Containers print only their children.
func (h *Host) Render(ref domain.NodeRef) (string, error) {
	n, err := asNode(ref)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if n.Type == html.DocumentNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderSanitized is Render passed through the host's bluemonday policy.
func (h *Host) RenderSanitized(ref domain.NodeRef) (string, error) {
	out, err := h.Render(ref)
	if err != nil {
		return "", err
	}
	return h.policy.Sanitize(out), nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}
