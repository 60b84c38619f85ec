package ports

import "github.com/aretw0/arbor/pkg/domain"

// Host is the contract the surrounding platform supplies to the runtime.
// The runtime calls it only from the commit phase.
type Host interface {
	// CreateNode allocates a new empty node of the given kind, or a text node
	// when kind is domain.TextTag.
	CreateNode(kind string) (domain.NodeRef, error)

	// SetAttribute applies a non-event prop. Text nodes receive domain.PropNodeValue.
	SetAttribute(node domain.NodeRef, name string, value any) error

	// ClearAttribute resets a prop that disappeared from the element.
	ClearAttribute(node domain.NodeRef, name string) error

	// AddListener registers handler for the event ("click" for "onClick").
	AddListener(node domain.NodeRef, event string, handler domain.Handler) error

	// RemoveListener deregisters the handler previously added for the event.
	RemoveListener(node domain.NodeRef, event string, handler domain.Handler) error

	// AppendChild adds child as the last child of parent.
	AppendChild(parent, child domain.NodeRef) error

	// RemoveChild detaches child from parent.
	RemoveChild(parent, child domain.NodeRef) error
}

// NodeInserter is implemented by hosts that can insert before a reference node.
// When available, placements keep the host order aligned with element order.
type NodeInserter interface {
	InsertBefore(parent, child, ref domain.NodeRef) error
}

// Snapshotter is implemented by hosts that can describe a subtree.
type Snapshotter interface {
	Snapshot(node domain.NodeRef) (*domain.Snapshot, error)
}

// Dispatcher is implemented by hosts that can deliver events to listeners.
type Dispatcher interface {
	Dispatch(node domain.NodeRef, event string, payload any) (bool, error)
}

// Finder is implemented by hosts that can look nodes up by their "id" attribute.
// Outer surfaces (HTTP, MCP, CLI) use it to address listeners.
type Finder interface {
	Find(root domain.NodeRef, id string) (domain.NodeRef, bool)
}
