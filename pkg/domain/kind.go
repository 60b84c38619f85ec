package domain

import "fmt"

// KindTag discriminates the Kind variant.
type KindTag uint8

const (
	KindHost KindTag = iota
	KindText
	KindComponent
	KindRoot
)

func (t KindTag) String() string {
	switch t {
	case KindHost:
		return "host"
	case KindText:
		return "text"
	case KindComponent:
		return "component"
	case KindRoot:
		return "root"
	default:
		return "unknown"
	}
}

// RenderFunc evaluates a component. It receives the hook scope of the fiber being
// rendered and the props (including PropChildren) of its element.
type RenderFunc func(hooks Hooks, props Props) (Element, error)

// Component is a named render function. Components are compared by identity,
// so declare them once (usually as package-level variables) and reuse the pointer.
type Component struct {
	Name   string
	Render RenderFunc
}

// NewComponent declares a component.
func NewComponent(name string, render RenderFunc) *Component {
	return &Component{Name: name, Render: render}
}

// Kind is the tagged variant Host(tag) | Text | Component | Root.
// The zero value is an empty host tag and is never produced by the builders.
type Kind struct {
	tag       KindTag
	name      string
	component *Component
}

// Host returns the kind of a host node with the given tag ("div", "h1", ...).
func Host(tag string) Kind { return Kind{tag: KindHost, name: tag} }

// TextKind is the reserved kind of plain text content.
var TextKind = Kind{tag: KindText, name: TextTag}

// RootKind is the kind of the container fiber.
var RootKind = Kind{tag: KindRoot, name: RootTag}

// ComponentKind wraps a component reference.
func ComponentKind(c *Component) Kind {
	name := "<nil>"
	if c != nil {
		name = c.Name
	}
	return Kind{tag: KindComponent, name: name, component: c}
}

// Tag returns the variant discriminator.
func (k Kind) Tag() KindTag { return k.tag }

// Name returns the host tag, TextTag, RootTag, or the component name.
func (k Kind) Name() string { return k.name }

// Component returns the component reference for KindComponent, nil otherwise.
func (k Kind) Component() *Component { return k.component }

// Equal reports whether two kinds are the same for reconciliation purposes.
func (k Kind) Equal(other Kind) bool {
	if k.tag != other.tag {
		return false
	}
	if k.tag == KindComponent {
		return k.component == other.component
	}
	return k.name == other.name
}

func (k Kind) String() string {
	if k.tag == KindComponent {
		return fmt.Sprintf("<%s/>", k.name)
	}
	return k.name
}
