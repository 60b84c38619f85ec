package dsl

// Node is one entry of a tree document.
type Node struct {
	Tag       string         `json:"tag,omitempty" yaml:"tag,omitempty" mapstructure:"tag"`
	Component string         `json:"component,omitempty" yaml:"component,omitempty" mapstructure:"component"`
	View      string         `json:"view,omitempty" yaml:"view,omitempty" mapstructure:"view"`
	Text      any            `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
	Props     map[string]any `json:"props,omitempty" yaml:"props,omitempty" mapstructure:"props"`
	Children  []*Node        `json:"children,omitempty" yaml:"children,omitempty" mapstructure:"children"`
}

// Tag starts a host element node.
func Tag(tag string) *Node {
	return &Node{Tag: tag}
}

// Component starts a component node.
func Component(name string) *Node {
	return &Node{Component: name}
}

// View references another view by ID.
func View(id string) *Node {
	return &Node{View: id}
}

// Text creates a text node.
func Text(v any) *Node {
	return &Node{Text: v}
}

// Prop sets a prop and returns the node for chaining.
func (n *Node) Prop(key string, value any) *Node {
	if n.Props == nil {
		n.Props = make(map[string]any)
	}
	n.Props[key] = value
	return n
}

// With appends children and returns the node for chaining.
func (n *Node) With(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// variant returns the kind of node and how many kinds were declared.
func (n *Node) variant() (string, int) {
	kind, count := "", 0
	if n.Tag != "" {
		kind, count = "tag", count+1
	}
	if n.Component != "" {
		kind, count = "component", count+1
	}
	if n.View != "" {
		kind, count = "view", count+1
	}
	if n.Text != nil {
		kind, count = "text", count+1
	}
	return kind, count
}
