package domain

import (
	"strings"
	"unicode"
)

// Props maps prop names to values. Values are applied verbatim as host
// attributes, except PropChildren (structural) and event props (listeners).
type Props map[string]any

// Children returns the normalized child elements stored under PropChildren.
func (p Props) Children() []Element {
	if p == nil {
		return nil
	}
	children, _ := p[PropChildren].([]Element)
	return children
}

// String returns the string value of a prop, or "" when absent or not a string.
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// IsReserved reports whether a prop is structural and never reaches the host.
func IsReserved(name string) bool {
	return name == PropChildren
}

// EventName returns the lower-cased event name of an event prop ("onClick" -> "click").
func EventName(prop string) (string, bool) {
	if !strings.HasPrefix(prop, EventPrefix) || len(prop) <= len(EventPrefix) {
		return "", false
	}
	rest := prop[len(EventPrefix):]
	if !unicode.IsUpper(rune(rest[0])) {
		return "", false
	}
	return strings.ToLower(rest), true
}

// Event is delivered to listeners registered through event props.
type Event struct {
	Type    string
	Target  NodeRef
	Payload any
}

// Handler receives host events.
type Handler func(Event)

// AsHandler normalizes the accepted listener shapes into a Handler.
func AsHandler(v any) (Handler, bool) {
	switch h := v.(type) {
	case Handler:
		return h, h != nil
	case func(Event):
		return h, h != nil
	case func():
		if h == nil {
			return nil, false
		}
		return func(Event) { h() }, true
	default:
		return nil, false
	}
}

// NodeRef is an opaque handle to a node owned by the host environment.
type NodeRef any
