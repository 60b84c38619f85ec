package domain

import (
	"reflect"
	"sort"
)

// PropsDiff represents the changes between the props of two renders of the same fiber.
// The committer turns it into host calls on the existing node.
type PropsDiff struct {
	// Set contains changed or added attributes with their new value.
	Set map[string]any

	// Cleared lists attributes present before and absent now.
	Cleared []string

	// Unlisten contains listeners to deregister, keyed by event name.
	Unlisten map[string]Handler

	// Listen contains listeners to register, keyed by event name.
	Listen map[string]Handler
}

// DiffProps calculates the difference between oldProps and newProps.
// If oldProps is nil, every prop of newProps is treated as added (initial mount).
//
// Values are compared with reflect.DeepEqual. Functions only compare equal when
// both are nil, so listeners are re-registered on every update; hosts therefore
// always hold the closure from the latest render.
func DiffProps(oldProps, newProps Props) *PropsDiff {
	diff := &PropsDiff{}

	// 1. Removed keys
	for k, oldVal := range oldProps {
		if IsReserved(k) {
			continue
		}
		if _, exists := newProps[k]; exists {
			continue
		}
		if event, ok := EventName(k); ok {
			if h, ok := AsHandler(oldVal); ok {
				diff.unlisten(event, h)
			}
			continue
		}
		diff.Cleared = append(diff.Cleared, k)
	}

	// 2. Added or Modified
	for k, newVal := range newProps {
		if IsReserved(k) {
			continue
		}
		oldVal, exists := oldProps[k]
		if exists && reflect.DeepEqual(oldVal, newVal) {
			continue
		}
		if event, ok := EventName(k); ok {
			if exists {
				if h, ok := AsHandler(oldVal); ok {
					diff.unlisten(event, h)
				}
			}
			if h, ok := AsHandler(newVal); ok {
				diff.listen(event, h)
			}
			continue
		}
		if diff.Set == nil {
			diff.Set = make(map[string]any)
		}
		diff.Set[k] = newVal
	}

	sort.Strings(diff.Cleared)
	return diff
}

func (d *PropsDiff) unlisten(event string, h Handler) {
	if d.Unlisten == nil {
		d.Unlisten = make(map[string]Handler)
	}
	d.Unlisten[event] = h
}

func (d *PropsDiff) listen(event string, h Handler) {
	if d.Listen == nil {
		d.Listen = make(map[string]Handler)
	}
	d.Listen[event] = h
}

// Changed returns the sorted names of every attribute touched by the diff.
// Listener swaps are not reported.
func (d *PropsDiff) Changed() []string {
	names := make([]string, 0, len(d.Set)+len(d.Cleared))
	for k := range d.Set {
		names = append(names, k)
	}
	names = append(names, d.Cleared...)
	sort.Strings(names)
	return names
}

// IsEmpty checks if the diff contains any actionable change.
func (d *PropsDiff) IsEmpty() bool {
	return len(d.Set) == 0 && len(d.Cleared) == 0 && len(d.Listen) == 0 && len(d.Unlisten) == 0
}

// SortedKeys returns the keys of m in order, so host calls are deterministic.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
