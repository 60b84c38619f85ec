package dsl

import (
	"fmt"
	"reflect"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Parse reads a tree document. YAML is a superset of JSON, so both are accepted.
func Parse(data []byte) (*Node, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTree, err)
	}
	return Decode(raw)
}

// Decode converts a generic document (as produced by YAML/JSON decoders or
// front matter parsers) into a Node.
func Decode(raw any) (*Node, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidTree)
	}

	var node Node
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  scalarAsText,
		ErrorUnused: true,
		Result:      &node,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(normalize(raw)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidTree, err)
	}
	return &node, nil
}

var nodeType = reflect.TypeOf(Node{})

// scalarAsText lets children lists hold bare scalars as text nodes.
func scalarAsText(from, to reflect.Type, data any) (any, error) {
	if to != nodeType {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Struct, reflect.Ptr:
		return data, nil
	}
	return map[string]any{"text": data}, nil
}

// normalize converts map[any]any (older YAML decoders) into map[string]any, recursively.
func normalize(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprint(k)] = normalize(sub)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalize(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, sub := range val {
			out[i] = normalize(sub)
		}
		return out
	default:
		return v
	}
}
