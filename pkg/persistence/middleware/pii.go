package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactionMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware creates a middleware that masks sensitive content
// before it is stored:
//   - attributes whose name matches a pattern;
//   - the value attribute and the text of fields whose name or id matches.
func NewRedactionMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &redactionMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, containerID string, snap *domain.Snapshot) error {
	// The caller keeps using its snapshot; only the stored copy is masked.
	cloned := snap.Clone()
	m.mask(cloned)
	return m.next.Save(ctx, containerID, cloned)
}

func (m *redactionMiddleware) Load(ctx context.Context, containerID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, containerID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, containerID string) error {
	return m.next.Delete(ctx, containerID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactionMiddleware) matches(s string) bool {
	for _, p := range m.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func (m *redactionMiddleware) mask(s *domain.Snapshot) {
	for k := range s.Attrs {
		if m.matches(k) {
			s.Attrs[k] = Mask
		}
	}

	if m.matches(attr(s, "name")) || m.matches(attr(s, "id")) {
		if _, ok := s.Attrs["value"]; ok {
			s.Attrs["value"] = Mask
		}
		s.Walk(func(d *domain.Snapshot) {
			if d.Kind == domain.TextTag {
				d.Text = Mask
			}
		})
		return
	}

	for _, c := range s.Children {
		m.mask(c)
	}
}

func attr(s *domain.Snapshot, name string) string {
	v, ok := s.Attrs[name]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}
