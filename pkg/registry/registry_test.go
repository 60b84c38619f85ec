package registry

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	render := func(domain.Hooks, domain.Props) (domain.Element, error) { return domain.Element{}, nil }
	a := domain.NewComponent("A", render)
	b := domain.NewComponent("B", render)

	r := NewRegistry(b, a, nil)
	assert.Equal(t, []string{"A", "B"}, r.Names())

	got, ok := r.Component("A")
	assert.True(t, ok)
	assert.Same(t, a, got)

	_, ok = r.Component("C")
	assert.False(t, ok)
	assert.Panics(t, func() { r.MustComponent("C") })

	a2 := domain.NewComponent("A", render)
	r.Register(a2)
	assert.Same(t, a2, r.MustComponent("A"), "re-registering overwrites")
}
