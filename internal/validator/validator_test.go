package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var broken = domain.NewComponent("Broken", func(domain.Hooks, domain.Props) (domain.Element, error) {
	return domain.Element{}, errors.New("boom")
})

// failingLoader reports a load error for the ids in bad.
type failingLoader struct {
	*memory.Loader
	bad map[string]error
}

func (l failingLoader) List(ctx context.Context) ([]string, error) {
	ids, err := l.Loader.List(ctx)
	for id := range l.bad {
		ids = append(ids, id)
	}
	return ids, err
}

func (l failingLoader) Load(ctx context.Context, id string) (domain.Element, error) {
	if err, ok := l.bad[id]; ok {
		return domain.Element{}, err
	}
	return l.Loader.Load(ctx, id)
}

func TestValidateViews(t *testing.T) {
	ctx := context.Background()

	t.Run("valid views", func(t *testing.T) {
		loader := memory.NewLoader(map[string]domain.Element{
			"index": domain.H("main", nil, domain.H("h1", nil, "Home")),
			"about": domain.H("p", nil, "About"),
		})
		assert.NoError(t, ValidateViews(ctx, loader, WithEntry("index"), WithDryRender()))
	})

	t.Run("missing entry", func(t *testing.T) {
		loader := memory.NewLoader(map[string]domain.Element{"about": domain.Text("x")})
		err := ValidateViews(ctx, loader, WithEntry("index"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Missing entry view: 'index'")
	})

	t.Run("load errors are collected", func(t *testing.T) {
		loader := failingLoader{
			Loader: memory.NewLoader(map[string]domain.Element{"index": domain.Text("ok")}),
			bad: map[string]error{
				"cyclic": domain.ErrInvalidTree,
				"ghost":  errors.New("not found"),
			},
		}
		err := ValidateViews(ctx, loader)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "found 2 errors")
		assert.Contains(t, err.Error(), "Invalid view 'cyclic'")
		assert.Contains(t, err.Error(), "Invalid view 'ghost'")
	})

	t.Run("render errors only with dry render", func(t *testing.T) {
		loader := memory.NewLoader(map[string]domain.Element{
			"index": domain.H("div", nil, domain.C(broken, nil)),
		})
		assert.NoError(t, ValidateViews(ctx, loader))

		err := ValidateViews(ctx, loader, WithDryRender())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Render failed for view 'index'")
		assert.Contains(t, err.Error(), "boom")
	})
}
