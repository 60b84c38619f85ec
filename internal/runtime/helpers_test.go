package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/require"
)

// unitBudget reports an exhausted slice once it has been consulted n times,
// i.e. after n work units.
type unitBudget struct{ left int }

func (b *unitBudget) TimeRemaining() time.Duration {
	b.left--
	if b.left <= 0 {
		return 0
	}
	return time.Hour
}

type unlimited struct{}

func (unlimited) TimeRemaining() time.Duration { return time.Hour }

type fixture struct {
	host      *memory.Host
	container *memory.Node
	engine    *runtime.Engine
}

func newFixture(opts ...runtime.EngineOption) *fixture {
	host := memory.NewHost()
	return &fixture{
		host:      host,
		container: host.NewContainer(),
		engine:    runtime.NewEngine(host, opts...),
	}
}

// render schedules el and drains the pass.
func (f *fixture) render(t *testing.T, el domain.Element) {
	t.Helper()
	f.engine.Render(el, f.container)
	f.flush(t)
}

func (f *fixture) flush(t *testing.T) {
	t.Helper()
	for i := 0; i < 100; i++ {
		status, err := f.engine.Work(context.Background(), unlimited{})
		require.NoError(t, err)
		if status == domain.StatusIdle {
			return
		}
	}
	t.Fatal("engine never became idle")
}

func (f *fixture) markup() string {
	return f.host.Render(f.container)
}

func (f *fixture) click(t *testing.T, id string) {
	t.Helper()
	node, ok := f.host.Find(f.container, id)
	require.True(t, ok, "no node with id %q", id)
	handled, err := f.host.Dispatch(node, "click", nil)
	require.NoError(t, err)
	require.True(t, handled, "node %q has no click listener", id)
}

func effectsOf(f *runtime.Fiber) []domain.EffectTag {
	var tags []domain.EffectTag
	for _, c := range f.Children() {
		tags = append(tags, c.Effect)
	}
	return tags
}
