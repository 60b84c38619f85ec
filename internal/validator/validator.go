package validator

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/ports"
)

// Option configures ValidateViews.
type Option func(*config)

type config struct {
	entry  string
	render bool
}

// WithEntry requires the view id to exist.
func WithEntry(id string) Option {
	return func(c *config) { c.entry = id }
}

// WithDryRender mounts every view on an in-memory host and flushes it, so
// component errors and broken hook order are reported too.
func WithDryRender() Option {
	return func(c *config) { c.render = true }
}

// ValidateViews loads every view of loader and reports the ones that do not
// resolve: malformed documents, unknown components, missing or cyclic
// includes. All problems are collected before returning.
func ValidateViews(ctx context.Context, loader ports.ViewLoader, opts ...Option) error {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	ids, err := loader.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list views: %w", err)
	}

	var errors []string
	if cfg.entry != "" && !slices.Contains(ids, cfg.entry) {
		errors = append(errors, fmt.Sprintf("Missing entry view: '%s'", cfg.entry))
	}

	for _, id := range ids {
		el, err := loader.Load(ctx, id)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Invalid view '%s': %v", id, err))
			continue
		}
		if !cfg.render {
			continue
		}

		host := memory.NewHost()
		rt, err := arbor.New(host, arbor.WithContainer(host.NewContainer()), arbor.WithName(id))
		if err != nil {
			return err
		}
		rt.Render(el, rt.Container())
		if err := rt.Flush(ctx); err != nil {
			errors = append(errors, fmt.Sprintf("Render failed for view '%s': %v", id, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
