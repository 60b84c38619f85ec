package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/pkg/adapters/htmlhost"
	"github.com/aretw0/arbor/pkg/domain"
)

// entryCandidates are tried in order when no view is named.
var entryCandidates = []string{"index", "main", "app"}

// createRuntime initializes a Runtime over an HTML host with standard CLI
// conventions: views come from cfg.Views (unless demo mode), the demo
// components are registered, and debug logging adds lifecycle hooks.
func createRuntime(cfg *config.Config, opts RunOptions, logger *slog.Logger, extra ...arbor.Option) (*arbor.Runtime, *htmlhost.Host, error) {
	host := htmlhost.New()
	rtOpts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithRegistry(demo.Registry()),
		arbor.WithContainer(host.NewContainer()),
	}
	if !opts.Demo {
		rtOpts = append(rtOpts, arbor.WithViewDir(cfg.Views))
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		rtOpts = append(rtOpts, arbor.WithLifecycleHooks(createDebugHooks(logger)))
	}
	rtOpts = append(rtOpts, extra...)

	rt, err := arbor.New(host, rtOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing runtime: %w", err)
	}
	return rt, host, nil
}

// scheduleRoot schedules the first pass: the demo app or the selected view.
func scheduleRoot(ctx context.Context, rt *arbor.Runtime, cfg *config.Config, opts RunOptions) (string, error) {
	if opts.Demo {
		rt.Render(domain.C(demo.App, nil), rt.Container())
		return demo.App.Name, nil
	}
	view := opts.View
	if view == "" {
		view = determineEntryView(cfg.Views)
	}
	if err := rt.RenderView(ctx, view); err != nil {
		return view, fmt.Errorf("failed to load view %q: %w", view, err)
	}
	return view, nil
}

// determineEntryView picks the document rendered when none is named:
// index, main or app, then a document named after the directory.
func determineEntryView(dir string) string {
	for _, name := range entryCandidates {
		if hasView(dir, name) {
			return name
		}
	}
	abs, err := filepath.Abs(dir)
	if err == nil {
		if base := filepath.Base(abs); hasView(dir, base) {
			return base
		}
	}
	return entryCandidates[0]
}

// hasView checks if a view exists as a file in the directory.
func hasView(dir, id string) bool {
	for _, ext := range []string{".md", ".yaml", ".yml", ".json"} {
		if _, err := os.Stat(filepath.Join(dir, id+ext)); err == nil {
			return true
		}
	}
	return false
}
