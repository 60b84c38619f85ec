package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/internal/validator"
	loamAdapter "github.com/aretw0/arbor/pkg/adapters/loam"
)

// Validate checks every view document of the configured directory. With a
// view selected, that view must exist; with dryRender, every view is also
// mounted once.
func Validate(ctx context.Context, opts RunOptions, dryRender bool) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	loader, err := loamAdapter.Open(cfg.Views, loamAdapter.WithComponents(demo.Registry()))
	if err != nil {
		return fmt.Errorf("failed to open views at %s: %w", cfg.Views, err)
	}

	var vopts []validator.Option
	if opts.View != "" {
		vopts = append(vopts, validator.WithEntry(opts.View))
	}
	if dryRender {
		vopts = append(vopts, validator.WithDryRender())
	}
	return validator.ValidateViews(ctx, loader, vopts...)
}
