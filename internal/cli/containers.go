package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// OpenContainers opens the configured snapshot store for inspection.
func OpenContainers(ctx context.Context, opts RunOptions) (*Persistence, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return OpenPersistence(ctx, cfg, createLogger(cfg.LogLevel, true))
}

// ListContainers prints the stored container IDs, one per line.
func ListContainers(ctx context.Context, p *Persistence, w io.Writer) error {
	ids, err := p.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}
	if len(ids) == 0 {
		_, err := fmt.Fprintln(w, "No stored containers found.")
		return err
	}
	fmt.Fprintln(w, "Stored Containers:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// InspectContainer prints the stored snapshot of id as JSON, or as markup
// when markup is set.
func InspectContainer(ctx context.Context, p *Persistence, id string, markup bool, w io.Writer) error {
	snap, err := p.Store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load container '%s': %w", id, err)
	}
	if markup {
		_, err := fmt.Fprintln(w, snap.Markup())
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
