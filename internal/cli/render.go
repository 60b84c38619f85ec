package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
)

// Render output formats.
const (
	FormatHTML      = "html"
	FormatSanitized = "sanitized"
	FormatMarkdown  = "markdown"
	FormatTerminal  = "tui"
	FormatJSON      = "json"
	FormatMermaid   = "mermaid"
	FormatReport    = "report"
)

// Formats lists the accepted values of the --format flag.
var Formats = []string{FormatHTML, FormatSanitized, FormatMarkdown, FormatTerminal, FormatJSON, FormatMermaid, FormatReport}

// RenderOnce renders the selected view to its first commit and writes it to w
// in the given format.
func RenderOnce(ctx context.Context, opts RunOptions, format string, w io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.LogLevel, true)

	rt, host, err := createRuntime(cfg, opts, logger)
	if err != nil {
		return err
	}
	if _, err := scheduleRoot(ctx, rt, cfg, opts); err != nil {
		return err
	}
	if err := rt.Flush(ctx); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	snap, err := rt.Snapshot()
	if err != nil {
		return err
	}

	if opts.ContainerID != "" {
		p, err := OpenPersistence(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		if err := p.Store.Save(ctx, opts.ContainerID, snap); err != nil {
			return fmt.Errorf("failed to persist snapshot: %w", err)
		}
	}

	var out string
	switch format {
	case FormatHTML, "":
		out, err = host.Render(rt.Container())
	case FormatSanitized:
		out, err = host.RenderSanitized(rt.Container())
	case FormatMarkdown:
		out = tui.Markdown(snap)
	case FormatTerminal:
		out, err = tui.NewRenderer()(snap)
	case FormatJSON:
		var raw []byte
		raw, err = json.MarshalIndent(snap, "", "  ")
		out = string(raw)
	case FormatMermaid:
		out = graph.GenerateMermaid(rt.Current(), graph.OverlayFromReport(rt.LastCommit()))
	case FormatReport:
		out = tui.ReportMarkdown(rt.LastCommit())
	default:
		return fmt.Errorf("unknown format %q (supported: %v)", format, Formats)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
