package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
)

// LogHooks logs commits at Info and aborts at Warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			logger.InfoContext(ctx, "commit",
				"pass", e.Pass,
				"placements", e.Report.Count(domain.EffectPlacement),
				"updates", e.Report.Count(domain.EffectUpdate),
				"deletions", e.Report.Count(domain.EffectDeletion),
				"duration", e.Report.Duration,
			)
		},
		OnAbort: func(ctx context.Context, e *domain.AbortEvent) {
			logger.WarnContext(ctx, "pass aborted", "pass", e.Pass, "err", e.Err)
		},
	}
}
