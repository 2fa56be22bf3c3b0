package tasks

import (
	"context"
	"fmt"
	"time"
)

// newAuditPruneTask creates the scheduled task function that removes
// detection-log rows older than the configured retention horizon. The
// append-only audit file is not touched; rotation of that file is left to
// the host system.
func newAuditPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "audit_prune")

	return func(ctx context.Context) error {
		retention := time.Duration(deps.Config.Audit.RetentionDays) * 24 * time.Hour
		cutoff := time.Now().UTC().Add(-retention)

		log.InfoContext(ctx, "Starting scheduled detection-log prune...",
			"retention_days", deps.Config.Audit.RetentionDays, "cutoff", cutoff)
		startTime := time.Now()

		pruned, err := deps.Store.PruneEntriesBefore(ctx, cutoff)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "Detection-log prune task failed", "error", err, "duration", duration)

			return fmt.Errorf("detection-log prune failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled detection-log prune completed", "pruned", pruned, "duration", duration)
		return nil
	}
}
