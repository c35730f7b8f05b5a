package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask creates the task that runs periodic database
// maintenance (VACUUM and query-planner statistics refresh).
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled SQL maintenance task...")
		start := time.Now()

		err := deps.Store.RunSQLMaintenance(ctx)
		duration := time.Since(start)

		if err != nil {
			log.ErrorContext(ctx, "SQL maintenance task failed", "error", err, "duration", duration)
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled SQL maintenance task completed successfully", "duration", duration)
		return nil
	}
}
