package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSessionFlushTask creates the task that periodically writes in-memory
// sessions to the database, bounding the window of conversation state lost
// on an unclean shutdown.
func newSessionFlushTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "session_flush")

	return func(ctx context.Context) error {
		start := time.Now()

		flushed, err := deps.Sessions.FlushAll(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Session flush task failed", "flushed", flushed, "error", err, "duration", time.Since(start))
			return fmt.Errorf("session flush failed: %w", err)
		}

		log.InfoContext(ctx, "Session flush task completed", "flushed", flushed, "duration", time.Since(start))
		return nil
	}
}
