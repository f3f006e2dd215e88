package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/job-board/internal/worker/domain"
)

// processMessage applies one view event. A first failure is retryable; a
// failure on a redelivered message is final.
func (w *Worker) processMessage(ctx context.Context, msg *domain.ViewMessage) error {
	jobCtx := ctx
	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	updated, err := w.store.IncrementViews(jobCtx, msg.JobIDs)
	if err != nil {
		if msg.Redelivered {
			return fmt.Errorf("%w: %v", domain.ErrMaxRetriesExceeded, err)
		}
		return domain.NewRetryableError(fmt.Errorf("failed to increment views: %w", err))
	}

	w.logger.Debug("Job views incremented",
		slog.Int("job_count", len(msg.JobIDs)),
		slog.Int64("updated", updated),
		slog.Time("recorded_at", msg.RecordedAt),
	)

	return nil
}
