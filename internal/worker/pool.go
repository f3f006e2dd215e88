package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/job-board/internal/worker/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop processes tasks until jobsChan is closed. In-flight work is not
// tied to ctx so a shutdown does not abort a half-applied increment.
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Debug("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for t := range w.jobsChan {
		err := w.processMessage(context.WithoutCancel(ctx), t.msg)

		if err != nil {
			requeue := shouldRequeue(err)
			w.logger.Error("View event processing failed",
				slog.String("worker_name", workerName),
				slog.Uint64("delivery_tag", t.msg.DeliveryTag),
				slog.Bool("requeue", requeue),
				slog.Any("error", err),
			)

			if nackErr := t.acker.Nack(t.msg.DeliveryTag, false, requeue); nackErr != nil {
				w.logger.Error("Failed to NACK message",
					slog.String("worker_name", workerName),
					slog.Uint64("delivery_tag", t.msg.DeliveryTag),
					slog.Any("error", nackErr),
				)
			}
			continue
		}

		if ackErr := t.acker.Ack(t.msg.DeliveryTag, false); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("worker_name", workerName),
				slog.Uint64("delivery_tag", t.msg.DeliveryTag),
				slog.Any("error", ackErr),
			)
		}
	}

	w.logger.Debug("Worker goroutine stopping - jobsChan closed",
		slog.String("worker_name", workerName),
	)
}

// shouldRequeue reports whether a failed message should go back on the queue
func shouldRequeue(err error) bool {
	if errors.Is(err, domain.ErrMaxRetriesExceeded) || errors.Is(err, domain.ErrInvalidPayload) {
		return false
	}

	var retryableErr *domain.RetryableError
	return errors.As(err, &retryableErr)
}
