package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/job-board/internal/worker/domain"
	"github.com/cuongbtq/job-board/shared/events"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// startMessageDispatcher decodes deliveries and hands them to the worker pool
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return nil

		case <-w.stopChan:
			w.logger.Info("Message dispatcher stopped - stop requested")
			return nil

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return ErrDeliveriesClosed
			}

			msg, err := parseDelivery(delivery)
			if err != nil {
				w.logger.Error("Dropping invalid view event",
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
					slog.String("body", string(delivery.Body)),
					slog.Any("error", err),
				)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK invalid message",
						slog.Any("error", nackErr),
					)
				}
				continue
			}

			select {
			case w.jobsChan <- task{msg: msg, acker: delivery.Acknowledger}:
				w.logger.Debug("View event dispatched to worker pool",
					slog.Int("job_count", len(msg.JobIDs)),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.requeue(delivery)
				return nil
			case <-w.stopChan:
				w.requeue(delivery)
				return nil
			}
		}
	}
}

// requeue returns an undispatched delivery to the queue on shutdown
func (w *Worker) requeue(delivery amqp.Delivery) {
	w.logger.Info("Message dispatcher stopped while dispatching, requeueing",
		slog.Uint64("delivery_tag", delivery.DeliveryTag),
	)
	if err := delivery.Nack(false, true); err != nil {
		w.logger.Error("Failed to NACK message on shutdown",
			slog.Any("error", err),
		)
	}
}

// parseDelivery decodes a job.viewed body and keeps only well-formed job ids
func parseDelivery(delivery amqp.Delivery) (*domain.ViewMessage, error) {
	event, err := events.DecodeJobsViewed(delivery.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	ids := make([]string, 0, len(event.JobIDs))
	for _, id := range event.JobIDs {
		if _, err := uuid.Parse(id); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no valid job ids", domain.ErrInvalidPayload)
	}

	return &domain.ViewMessage{
		JobIDs:      ids,
		RecordedAt:  event.RecordedAt,
		DeliveryTag: delivery.DeliveryTag,
		Redelivered: delivery.Redelivered,
	}, nil
}
