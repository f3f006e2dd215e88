// Package views records job views outside the request path. Every job
// returned by a read is counted once, after the response payload is built,
// and a failed increment never fails the read.
package views

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/job-board/shared/events"
)

// DefaultTimeout bounds one detached increment
const DefaultTimeout = 5 * time.Second

// Recorder dispatches view increments
type Recorder interface {
	// Record schedules one view for each id and returns immediately
	Record(ids []string)

	// Close waits for in-flight increments
	Close() error
}

// Incrementer is the part of the Job Store a DirectRecorder needs
type Incrementer interface {
	IncrementViews(ctx context.Context, ids []string) error
}

// Publisher is the part of the RabbitMQ client a QueueRecorder needs
type Publisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// DirectRecorder increments views on the store from a background goroutine
type DirectRecorder struct {
	store   Incrementer
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDirectRecorder creates a DirectRecorder. A non-positive timeout uses DefaultTimeout.
func NewDirectRecorder(store Incrementer, timeout time.Duration, logger *slog.Logger) *DirectRecorder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DirectRecorder{
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

func (r *DirectRecorder) Record(ids []string) {
	if len(ids) == 0 {
		return
	}
	ids = append([]string(nil), ids...)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.store.IncrementViews(ctx, ids); err != nil {
			r.logger.Error("Failed to increment job views",
				slog.Any("job_ids", ids),
				slog.Any("error", err),
			)
		}
	}()
}

func (r *DirectRecorder) Close() error {
	r.wg.Wait()
	return nil
}

// QueueRecorder publishes view events for the worker service to apply
type QueueRecorder struct {
	publisher Publisher
	timeout   time.Duration
	logger    *slog.Logger
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewQueueRecorder creates a QueueRecorder. A non-positive timeout uses DefaultTimeout.
func NewQueueRecorder(publisher Publisher, timeout time.Duration, logger *slog.Logger) *QueueRecorder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &QueueRecorder{
		publisher: publisher,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *QueueRecorder) Record(ids []string) {
	if len(ids) == 0 {
		return
	}

	body, err := events.JobsViewed{
		JobIDs:     append([]string(nil), ids...),
		RecordedAt: r.now().UTC(),
	}.Encode()
	if err != nil {
		r.logger.Error("Failed to encode view event",
			slog.Any("job_ids", ids),
			slog.Any("error", err),
		)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.publisher.PublishWithRetry(ctx, body, events.ContentTypeJSON); err != nil {
			r.logger.Error("Failed to publish view event",
				slog.Int("job_count", len(ids)),
				slog.Any("error", err),
			)
		}
	}()
}

func (r *QueueRecorder) Close() error {
	r.wg.Wait()
	return nil
}
