// Package worker applies job view events published by the API service.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/job-board/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrDeliveriesClosed is returned by Start when the broker closes the delivery channel
var ErrDeliveriesClosed = errors.New("rabbitmq delivery channel closed")

// ViewStore persists view increments
type ViewStore interface {
	IncrementViews(ctx context.Context, jobIDs []string) (int64, error)
}

// Consumer is the part of the RabbitMQ client the worker consumes from
type Consumer interface {
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// Config holds worker configuration
type Config struct {
	Logger      *slog.Logger
	Store       ViewStore
	Consumer    Consumer
	WorkerID    string
	Concurrency int
	JobTimeout  time.Duration
}

// task pairs a decoded message with the acknowledger of its delivery
type task struct {
	msg   *domain.ViewMessage
	acker amqp.Acknowledger
}

// Worker consumes job.viewed events and increments view counters
type Worker struct {
	logger      *slog.Logger
	store       ViewStore
	consumer    Consumer
	workerID    string
	concurrency int
	jobTimeout  time.Duration

	jobsChan chan task
	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := max(cfg.Concurrency, 1)
	workerID := cfg.WorkerID
	if workerID == "" {
		workerID = "view-worker"
	}

	return &Worker{
		logger:      cfg.Logger,
		store:       cfg.Store,
		consumer:    cfg.Consumer,
		workerID:    workerID,
		concurrency: concurrency,
		jobTimeout:  cfg.JobTimeout,
		jobsChan:    make(chan task, concurrency),
		stopChan:    make(chan struct{}),
	}
}

// Start consumes until ctx is canceled, Stop is called, or the broker closes
// the delivery channel. Messages already handed to the pool are finished
// before Start returns.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("job_timeout", w.jobTimeout),
	)

	deliveries, err := w.consumer.Consume(w.workerID)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	w.spawnWorkerPool(ctx)

	err = w.startMessageDispatcher(ctx, deliveries)

	close(w.jobsChan)
	w.wg.Wait()

	w.logger.Info("Worker stopped", slog.String("worker_id", w.workerID))
	return err
}

// Stop asks the dispatcher to stop taking deliveries. It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info("Stopping worker", slog.String("worker_id", w.workerID))
		close(w.stopChan)
	})
}
