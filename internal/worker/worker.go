package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cuongbtq/contractor-ledger/internal/worker/domain"
)

// Broker is the consuming half of the RabbitMQ client.
type Broker interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// EventStore persists ledger events.
type EventStore interface {
	RecordEvent(ctx context.Context, event *domain.LedgerEvent) (bool, error)
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Broker        Broker
	Store         EventStore
	WorkerID      string
	QueueName     string
	Concurrency   int
	PrefetchCount int
	EventTimeout  time.Duration
}

// Worker consumes ledger events and records them in the audit table
type Worker struct {
	logger        *slog.Logger
	broker        Broker
	store         EventStore
	workerID      string
	queueName     string
	concurrency   int
	prefetchCount int
	eventTimeout  time.Duration

	eventsChan chan *domain.EventMessage
	wg         sync.WaitGroup
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Worker{
		logger:        cfg.Logger,
		broker:        cfg.Broker,
		store:         cfg.Store,
		workerID:      cfg.WorkerID,
		queueName:     cfg.QueueName,
		concurrency:   concurrency,
		prefetchCount: cfg.PrefetchCount,
		eventTimeout:  cfg.EventTimeout,
		eventsChan:    make(chan *domain.EventMessage),
		stopChan:      make(chan struct{}),
	}
}

// Start consumes until ctx is canceled or the delivery channel closes.
// In-flight events keep running after Start returns; call Stop to wait for them.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("event_timeout", w.eventTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return err
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)
	close(w.eventsChan)

	return nil
}

// Stop waits for the pool to drain. Workers still busy after ctx expires are
// abandoned; their deliveries are redelivered once the channel closes.
func (w *Worker) Stop(ctx context.Context) error {
	w.logger.Info("Stopping worker...")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("Worker stopped")
		return nil
	case <-ctx.Done():
		w.stopOnce.Do(func() { close(w.stopChan) })
		w.logger.Warn("Worker stop timed out")
		return ctx.Err()
	}
}
