package audit

import (
	"context"
	"fmt"
	"time"

	"embedding_admin/internal/logging"
	"embedding_admin/internal/queue"
)

// drainTimeout bounds the flush of queued events on Stop
const drainTimeout = 10 * time.Second

// Worker moves events from the queue to a Writer in batches
type Worker struct {
	queue       queue.Queue[Event]
	dlq         queue.DeadLetterQueue[Event]
	writer      Writer
	config      *queue.Config
	logger      *logging.Logger
	sleep       func(time.Duration)
	stopChan    chan struct{}
	stoppedChan chan struct{}
}

// NewWorker creates a worker. dlq may be nil, in which case events that
// exhaust their retries are dropped with an error log.
func NewWorker(q queue.Queue[Event], dlq queue.DeadLetterQueue[Event], writer Writer, config *queue.Config) *Worker {
	if config == nil {
		config = queue.DefaultConfig("audit")
	}

	return &Worker{
		queue:       q,
		dlq:         dlq,
		writer:      writer,
		config:      config,
		logger:      logging.NewLogger("audit-worker"),
		sleep:       time.Sleep,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Start starts the worker goroutine
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop stops the worker after flushing what is already queued
func (w *Worker) Stop() error {
	close(w.stopChan)
	<-w.stoppedChan
	return nil
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.stoppedChan)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Audit worker stopping")
			w.drain()
			return
		case <-ctx.Done():
			w.logger.Info("Audit worker context cancelled")
			w.drain()
			return
		default:
			w.processBatch(ctx)
		}
	}
}

// processBatch writes one batch. It returns the number of events taken.
func (w *Worker) processBatch(ctx context.Context) int {
	events, err := w.queue.DequeueWithTimeout(ctx, w.config.BatchSize, w.config.BatchTimeout)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("Failed to dequeue audit events", "error", err)
			w.sleep(time.Second)
		}
		return 0
	}

	if len(events) == 0 {
		return 0
	}

	w.logger.Debug("Processing audit batch", "count", len(events))
	if err := w.writeWithRetry(ctx, events); err != nil {
		w.logger.Error("Failed to write audit batch", "count", len(events), "error", err)
	}
	return len(events)
}

func (w *Worker) writeWithRetry(ctx context.Context, events []Event) error {
	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := w.config.RetryBackoff * time.Duration(1<<uint(attempt-1))
			w.logger.Debug("Retrying audit batch", "attempt", attempt, "backoff", backoff)
			w.sleep(backoff)
		}

		key, err := w.writer.WriteBatch(ctx, events)
		if err == nil {
			w.logger.Debug("Audit batch written", "key", key, "count", len(events))
			return nil
		}
		lastErr = err
		w.logger.Warn("Audit batch write failed", "attempt", attempt, "error", err)
	}

	if w.dlq != nil {
		for _, ev := range events {
			if err := w.dlq.Add(ctx, ev, lastErr); err != nil {
				w.logger.Error("Failed to add to dead letter queue", "id", ev.ID, "error", err)
			}
		}
		w.logger.Warn("Audit batch moved to DLQ", "count", len(events), "error", lastErr)
	}

	return fmt.Errorf("%w: %v", queue.ErrMaxRetriesExceeded, lastErr)
}

func (w *Worker) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()

	for ctx.Err() == nil {
		events, err := w.queue.DequeueWithTimeout(ctx, w.config.BatchSize, 10*time.Millisecond)
		if err != nil || len(events) == 0 {
			return
		}
		if err := w.writeWithRetry(ctx, events); err != nil {
			w.logger.Error("Failed to flush audit batch", "count", len(events), "error", err)
		}
	}
}

// QueueLength returns the number of events waiting
func (w *Worker) QueueLength(ctx context.Context) (int, error) {
	return w.queue.Length(ctx)
}

// DeadLetters returns events that exhausted their retries
func (w *Worker) DeadLetters(ctx context.Context, maxItems int) ([]queue.DeadLetterItem[Event], error) {
	if w.dlq == nil {
		return nil, fmt.Errorf("dead letter queue not configured")
	}
	return w.dlq.List(ctx, maxItems)
}

// RetryDeadLetter re-enqueues a dead-lettered event
func (w *Worker) RetryDeadLetter(ctx context.Context, id string) error {
	if w.dlq == nil {
		return fmt.Errorf("dead letter queue not configured")
	}

	items, err := w.dlq.List(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to list dead letter items: %w", err)
	}

	for _, dl := range items {
		if dl.ID != id {
			continue
		}
		if err := w.queue.Enqueue(ctx, dl.Item); err != nil {
			return fmt.Errorf("failed to re-enqueue item: %w", err)
		}
		if err := w.dlq.Remove(ctx, id); err != nil {
			return fmt.Errorf("failed to remove from DLQ: %w", err)
		}
		return nil
	}

	return queue.ErrItemNotFound
}
