// Package queue provides typed work queues with two backends:
//
//   - MemoryQueue: a buffered channel. Nothing survives a restart.
//   - RedisQueue: a Redis list of JSON documents. Survives restarts and can
//     be drained by any replica.
//
// Both pair with a DeadLetterQueue that keeps items a worker gave up on.
package queue

import (
	"context"
	"time"
)

// Queue is a FIFO of T
type Queue[T any] interface {
	// Enqueue adds an item to the queue
	Enqueue(ctx context.Context, item T) error

	// Dequeue blocks until at least one item is available, then returns up
	// to maxItems without further blocking
	Dequeue(ctx context.Context, maxItems int) ([]T, error)

	// DequeueWithTimeout is Dequeue that gives up after timeout and returns
	// an empty slice
	DequeueWithTimeout(ctx context.Context, maxItems int, timeout time.Duration) ([]T, error)

	// Length returns the current queue length
	Length(ctx context.Context) (int, error)

	// Close shuts down the queue
	Close() error
}

// DeadLetterQueue keeps items that failed processing
type DeadLetterQueue[T any] interface {
	Add(ctx context.Context, item T, err error) error
	List(ctx context.Context, maxItems int) ([]DeadLetterItem[T], error)
	Remove(ctx context.Context, id string) error
	Close() error
}

// DeadLetterItem is a failed item with its last error
type DeadLetterItem[T any] struct {
	ID        string    `json:"id"`
	Item      T         `json:"item"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Config holds queue and worker configuration
type Config struct {
	// Name is the queue key suffix in Redis ("queue:<name>", "dlq:<name>")
	Name string

	// Capacity bounds the in-memory queue
	Capacity int

	// BatchSize is the maximum number of items a worker takes at once
	BatchSize int

	// BatchTimeout is how long a worker waits for the first item of a batch
	BatchTimeout time.Duration

	// MaxRetries is the number of retries after the first failed attempt
	MaxRetries int

	// RetryBackoff is the initial backoff, doubled on each retry
	RetryBackoff time.Duration
}

// DefaultConfig returns default queue configuration
func DefaultConfig(name string) *Config {
	return &Config{
		Name:         name,
		Capacity:     1000,
		BatchSize:    100,
		BatchTimeout: 5 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 1 * time.Second,
	}
}
