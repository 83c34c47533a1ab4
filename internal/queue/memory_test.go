package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

func TestMemoryQueue_EnqueueDequeue(t *testing.T) {
	q := NewMemoryQueue[testItem](DefaultConfig("test"))
	defer q.Close()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(ctx, testItem{ID: i}))
	}

	n, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	items, err := q.Dequeue(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 2, items[1].ID)

	items, err = q.Dequeue(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].ID)
}

func TestMemoryQueue_DequeueWithTimeout(t *testing.T) {
	q := NewMemoryQueue[testItem](DefaultConfig("test"))
	defer q.Close()
	ctx := context.Background()

	start := time.Now()
	items, err := q.DequeueWithTimeout(ctx, 5, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Enqueue(ctx, testItem{ID: 7})
	}()

	items, err = q.DequeueWithTimeout(ctx, 5, time.Second)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].ID)
}

func TestMemoryQueue_ContextCancelled(t *testing.T) {
	q := NewMemoryQueue[testItem](DefaultConfig("test"))
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryQueue_FullQueueRespectsContext(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.Capacity = 1
	q := NewMemoryQueue[testItem](cfg)
	defer q.Close()

	require.NoError(t, q.Enqueue(context.Background(), testItem{ID: 1}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, testItem{ID: 2}), context.DeadlineExceeded)
}

func TestMemoryQueue_Close(t *testing.T) {
	q := NewMemoryQueue[testItem](DefaultConfig("test"))
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, testItem{ID: 1}))
	require.NoError(t, q.Close())
	require.NoError(t, q.Close(), "double close is safe")

	assert.ErrorIs(t, q.Enqueue(ctx, testItem{ID: 2}), ErrQueueClosed)

	// buffered items survive Close
	items, err := q.Dequeue(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = q.Dequeue(ctx, 10)
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestMemoryQueue_CloseUnblocksDequeue(t *testing.T) {
	q := NewMemoryQueue[testItem](DefaultConfig("test"))

	errCh := make(chan error, 1)
	go func() {
		_, err := q.Dequeue(context.Background(), 1)
		errCh <- err
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after Close")
	}
}

func TestMemoryQueue_Concurrent(t *testing.T) {
	q := NewMemoryQueue[testItem](DefaultConfig("test"))
	defer q.Close()
	ctx := context.Background()

	const producers, perProducer = 5, 20
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(ctx, testItem{ID: p*perProducer + i})
			}
		}(p)
	}
	wg.Wait()

	seen := map[int]bool{}
	for len(seen) < producers*perProducer {
		items, err := q.DequeueWithTimeout(ctx, 16, time.Second)
		require.NoError(t, err)
		require.NotEmpty(t, items)
		for _, it := range items {
			seen[it.ID] = true
		}
	}
	assert.Len(t, seen, producers*perProducer)
}

func TestMemoryDeadLetterQueue(t *testing.T) {
	dlq := NewMemoryDeadLetterQueue[testItem]()
	ctx := context.Background()

	require.NoError(t, dlq.Add(ctx, testItem{ID: 1}, errors.New("first")))
	require.NoError(t, dlq.Add(ctx, testItem{ID: 2}, errors.New("second")))

	items, err := dlq.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Item.ID)
	assert.Equal(t, "first", items[0].Error)
	assert.NotEmpty(t, items[0].ID)

	limited, err := dlq.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	require.NoError(t, dlq.Remove(ctx, items[0].ID))
	assert.ErrorIs(t, dlq.Remove(ctx, items[0].ID), ErrItemNotFound)

	items, _ = dlq.List(ctx, 0)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Item.ID)

	require.NoError(t, dlq.Close())
	assert.ErrorIs(t, dlq.Add(ctx, testItem{}, errors.New("x")), ErrQueueClosed)
}
