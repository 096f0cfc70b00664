// Package queue holds notifications between the HTTP handlers that produce
// them and the workers that deliver them.
package queue

import (
	"context"
	"sync"

	"github.com/okian/raffle/internal/domain/model"
	"github.com/okian/raffle/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1000
	defaultBufferSize    = 1000
)

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a notification to the queue.
	// Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, n model.Notification) bool

	// Dequeue returns a channel that receives notifications as they arrive.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan model.Notification

	// Len returns the current number of queued notifications.
	Len(ctx context.Context) int

	// Close stops accepting notifications and closes the dequeue channel.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items      chan model.Notification
	capacity   int
	bufferSize int
	mu         sync.RWMutex
	closed     bool
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	for _, opt := range opts {
		opt(q)
	}
	q.bufferSize = max(q.bufferSize, q.capacity)
	q.items = make(chan model.Notification, q.bufferSize)

	metrics.UpdateNotifyQueue(0, q.capacity)
	return q
}

// Enqueue adds a notification to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n model.Notification) bool {
	return q.Dispatch(ctx, n) == nil
}

// Dispatch enqueues n, reporting why it was refused.
func (q *InMemoryQueue) Dispatch(ctx context.Context, n model.Notification) error {
	kind := string(n.Kind)

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordNotifyEnqueue(kind, "closed")
		return ErrClosed
	}
	if len(q.items) >= q.capacity {
		metrics.RecordNotifyEnqueue(kind, "full")
		return ErrFull
	}

	select {
	case q.items <- n:
		metrics.RecordNotifyEnqueue(kind, "ok")
		metrics.UpdateNotifyQueue(len(q.items), q.capacity)
		return nil
	case <-ctx.Done():
		metrics.RecordNotifyEnqueue(kind, "cancelled")
		return ctx.Err()
	default:
		metrics.RecordNotifyEnqueue(kind, "full")
		return ErrFull
	}
}

// Dequeue returns a channel that receives notifications as they arrive.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Notification {
	out := make(chan model.Notification)
	go func() {
		defer close(out)
		for n := range q.items {
			select {
			case out <- n:
				metrics.UpdateNotifyQueue(len(q.items), q.capacity)
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued notifications.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.items)
	metrics.UpdateNotifyQueue(size, q.capacity)
	return size
}

// Close stops accepting notifications. Queued items remain readable.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
