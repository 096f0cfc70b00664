// Package worker delivers queued notifications in the background.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/raffle/internal/domain/dedupe"
	"github.com/okian/raffle/internal/domain/model"
	"github.com/okian/raffle/pkg/logger"
	"github.com/okian/raffle/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	workerShutdownTimeout = 5 * time.Second
)

// Deliverer sends one notification.
type Deliverer interface {
	Deliver(ctx context.Context, n model.Notification) error
}

// Queue defines how workers receive notifications.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Notification
}

// Worker consumes notifications until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	deliverer Deliverer
	deduper   dedupe.Deduper
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

var _ Worker = (*InMemoryWorker)(nil)

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, deliverer Deliverer, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		deliverer: deliverer,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop. It returns when ctx is cancelled, Shutdown is
// called, or the queue is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-w.shutdown:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case n, ok := <-items:
			if !ok {
				return
			}
			if err := w.process(ctx, n); err != nil {
				w.logger.Error(ctx, "notification delivery failed",
					logger.String("kind", string(n.Kind)),
					logger.String("subject_id", n.SubjectID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for its loop to exit.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) process(ctx context.Context, n model.Notification) error {
	start := time.Now()
	key := dedupe.Key(n)
	if w.deduper != nil && w.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordNotifyDelivery(string(n.Kind), "duplicate", 0)
		w.logger.Debug(ctx, "duplicate notification skipped", logger.String("key", key))
		return nil
	}

	err := w.deliverer.Deliver(ctx, n)
	result := "ok"
	if err != nil {
		result = "error"
		if w.deduper != nil {
			w.deduper.Unrecord(ctx, key)
		}
	}
	metrics.RecordNotifyDelivery(string(n.Kind), result, float64(time.Since(start).Milliseconds()))
	if err != nil {
		return fmt.Errorf("deliver %s notification for %s: %w", n.Kind, n.SubjectID, err)
	}
	w.logger.Debug(ctx, "notification delivered",
		logger.String("kind", string(n.Kind)),
		logger.String("subject_id", n.SubjectID),
		logger.Duration("queued_for", start.Sub(n.EnqueuedAt)),
	)
	return nil
}

// Pool manages multiple workers reading one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers. A count below one uses the
// default of two. opts apply to every worker.
func NewPool(workerCount int, queue Queue, deliverer Deliverer, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Named("notify-pool"),
	}
	for i := range workerCount {
		workerOpts := append([]Option{WithName("notify-worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(queue, deliverer, workerOpts...)
	}
	return pool
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
	metrics.UpdateNotifyWorkers(len(p.workers))
	p.logger.Info(ctx, "notification workers started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and lets workers drain what is left. Workers
// still busy when ctx expires are stopped without draining.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var timedOut int
	for i, worker := range p.workers {
		select {
		case <-worker.Done():
		case <-ctx.Done():
			timedOut++
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
			stopCtx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
			_ = worker.Shutdown(stopCtx)
			cancel()
		}
	}
	metrics.UpdateNotifyWorkers(0)

	if timedOut > 0 {
		return fmt.Errorf("%d notification workers did not drain: %w", timedOut, ctx.Err())
	}
	return nil
}
