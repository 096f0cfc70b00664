package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	queue "github.com/okian/raffle/internal/adapters/mq/queue"
	worker "github.com/okian/raffle/internal/adapters/mq/worker"
	dedupe "github.com/okian/raffle/internal/domain/dedupe"
	model "github.com/okian/raffle/internal/domain/model"
	logging "github.com/okian/raffle/pkg/logger"
)

type mockQueue struct {
	items chan model.Notification
	once  sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{items: make(chan model.Notification, 10)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan model.Notification {
	return mq.items
}

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.items) })
	return nil
}

func (mq *mockQueue) add(kind model.NotificationKind, id string) {
	mq.items <- model.Notification{Kind: kind, SubjectID: id, EnqueuedAt: time.Now()}
}

type mockDeliverer struct {
	mu        sync.Mutex
	delivered map[string]model.NotificationKind
	failures  map[string]error
	calls     int
	delay     time.Duration
}

func newMockDeliverer() *mockDeliverer {
	return &mockDeliverer{
		delivered: make(map[string]model.NotificationKind),
		failures:  make(map[string]error),
	}
}

func (md *mockDeliverer) Deliver(_ context.Context, n model.Notification) error {
	if md.delay > 0 {
		time.Sleep(md.delay)
	}
	md.mu.Lock()
	defer md.mu.Unlock()
	md.calls++
	if err, ok := md.failures[n.SubjectID]; ok {
		return err
	}
	md.delivered[n.SubjectID] = n.Kind
	return nil
}

func (md *mockDeliverer) fail(id string, err error) {
	md.mu.Lock()
	defer md.mu.Unlock()
	md.failures[id] = err
}

func (md *mockDeliverer) count() int {
	md.mu.Lock()
	defer md.mu.Unlock()
	return len(md.delivered)
}

func (md *mockDeliverer) callCount() int {
	md.mu.Lock()
	defer md.mu.Unlock()
	return md.calls
}

func (md *mockDeliverer) kind(id string) (model.NotificationKind, bool) {
	md.mu.Lock()
	defer md.mu.Unlock()
	k, ok := md.delivered[id]
	return k, ok
}

// eventually polls cond for up to a second.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running InMemoryWorker", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		d := newMockDeliverer()
		w := worker.NewInMemoryWorker(q, d, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When notifications of both kinds arrive", func() {
			q.add(model.NotifyVerification, "p1")
			q.add(model.NotifyWinner, "w1")

			convey.Convey("Then each is handed to the deliverer", func() {
				convey.So(eventually(func() bool { return d.count() == 2 }), convey.ShouldBeTrue)
				kind, _ := d.kind("w1")
				convey.So(kind, convey.ShouldEqual, model.NotifyWinner)
			})
		})

		convey.Convey("When a delivery fails", func() {
			d.fail("p-bad", errors.New("smtp down"))
			q.add(model.NotifyVerification, "p-bad")
			q.add(model.NotifyVerification, "p-good")

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool { _, ok := d.kind("p-good"); return ok }), convey.ShouldBeTrue)
				_, ok := d.kind("p-bad")
				convey.So(ok, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			convey.Convey("Then it stops and a second call is harmless", func() {
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the queue is closed", func() {
			_ = q.Close()

			convey.Convey("Then the worker stops", func() {
				convey.So(eventually(func() bool {
					select {
					case <-w.Done():
						return true
					default:
						return false
					}
				}), convey.ShouldBeTrue)
			})
		})
	})
}

func TestWorkerDeduplication(t *testing.T) {
	convey.Convey("Given a worker sharing a deduper", t, func() {
		_ = logging.Init()

		q := newMockQueue()
		d := newMockDeliverer()
		seen := dedupe.NewInMemoryDeduper()
		w := worker.NewInMemoryWorker(q, d, worker.WithDeduper(seen))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When the same winner is queued twice", func() {
			q.add(model.NotifyWinner, "w1")
			q.add(model.NotifyWinner, "w1")
			q.add(model.NotifyWinner, "w2")
			_ = q.Close()

			convey.Convey("Then it is delivered once", func() {
				<-w.Done()
				convey.So(d.callCount(), convey.ShouldEqual, 2)
				convey.So(seen.Size(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a delivery fails", func() {
			d.fail("w3", errors.New("smtp down"))
			q.add(model.NotifyWinner, "w3")
			_ = q.Close()

			convey.Convey("Then the key is forgotten so it can be retried", func() {
				<-w.Done()
				convey.So(seen.Size(), convey.ShouldEqual, 0)
			})
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a pool reading a real queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(200))
		d := newMockDeliverer()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		convey.Convey("When no worker count is given", func() {
			pool := worker.NewPool(0, q, d)
			convey.So(pool.Size(), convey.ShouldEqual, 2)
		})

		convey.Convey("When many notifications are enqueued concurrently", func() {
			pool := worker.NewPool(4, q, d)
			pool.Start(ctx)

			var wg sync.WaitGroup
			errs := make(chan error, 100)
			for i := 0; i < 5; i++ {
				wg.Add(1)
				go func(producer int) {
					defer wg.Done()
					for j := 0; j < 20; j++ {
						errs <- q.Dispatch(ctx, model.Notification{
							Kind:      model.NotifyWinner,
							SubjectID: fmt.Sprintf("w-%d-%d", producer, j),
						})
					}
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				convey.So(err, convey.ShouldBeNil)
			}

			convey.Convey("Then shutdown drains every one of them", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer shutdownCancel()

				convey.So(pool.Shutdown(shutdownCtx), convey.ShouldBeNil)
				convey.So(d.count(), convey.ShouldEqual, 100)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When delivery outlasts the shutdown deadline", func() {
			d.delay = 200 * time.Millisecond
			pool := worker.NewPool(1, q, d)
			pool.Start(ctx)
			for i := 0; i < 5; i++ {
				convey.So(q.Dispatch(ctx, model.Notification{Kind: model.NotifyWinner, SubjectID: fmt.Sprintf("slow-%d", i)}), convey.ShouldBeNil)
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer shutdownCancel()
			err := pool.Shutdown(shutdownCtx)

			convey.Convey("Then an error reports the undrained worker", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
				convey.So(d.count(), convey.ShouldBeLessThan, 5)
			})
		})
	})
}
