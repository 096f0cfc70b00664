package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/raffle/internal/adapters/http/api"
	"github.com/okian/raffle/internal/adapters/mq/queue"
	"github.com/okian/raffle/internal/adapters/mq/worker"
	"github.com/okian/raffle/internal/adapters/repository"
	"github.com/okian/raffle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQueuedNotifications(t *testing.T) {
	Convey("Given an API whose notifications go through a worker pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := repository.NewMemoryStore(repository.WithBcryptCost(bcrypt.MinCost))
		_, err := store.CreateAdmin(ctx, adminEmail, "Admin", adminPassword)
		So(err, ShouldBeNil)

		notifier := &recordingNotifier{}
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		pool := worker.NewPool(1, q, api.NewDeliverer(store, notifier))
		pool.Start(ctx)

		f := &fixture{store: store, notifier: notifier}
		f.srv = httptest.NewServer(api.NewServer(store, api.WithNotifier(notifier), api.WithDispatcher(q)))
		defer f.srv.Close()

		Convey("When a participant registers", func() {
			status, _, _ := f.do(http.MethodPost, "/participants/register/", "", `{"email": "q@example.com", "full_name": "Queued", "phone": "123"}`)
			So(status, ShouldEqual, http.StatusCreated)

			Convey("Then the verification message arrives in the background", func() {
				So(waitFor(func() bool { return notifier.lastToken() != "" }), ShouldBeTrue)
			})
		})

		Convey("When a winner is drawn", func() {
			status, _, _ := f.do(http.MethodPost, "/participants/register/", "", `{"email": "q@example.com", "full_name": "Queued", "phone": "123"}`)
			So(status, ShouldEqual, http.StatusCreated)
			So(waitFor(func() bool { return notifier.lastToken() != "" }), ShouldBeTrue)
			status, _, _ = f.do(http.MethodPost, "/participants/verify-email/", "", `{"token": "`+notifier.lastToken()+`"}`)
			So(status, ShouldEqual, http.StatusOK)

			status, body, _ := f.do(http.MethodPost, "/admin/winners/draw/", f.adminToken(), "")
			So(status, ShouldEqual, http.StatusCreated)
			id := body["winner"].(map[string]any)["id"].(string)

			Convey("Then the worker marks the winner notified", func() {
				So(waitFor(func() bool {
					w, err := store.Winner(ctx, id)
					return err == nil && w.Notified
				}), ShouldBeTrue)
				So(notifier.winnerCount(), ShouldEqual, 1)
			})
		})

		Convey("When the queue is shut down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(ctx, time.Second)
			defer shutdownCancel()
			So(pool.Shutdown(shutdownCtx), ShouldBeNil)

			Convey("Then registration still succeeds", func() {
				status, _, _ := f.do(http.MethodPost, "/participants/register/", "", `{"email": "late@example.com", "full_name": "Late", "phone": "123"}`)
				So(status, ShouldEqual, http.StatusCreated)
				So(notifier.lastToken(), ShouldBeEmpty)
			})
		})
	})
}

func TestDeliverer(t *testing.T) {
	Convey("Given a deliverer over an empty store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithBcryptCost(bcrypt.MinCost))
		d := api.NewDeliverer(store, &recordingNotifier{})

		Convey("When the subject does not exist", func() {
			err := d.Deliver(ctx, model.Notification{Kind: model.NotifyVerification, SubjectID: "missing"})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When the kind is unknown", func() {
			err := d.Deliver(ctx, model.Notification{Kind: "sms", SubjectID: "x"})
			So(errors.Is(err, api.ErrUnknownNotification), ShouldBeTrue)
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
