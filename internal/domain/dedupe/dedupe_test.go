package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/raffle/internal/domain/dedupe"
	model "github.com/okian/raffle/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper()

		Convey("When a key is new", func() {
			seen := d.SeenAndRecord(ctx, "winner:w1")

			Convey("Then it is recorded", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key was already seen", func() {
			d.SeenAndRecord(ctx, "winner:w1")
			seen := d.SeenAndRecord(ctx, "winner:w1")

			Convey("Then it is reported as seen", func() {
				So(seen, ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "winner:w1")
			d.Unrecord(ctx, "winner:w1")
			d.Unrecord(ctx, "never-seen")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "winner:w1"), ShouldBeFalse)
			})
		})

		Convey("When many goroutines race on the same key", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(ctx, "verification:p1") {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one wins", func() {
				So(fresh, ShouldEqual, 1)
			})
		})
	})
}

func TestBoundedDeduper(t *testing.T) {
	Convey("Given a deduper bounded to three keys", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

		for i := 1; i <= 4; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}

		Convey("Then the oldest key is evicted", func() {
			So(d.Size(), ShouldEqual, 3)
			So(d.SeenAndRecord(ctx, "k4"), ShouldBeTrue)
			So(d.SeenAndRecord(ctx, "k1"), ShouldBeFalse)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		ctx := context.Background()
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 20000; i++ {
			d.SeenAndRecord(ctx, fmt.Sprintf("k%d", i))
		}
		So(d.Size(), ShouldEqual, 20000)
	})
}

func TestKey(t *testing.T) {
	Convey("Given a notification", t, func() {
		n := model.Notification{Kind: model.NotifyWinner, SubjectID: "w1"}
		So(dedupe.Key(n), ShouldEqual, "winner:w1")
	})
}
