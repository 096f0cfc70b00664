package model_test

import (
	"encoding/json"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	model "github.com/okian/raffle/internal/domain/model"
)

func TestWinnerDecoding(t *testing.T) {
	convey.Convey("Given a winner drawn by a deleted admin", t, func() {
		raw := `{"id": "w1", "participant": "p1", "participant_name": "Ana", "drawn_at": "2025-02-14T10:00:00Z", "drawn_by": null, "notified": false, "notified_at": null}`

		convey.Convey("When it is decoded", func() {
			var w model.Winner
			err := json.Unmarshal([]byte(raw), &w)

			convey.Convey("Then nullable fields stay nil", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.DrawnBy, convey.ShouldBeNil)
				convey.So(w.NotifiedAt, convey.ShouldBeNil)
				convey.So(w.DrawnAt.Year(), convey.ShouldEqual, 2025)
			})
		})

		convey.Convey("When it is encoded without a drawer name", func() {
			out, err := json.Marshal(model.Winner{ID: "w1"})

			convey.Convey("Then drawn_by_name is omitted and drawn_by is null", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(out), convey.ShouldNotContainSubstring, "drawn_by_name")
				convey.So(string(out), convey.ShouldContainSubstring, `"drawn_by":null`)
			})
		})
	})
}

func TestPageDecoding(t *testing.T) {
	convey.Convey("Given a paginated participant list", t, func() {
		raw := `{"count": 11, "next": "http://localhost:8000/api/admin/participants/?page=2", "previous": null,
			"results": [{"id": "p1", "email": "ana@example.com", "is_verified": true, "status": "Verified"}]}`

		var page model.Page[model.ParticipantSummary]
		err := json.Unmarshal([]byte(raw), &page)

		convey.Convey("Then links and rows are decoded", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(page.Count, convey.ShouldEqual, 11)
			convey.So(*page.Next, convey.ShouldEndWith, "?page=2")
			convey.So(page.Previous, convey.ShouldBeNil)
			convey.So(page.Results, convey.ShouldHaveLength, 1)
			convey.So(page.Results[0].Status, convey.ShouldEqual, model.StatusVerified)
		})
	})
}
