package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/okian/raffle/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSiteHandler(t *testing.T) {
	Convey("Given the default page metadata", t, func() {
		ctx := context.Background()
		meta := config.New().Site
		r := chi.NewRouter()
		Register(ctx, r, meta)

		Convey("When requesting /", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Convey("Then the head carries every configured field", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "text/html; charset=utf-8")
				body := w.Body.String()
				So(body, ShouldContainSubstring, `<meta charset="utf-8">`)
				So(body, ShouldContainSubstring, `<meta name="viewport" content="width=device-width, initial-scale=1">`)
				So(body, ShouldContainSubstring, `<link rel="icon" type="image/x-icon" href="/favicon.ico">`)
				So(body, ShouldContainSubstring, "<title>Valentine&#39;s Raffle - CTS Turismo</title>")
			})
		})

		Convey("When requesting another path", func() {
			req := httptest.NewRequest(http.MethodGet, "/some-asset", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRender(t *testing.T) {
	Convey("Given metadata with markup in it", t, func() {
		body, err := Render(config.Site{Title: "<b>x</b>", Charset: "utf-8"})

		Convey("Then it is escaped", func() {
			So(err, ShouldBeNil)
			So(string(body), ShouldContainSubstring, "<title>&lt;b&gt;x&lt;/b&gt;</title>")
		})
	})
}
