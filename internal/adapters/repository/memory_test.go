package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestStore(opts ...Option) *MemoryStore {
	base := time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC)
	var tick int
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	opts = append([]Option{WithClock(clock), WithBcryptCost(bcrypt.MinCost)}, opts...)
	return NewMemoryStore(opts...)
}

func TestValidPhone(t *testing.T) {
	Convey("Given phone numbers", t, func() {
		So(ValidPhone("+51 999-888-777"), ShouldBeTrue)
		So(ValidPhone("999888777"), ShouldBeTrue)
		So(ValidPhone("+51 abc"), ShouldBeFalse)
		So(ValidPhone("+ -"), ShouldBeFalse)
		So(ValidPhone(""), ShouldBeFalse)
	})
}

func TestMemoryStore_Registration(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := newTestStore()

		Convey("When a participant registers", func() {
			p, err := s.Register(ctx, "ana@example.com", "Ana Torres", "+51 999")
			So(err, ShouldBeNil)

			Convey("Then they start unverified and active", func() {
				So(p.ID, ShouldNotBeEmpty)
				So(p.VerificationToken, ShouldNotBeEmpty)
				So(p.IsVerified, ShouldBeFalse)
				So(p.IsActive, ShouldBeTrue)
				So(p.CanParticipate(), ShouldBeFalse)
			})

			Convey("Then they can be looked up by id", func() {
				got, err := s.Participant(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got.Email, ShouldEqual, "ana@example.com")

				_, err = s.Participant(ctx, "missing")
				So(err, ShouldEqual, ErrNotFound)
			})

			Convey("Then the same email is rejected", func() {
				_, err := s.Register(ctx, "ana@example.com", "Other", "123")
				So(err, ShouldEqual, ErrEmailTaken)
			})

			Convey("Then verifying the token marks them verified once", func() {
				v, err := s.Verify(ctx, p.VerificationToken)
				So(err, ShouldBeNil)
				So(v.IsVerified, ShouldBeTrue)
				So(v.VerifiedAt, ShouldNotBeNil)
				So(v.CanParticipate(), ShouldBeTrue)

				_, err = s.Verify(ctx, p.VerificationToken)
				So(err, ShouldEqual, ErrInvalidToken)
			})

			Convey("Then setting a password before verification fails", func() {
				_, err := s.SetPassword(ctx, p.VerificationToken, "longenough")
				So(err, ShouldEqual, ErrNotVerified)
			})

			Convey("Then setting a password after verification succeeds", func() {
				_, err := s.Verify(ctx, p.VerificationToken)
				So(err, ShouldBeNil)
				withPassword, err := s.SetPassword(ctx, p.VerificationToken, "longenough")
				So(err, ShouldBeNil)
				So(bcrypt.CompareHashAndPassword(withPassword.PasswordHash, []byte("longenough")), ShouldBeNil)
			})
		})

		Convey("When the phone is malformed", func() {
			_, err := s.Register(ctx, "bob@example.com", "Bob", "call me")
			So(err, ShouldEqual, ErrInvalidPhone)
		})

		Convey("When verifying an unknown token", func() {
			_, err := s.Verify(ctx, "00000000-0000-0000-0000-000000000000")
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})
}

func TestMemoryStore_Login(t *testing.T) {
	Convey("Given a store with an admin and a participant", t, func() {
		ctx := context.Background()
		s := newTestStore()
		admin, err := s.CreateAdmin(ctx, "admin@example.com", "Admin", "s3cret-pass")
		So(err, ShouldBeNil)

		p, err := s.Register(ctx, "ana@example.com", "Ana", "123")
		So(err, ShouldBeNil)
		_, err = s.Verify(ctx, p.VerificationToken)
		So(err, ShouldBeNil)
		_, err = s.SetPassword(ctx, p.VerificationToken, "ana-password")
		So(err, ShouldBeNil)

		Convey("When the admin logs in", func() {
			user, session, err := s.Login(ctx, "admin@example.com", "s3cret-pass")

			Convey("Then a session resolving to the admin is issued", func() {
				So(err, ShouldBeNil)
				So(user.ID, ShouldEqual, admin.ID)
				So(session.Access, ShouldNotBeEmpty)
				So(session.Refresh, ShouldNotEqual, session.Access)

				who, err := s.Authenticate(ctx, session.Access)
				So(err, ShouldBeNil)
				So(who.IsAdmin, ShouldBeTrue)
			})
		})

		Convey("When the password is wrong", func() {
			_, _, err := s.Login(ctx, "admin@example.com", "nope")
			So(err, ShouldEqual, ErrInvalidCredentials)
		})

		Convey("When the email is unknown", func() {
			_, _, err := s.Login(ctx, "ghost@example.com", "whatever")
			So(err, ShouldEqual, ErrInvalidCredentials)
		})

		Convey("When a non-admin logs in with correct credentials", func() {
			_, _, err := s.Login(ctx, "ana@example.com", "ana-password")
			So(err, ShouldEqual, ErrNotAdmin)
		})

		Convey("When the admin is created again", func() {
			again, err := s.CreateAdmin(ctx, "admin@example.com", "Admin", "other")
			So(err, ShouldBeNil)
			So(again.ID, ShouldEqual, admin.ID)
		})

		Convey("When an unknown access token is presented", func() {
			_, err := s.Authenticate(ctx, "forged")
			So(err, ShouldEqual, ErrUnknownAccessToken)
		})
	})
}

func TestMemoryStore_Participants(t *testing.T) {
	Convey("Given fifteen participants and an admin", t, func() {
		ctx := context.Background()
		s := newTestStore()
		_, err := s.CreateAdmin(ctx, "admin@example.com", "Admin", "s3cret-pass")
		So(err, ShouldBeNil)
		for i := range 15 {
			p, err := s.Register(ctx, fmt.Sprintf("user%02d@example.com", i), fmt.Sprintf("User %02d", i), "555")
			So(err, ShouldBeNil)
			if i%3 == 0 {
				_, err = s.Verify(ctx, p.VerificationToken)
				So(err, ShouldBeNil)
			}
		}

		Convey("When listing the first page", func() {
			got, total, err := s.Participants(ctx, Query{})

			Convey("Then ten newest non-admins are returned", func() {
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 15)
				So(got, ShouldHaveLength, 10)
				So(got[0].Email, ShouldEqual, "user14@example.com")
				for _, p := range got {
					So(p.IsAdmin, ShouldBeFalse)
				}
			})
		})

		Convey("When listing the second page", func() {
			got, _, err := s.Participants(ctx, Query{Page: 2})
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 5)
			So(got[4].Email, ShouldEqual, "user00@example.com")
		})

		Convey("When the page is out of range", func() {
			_, _, err := s.Participants(ctx, Query{Page: 3})
			So(err, ShouldEqual, ErrInvalidPage)
			_, _, err = s.Participants(ctx, Query{Page: -1})
			So(err, ShouldEqual, ErrInvalidPage)
		})

		Convey("When filtering on verification", func() {
			verified := true
			got, total, err := s.Participants(ctx, Query{IsVerified: &verified})
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 5)
			for _, p := range got {
				So(p.IsVerified, ShouldBeTrue)
			}
		})

		Convey("When searching case-insensitively with two terms", func() {
			got, total, err := s.Participants(ctx, Query{Search: "USER 1"})
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 6)
			So(got[0].FullName, ShouldEqual, "User 14")
			So(got[5].FullName, ShouldEqual, "User 01")
		})

		Convey("When nothing matches", func() {
			got, total, err := s.Participants(ctx, Query{Search: "zzz"})
			So(err, ShouldBeNil)
			So(total, ShouldEqual, 0)
			So(got, ShouldBeEmpty)
		})

		Convey("When computing stats", func() {
			So(s.Stats(ctx), ShouldResemble, Stats{Total: 15, Verified: 5, Pending: 10, Eligible: 5})
		})
	})
}

func TestMemoryStore_Draw(t *testing.T) {
	Convey("Given a store with a deterministic picker", t, func() {
		ctx := context.Background()
		s := newTestStore(WithPicker(func(n int) int { return n - 1 }), WithPrize("A weekend away"))
		admin, err := s.CreateAdmin(ctx, "admin@example.com", "Admin", "s3cret-pass")
		So(err, ShouldBeNil)

		Convey("When nobody is eligible", func() {
			_, err := s.Register(ctx, "ana@example.com", "Ana", "123")
			So(err, ShouldBeNil)
			_, err = s.Draw(ctx, admin)
			So(err, ShouldEqual, ErrNoEligible)
		})

		Convey("When verified participants exist", func() {
			for _, email := range []string{"a@example.com", "b@example.com"} {
				p, err := s.Register(ctx, email, email, "123")
				So(err, ShouldBeNil)
				_, err = s.Verify(ctx, p.VerificationToken)
				So(err, ShouldBeNil)
			}

			w, err := s.Draw(ctx, admin)

			Convey("Then the picked participant wins and the admin is recorded", func() {
				So(err, ShouldBeNil)
				So(w.Participant.Email, ShouldEqual, "b@example.com")
				So(w.DrawnBy, ShouldNotBeNil)
				So(w.DrawnBy.ID, ShouldEqual, admin.ID)
				So(w.Prize, ShouldEqual, "A weekend away")
				So(w.Notified, ShouldBeFalse)
			})

			Convey("Then the winner can be marked notified", func() {
				n, err := s.MarkNotified(ctx, w.ID)
				So(err, ShouldBeNil)
				So(n.Notified, ShouldBeTrue)
				So(n.NotifiedAt, ShouldNotBeNil)

				stored, err := s.Winner(ctx, w.ID)
				So(err, ShouldBeNil)
				So(stored.Notified, ShouldBeTrue)

				_, err = s.MarkNotified(ctx, "missing")
				So(err, ShouldEqual, ErrNotFound)
				_, err = s.Winner(ctx, "missing")
				So(err, ShouldEqual, ErrNotFound)
			})

			Convey("Then winners are listed newest first", func() {
				second, err := s.Draw(ctx, Participant{})
				So(err, ShouldBeNil)
				So(second.DrawnBy, ShouldBeNil)

				got, total, err := s.Winners(ctx, 1, 10)
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 2)
				So(got[0].ID, ShouldEqual, second.ID)
				So(got[1].ID, ShouldEqual, w.ID)
			})
		})
	})
}

func TestPageBounds(t *testing.T) {
	Convey("Given page bounds", t, func() {
		lo, hi, err := pageBounds(0, 1, 10)
		So(err, ShouldBeNil)
		So(lo, ShouldEqual, 0)
		So(hi, ShouldEqual, 0)

		lo, hi, err = pageBounds(25, 3, 10)
		So(err, ShouldBeNil)
		So(lo, ShouldEqual, 20)
		So(hi, ShouldEqual, 25)

		_, _, err = pageBounds(25, 4, 10)
		So(err, ShouldEqual, ErrInvalidPage)

		lo, hi, err = pageBounds(3, 0, 0)
		So(err, ShouldBeNil)
		So(lo, ShouldEqual, 0)
		So(hi, ShouldEqual, 3)
	})
}
