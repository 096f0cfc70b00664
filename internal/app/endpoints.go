package service

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/raffle/internal/domain/model"
)

// Operation names one API binding.
type Operation string

// Bound operations.
const (
	OpRegisterParticipant Operation = "register_participant"
	OpVerifyEmail         Operation = "verify_email"
	OpSetPassword         Operation = "set_password"
	OpLoginAdmin          Operation = "login_admin"
	OpListParticipants    Operation = "list_participants"
	OpStats               Operation = "stats"
	OpDrawWinner          Operation = "draw_winner"
	OpListWinners         Operation = "list_winners"
)

// Endpoint is one row of the binding table.
type Endpoint struct {
	Method string
	Path   string
}

var endpoints = map[Operation]Endpoint{
	OpRegisterParticipant: {http.MethodPost, "/participants/register/"},
	OpVerifyEmail:         {http.MethodPost, "/participants/verify-email/"},
	OpSetPassword:         {http.MethodPost, "/participants/set-password/"},
	OpLoginAdmin:          {http.MethodPost, "/auth/login/"},
	OpListParticipants:    {http.MethodGet, "/admin/participants/"},
	OpStats:               {http.MethodGet, "/admin/participants/stats/"},
	OpDrawWinner:          {http.MethodPost, "/admin/winners/draw/"},
	OpListWinners:         {http.MethodGet, "/admin/winners/"},
}

// Lookup returns the endpoint bound to op.
func Lookup(op Operation) (Endpoint, bool) {
	ep, ok := endpoints[op]
	return ep, ok
}

// participantQuery encodes f in the fixed order search, is_verified, page.
// url.Values is not used because its Encode sorts keys.
func participantQuery(f model.ParticipantFilter) string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, "search="+formEscape(f.Search))
	}
	if f.IsVerified != nil {
		parts = append(parts, "is_verified="+strconv.FormatBool(*f.IsVerified))
	}
	if f.Page != 0 {
		parts = append(parts, "page="+strconv.Itoa(f.Page))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

// formEscape applies the application/x-www-form-urlencoded byte serializer
// browsers use for URLSearchParams. Unlike url.QueryEscape it keeps '*' and
// escapes '~'.
func formEscape(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9',
			c == '*', c == '-', c == '.', c == '_':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
