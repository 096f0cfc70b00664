// Package repository holds the participants and winners served by the local
// raffle backend.
package repository

import (
	"context"
	"time"
)

// Participant is a registered raffle entrant or administrator.
type Participant struct {
	ID                string
	Email             string
	FullName          string
	Phone             string
	IsVerified        bool
	VerificationToken string
	VerifiedAt        *time.Time
	PasswordHash      []byte
	IsActive          bool
	IsAdmin           bool
	CreatedAt         time.Time
}

// CanParticipate reports whether p may be drawn.
func (p Participant) CanParticipate() bool {
	return p.IsVerified && p.IsActive && !p.IsAdmin
}

// Winner is one draw result with its participant resolved.
type Winner struct {
	ID          string
	Participant Participant
	DrawnAt     time.Time
	DrawnBy     *Participant
	Notified    bool
	NotifiedAt  *time.Time
	Prize       string
}

// Session is the token pair handed out on login.
type Session struct {
	Access  string
	Refresh string
}

// Query selects participants for the admin list.
type Query struct {
	// Search terms are matched case-insensitively against email, full name
	// and phone. Every term must match at least one field.
	Search     string
	IsVerified *bool
	Page       int
	PageSize   int
}

// Stats summarizes non-admin participants.
type Stats struct {
	Total    int
	Verified int
	Pending  int
	Eligible int
}

// Store provides read/write access to the raffle state.
type Store interface {
	// Register adds an unverified participant with a fresh verification token.
	Register(ctx context.Context, email, fullName, phone string) (Participant, error)
	// Verify marks the participant owning an unused token as verified.
	Verify(ctx context.Context, token string) (Participant, error)
	// SetPassword stores a password for a verified participant.
	SetPassword(ctx context.Context, token, password string) (Participant, error)
	// Login checks credentials and returns a session for administrators.
	Login(ctx context.Context, email, password string) (Participant, Session, error)
	// Authenticate resolves an access token to its participant.
	Authenticate(ctx context.Context, access string) (Participant, error)
	// CreateAdmin adds a verified administrator, or returns the existing one.
	CreateAdmin(ctx context.Context, email, fullName, password string) (Participant, error)
	// Participant looks a participant up by id.
	Participant(ctx context.Context, id string) (Participant, error)

	// Participants returns one page of non-admin participants, newest first,
	// and the total number of matches.
	Participants(ctx context.Context, q Query) ([]Participant, int, error)
	// Stats counts non-admin participants.
	Stats(ctx context.Context) Stats

	// Draw picks a random eligible participant and records the win.
	Draw(ctx context.Context, by Participant) (Winner, error)
	// MarkNotified flags a winner as notified.
	MarkNotified(ctx context.Context, winnerID string) (Winner, error)
	// Winner looks a winner up by id.
	Winner(ctx context.Context, id string) (Winner, error)
	// Winners returns one page of winners, newest first, and the total count.
	Winners(ctx context.Context, page, pageSize int) ([]Winner, int, error)
}
