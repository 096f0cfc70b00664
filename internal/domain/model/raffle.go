// Package model holds the request and response shapes of the raffle API.
package model

import "time"

// RegistrationRequest is the body of POST /participants/register/.
type RegistrationRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// VerifyEmailRequest is the body of POST /participants/verify-email/.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// SetPasswordRequest is the body of POST /participants/set-password/.
type SetPasswordRequest struct {
	VerificationToken string `json:"verification_token"`
	Password          string `json:"password"`
	PasswordConfirm   string `json:"password_confirm"`
}

// LoginRequest is the body of POST /auth/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ParticipantFilter narrows GET /admin/participants/. Zero values are omitted
// from the query string; IsVerified is omitted only when nil.
type ParticipantFilter struct {
	Search     string
	IsVerified *bool
	Page       int
}

// RegisteredParticipant is the short participant echo returned on registration.
type RegisteredParticipant struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// RegistrationResponse is returned by a successful registration.
type RegistrationResponse struct {
	Message     string                `json:"message"`
	Participant RegisteredParticipant `json:"participant"`
}

// Participant is the full participant representation.
type Participant struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	Phone          string     `json:"phone"`
	IsVerified     bool       `json:"is_verified"`
	VerifiedAt     *time.Time `json:"verified_at"`
	CreatedAt      time.Time  `json:"created_at"`
	CanParticipate bool       `json:"can_participate"`
}

// ParticipantResponse is returned by email verification and password setting.
type ParticipantResponse struct {
	Message     string      `json:"message"`
	Participant Participant `json:"participant"`
}

// Tokens carries the credentials issued on login.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// User is the authenticated account returned on login.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoginResponse is returned by a successful admin login.
type LoginResponse struct {
	Message string `json:"message"`
	Tokens  Tokens `json:"tokens"`
	User    User   `json:"user"`
}

// ParticipantSummary is one row of the admin participant list.
type ParticipantSummary struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	Phone      string    `json:"phone"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	Status     string    `json:"status"`
}

// Page is a page-number paginated list.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Stats summarizes raffle participation.
type Stats struct {
	TotalParticipants int `json:"total_participants"`
	Verified          int `json:"verified"`
	Pending           int `json:"pending"`
	EligibleForDraw   int `json:"eligible_for_draw"`
}

// Winner is a drawn participant.
type Winner struct {
	ID               string     `json:"id"`
	Participant      string     `json:"participant"`
	ParticipantName  string     `json:"participant_name"`
	ParticipantEmail string     `json:"participant_email"`
	ParticipantPhone string     `json:"participant_phone"`
	DrawnAt          time.Time  `json:"drawn_at"`
	DrawnBy          *string    `json:"drawn_by"`
	DrawnByName      string     `json:"drawn_by_name,omitempty"`
	Notified         bool       `json:"notified"`
	NotifiedAt       *time.Time `json:"notified_at"`
	PrizeDescription string     `json:"prize_description"`
}

// DrawResponse is returned by a successful draw.
type DrawResponse struct {
	Message string `json:"message"`
	Winner  Winner `json:"winner"`
}

// Participant status labels shown in the admin list.
const (
	StatusPending  = "Pending verification"
	StatusVerified = "Verified"
)

// DefaultPrize is the prize recorded on every drawn winner.
const DefaultPrize = "Two-night all-inclusive stay for a couple"
