package repository

import "errors"

// Sentinel kinds for raffle store errors.
var (
	ErrNotFound           = errors.New("participant not found")
	ErrEmailTaken         = errors.New("this email is already registered for the raffle")
	ErrInvalidPhone       = errors.New("phone may only contain digits, spaces, + or -")
	ErrInvalidToken       = errors.New("invalid or already used verification token")
	ErrNotVerified        = errors.New("invalid token or email not verified")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAdmin           = errors.New("you do not have administrator permissions")
	ErrNoEligible         = errors.New("no eligible participants for the draw")
	ErrInvalidPage        = errors.New("invalid page")
	ErrUnknownAccessToken = errors.New("unknown access token")
)
