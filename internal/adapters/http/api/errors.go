package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrMalformedJSON       = errors.New("JSON parse error")
	ErrUnknownNotification = errors.New("unknown notification kind")
)

// Error bodies mirrored from the backend's REST framework.
const (
	msgRequired         = "This field is required."
	msgBlank            = "This field may not be blank."
	msgInvalidEmail     = "Enter a valid email address."
	msgInvalidUUID      = "Must be a valid UUID."
	msgNotAuthenticated = "Authentication credentials were not provided."
	msgBadToken         = "Given token not valid for any token type"
	msgForbidden        = "You do not have permission to perform this action."
	msgInvalidPage      = "Invalid page."
	msgNotFound         = "Not found."
	msgPasswordShort    = "This password is too short. It must contain at least 8 characters."
	msgPasswordNumeric  = "This password is entirely numeric."
	msgPasswordLong     = "Ensure this field has no more than 72 characters."
	msgPasswordMismatch = "Passwords do not match."
)
