package tokenstore

import "errors"

// Sentinel kinds for token store errors.
var (
	ErrEmptyKey = errors.New("token store key must not be empty")
	ErrClosed   = errors.New("token store closed")
)
