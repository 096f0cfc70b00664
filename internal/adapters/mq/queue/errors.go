package queue

import "errors"

// Sentinel errors returned by Dispatch.
var (
	ErrFull   = errors.New("notification queue full")
	ErrClosed = errors.New("notification queue closed")
)
