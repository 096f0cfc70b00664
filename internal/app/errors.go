package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrUnknownOperation = errors.New("unknown operation")
)
