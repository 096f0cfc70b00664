package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrUnknownErrorKind = errors.New("unknown client error kind")
)
