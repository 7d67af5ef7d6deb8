package types

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownParticipant = errors.New("unknown participant")
)
