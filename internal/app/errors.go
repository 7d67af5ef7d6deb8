package service

import (
	"errors"

	"github.com/repstats/repstats/internal/domain/types"
)

// ErrUnknownParticipant aliases the shared sentinel so callers can use
// errors.Is against either package.
var ErrUnknownParticipant = types.ErrUnknownParticipant

// ErrQueueFull is recorded against a generation when the refresh queue
// rejects its job.
var ErrQueueFull = errors.New("refresh queue full")
