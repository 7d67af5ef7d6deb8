package jobs

import "errors"

// Package sentinel errors.
var (
	// ErrQueueClosed is returned when closing an already closed queue.
	ErrQueueClosed = errors.New("queue already closed")

	// ErrShutdownTimeout is returned when a worker does not stop in time.
	ErrShutdownTimeout = errors.New("worker shutdown timed out")
)
