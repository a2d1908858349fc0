package chatter

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrEmptyMessage indicates an empty or whitespace-only submission.
	ErrEmptyMessage = errors.New("empty message")

	// ErrSessionNotFound indicates the session id is not in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBusy indicates the session already has an exchange in flight.
	ErrBusy = errors.New("exchange already in flight")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)
