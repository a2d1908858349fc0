package mock

import "github.com/tkaczmarek/chatter"

// Stream is a test double for chatter.Stream.
// Set the function fields for the methods you need. NextFn panics when nil
// to catch missing setup. The others are nil-safe (zero value and no-op)
// because test code commonly calls defer stream.Close() and rarely needs
// custom behavior from State or Text.
type Stream struct {
	NextFn  func() (string, error)
	StateFn func() chatter.StreamState
	TextFn  func() string
	CloseFn func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (string, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamIdle when StateFn is nil.
func (s *Stream) State() chatter.StreamState {
	if s.StateFn == nil {
		return chatter.StreamIdle
	}
	return s.StateFn()
}

// Text delegates to TextFn. Returns the empty string when TextFn is nil.
func (s *Stream) Text() string {
	if s.TextFn == nil {
		return ""
	}
	return s.TextFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}
