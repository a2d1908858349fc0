package chatter

import "context"

// StreamState tracks one exchange from submission to terminal state.
type StreamState int

const (
	StreamIdle      StreamState = iota // No exchange started.
	StreamSending                      // Request dispatched, no bytes received.
	StreamStreaming                    // Receiving body chunks.
	StreamCompleted                    // Stream drained normally.
	StreamErrored                      // Transport or protocol failure.
	StreamAborted                      // Cancelled by the caller.
)

// Terminal reports whether no further events follow in this state.
func (s StreamState) Terminal() bool {
	return s == StreamCompleted || s == StreamErrored || s == StreamAborted
}

func (s StreamState) String() string {
	switch s {
	case StreamIdle:
		return "idle"
	case StreamSending:
		return "sending"
	case StreamStreaming:
		return "streaming"
	case StreamCompleted:
		return "completed"
	case StreamErrored:
		return "errored"
	case StreamAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Request carries the full visible history of a session at submission time.
type Request struct {
	Messages []Message
}

// Stream is a pull-based iterator over decoded content deltas.
// Cancellation flows through the context passed to Provider.Stream();
// the read loop observes it between chunk waits.
//
// Next returns the next text delta, io.EOF once the stream has drained
// normally, and the terminal error otherwise. Text returns the accumulated
// text so far: after delta k it is always the concatenation of deltas 1..k.
type Stream interface {
	Next() (string, error)
	State() StreamState
	Text() string
	Close() error
}

// Provider issues one outbound exchange against the completion endpoint.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}
