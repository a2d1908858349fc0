package datastream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tkaczmarek/chatter"
)

// stream implements [chatter.Stream] over a streamed HTTP response body.
type stream struct {
	body    io.ReadCloser
	ctx     context.Context
	dec     Decoder
	buf     []byte
	pending []string // decoded but not yet delivered deltas
	text    strings.Builder
	state   chatter.StreamState
	eof     bool
	err     error
}

// Interface compliance check.
var _ chatter.Stream = (*stream)(nil)

func newStream(ctx context.Context, body io.ReadCloser) *stream {
	return &stream{
		body:  body,
		ctx:   ctx,
		buf:   make([]byte, 4096),
		state: chatter.StreamSending,
	}
}

// Next returns the next decoded text delta. It reads body chunks as needed,
// checking the cancel signal between reads. Returns io.EOF once the stream
// has drained normally; a trailing record with no terminating newline is
// discarded rather than treated as an error.
func (s *stream) Next() (string, error) {
	switch s.state {
	case chatter.StreamCompleted:
		return "", io.EOF
	case chatter.StreamErrored:
		return "", s.err
	case chatter.StreamAborted:
		if s.err != nil {
			return "", s.err
		}
		return "", fmt.Errorf("datastream: %w", chatter.ErrStreamClosed)
	}

	for {
		if len(s.pending) > 0 {
			delta := s.pending[0]
			s.pending = s.pending[1:]
			s.text.WriteString(delta)
			return delta, nil
		}

		if s.eof {
			s.state = chatter.StreamCompleted
			return "", io.EOF
		}

		// Cancellation is cooperative: observed here, between chunk reads.
		if err := s.ctx.Err(); err != nil {
			s.state = chatter.StreamAborted
			s.err = err
			return "", err
		}

		n, err := s.body.Read(s.buf)
		if n > 0 || err == nil {
			// Any received chunk confirms the channel is open, even one
			// that completes no record.
			s.state = chatter.StreamStreaming
		}
		if n > 0 {
			s.pending = append(s.pending, s.dec.Feed(string(s.buf[:n]))...)
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			s.eof = true
		default:
			if s.ctx.Err() != nil {
				s.state = chatter.StreamAborted
				s.err = s.ctx.Err()
			} else {
				s.state = chatter.StreamErrored
				s.err = fmt.Errorf("datastream: read body: %w", err)
			}
			return "", s.err
		}
	}
}

// State returns the current stream state.
func (s *stream) State() chatter.StreamState {
	return s.state
}

// Text returns the accumulated text delivered so far.
func (s *stream) Text() string {
	return s.text.String()
}

// Close closes the response body. Closing mid-stream marks the stream
// aborted; a terminal state reached earlier is preserved.
func (s *stream) Close() error {
	if !s.state.Terminal() {
		s.state = chatter.StreamAborted
	}
	return s.body.Close()
}
