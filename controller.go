package chatter

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Outcome is the single terminal result of one exchange. State is one of
// StreamCompleted, StreamErrored or StreamAborted. Text carries the full
// reply on completion and whatever partial text had accumulated otherwise;
// partial text is never committed by the controller itself.
type Outcome struct {
	State StreamState
	Text  string
	Err   error
}

// Controller owns one request lifecycle from submission to terminal state.
// Start may be called at most once. Cancel is safe from any goroutine.
type Controller struct {
	provider Provider
	logger   zerolog.Logger

	mu     sync.Mutex
	state  StreamState
	cancel context.CancelFunc
}

// NewController creates a Controller for a single exchange.
func NewController(provider Provider, logger zerolog.Logger) *Controller {
	return &Controller{provider: provider, logger: logger}
}

// StartOption configures a single Start invocation.
type StartOption func(*startConfig)

type startConfig struct {
	onDelta func(delta, text string)
}

// WithDeltaHandler sets a callback invoked for each decoded delta, carrying
// the delta and the running accumulated text. Callbacks fire on the calling
// goroutine, strictly in arrival order.
func WithDeltaHandler(h func(delta, text string)) StartOption {
	return func(c *startConfig) {
		c.onDelta = h
	}
}

// State returns the controller's current state.
func (c *Controller) State() StreamState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cancel signals the in-flight exchange to stop. The read loop observes the
// signal before the next chunk wait, so cancellation is cooperative rather
// than immediate. Calling Cancel on a finished controller is a no-op.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Start issues the outbound call with the given history and drains the
// response stream, invoking the delta handler as text arrives. It blocks
// until the exchange reaches a terminal state and returns exactly one
// Outcome. A transport failure before any body is read yields StreamErrored
// with no deltas delivered.
func (c *Controller) Start(ctx context.Context, req Request, opts ...StartOption) Outcome {
	var cfg startConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	c.state = StreamSending
	c.cancel = cancel
	c.mu.Unlock()

	c.logger.Debug().Int("messages", len(req.Messages)).Msg("exchange started")

	stream, err := c.provider.Stream(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return c.finish(Outcome{State: StreamAborted})
		}
		return c.finish(Outcome{State: StreamErrored, Err: err})
	}
	defer stream.Close()

	for {
		delta, err := stream.Next()
		switch {
		case errors.Is(err, io.EOF):
			return c.finish(Outcome{State: StreamCompleted, Text: stream.Text()})
		case err != nil:
			if ctx.Err() != nil {
				return c.finish(Outcome{State: StreamAborted, Text: stream.Text()})
			}
			return c.finish(Outcome{State: StreamErrored, Text: stream.Text(), Err: err})
		}

		c.mu.Lock()
		c.state = StreamStreaming
		c.mu.Unlock()

		if cfg.onDelta != nil {
			cfg.onDelta(delta, stream.Text())
		}
	}
}

func (c *Controller) finish(out Outcome) Outcome {
	c.mu.Lock()
	c.state = out.State
	c.cancel = nil
	c.mu.Unlock()
	c.logger.Debug().
		Stringer("state", out.State).
		Int("chars", len(out.Text)).
		Err(out.Err).
		Msg("exchange finished")
	return out
}
