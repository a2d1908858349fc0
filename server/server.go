// Package server implements the chat completion endpoint that streams model
// output in the data stream wire format consumed by the datastream client.
package server

import (
	"context"

	"github.com/tkaczmarek/chatter"
)

// Completer produces a streamed model reply for a conversation history,
// invoking onDelta for each text fragment as it arrives. Returning an error
// from onDelta stops the completion.
type Completer interface {
	Complete(ctx context.Context, messages []chatter.Message, onDelta func(delta string) error) error
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, messages []chatter.Message, onDelta func(delta string) error) error

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, messages []chatter.Message, onDelta func(delta string) error) error {
	return f(ctx, messages, onDelta)
}
