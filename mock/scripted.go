package mock

import (
	"context"
	"io"
	"strings"

	"github.com/tkaczmarek/chatter"
)

// ScriptedProvider returns a Provider whose streams replay the given deltas
// and then complete. Each call to Stream starts a fresh replay.
func ScriptedProvider(deltas ...string) *Provider {
	return &Provider{
		StreamFn: func(_ context.Context, _ chatter.Request) (chatter.Stream, error) {
			return ScriptedStream(deltas...), nil
		},
	}
}

// ScriptedStream returns a Stream that replays the given deltas in order
// and then reports io.EOF, accumulating text as a real stream would.
func ScriptedStream(deltas ...string) *Stream {
	var (
		i    int
		text strings.Builder
	)
	return &Stream{
		NextFn: func() (string, error) {
			if i >= len(deltas) {
				return "", io.EOF
			}
			delta := deltas[i]
			i++
			text.WriteString(delta)
			return delta, nil
		},
		StateFn: func() chatter.StreamState {
			if i >= len(deltas) {
				return chatter.StreamCompleted
			}
			return chatter.StreamStreaming
		},
		TextFn: text.String,
	}
}
