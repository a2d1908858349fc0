// Package bubbletea provides a Bubble Tea TUI for the chatter client.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. The context is used for graceful shutdown — when cancelled,
// the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamDeltaMsg carries one streamed text fragment and the accumulated
// reply so far.
type StreamDeltaMsg struct {
	Delta string
	Text  string
}

// SendDoneMsg signals that an exchange has reached a terminal state.
type SendDoneMsg struct {
	Err error
}
