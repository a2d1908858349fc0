package bubbletea_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/tkaczmarek/chatter"
	bt "github.com/tkaczmarek/chatter/bubbletea"
	"github.com/tkaczmarek/chatter/mock"
)

// newEngine creates an engine whose provider replays the given deltas for
// every exchange.
func newEngine(deltas ...string) *chatter.Engine {
	return chatter.NewEngine(chatter.NewStore(), mock.ScriptedProvider(deltas...))
}

// initModel creates a model and sends a WindowSizeMsg to initialize the
// viewport.
func initModel(t *testing.T, engine *chatter.Engine) bt.Model {
	t.Helper()
	return initModelWithSize(t, engine, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, engine *chatter.Engine, width, height int) bt.Model {
	t.Helper()
	m := bt.New(engine, chatter.DefaultTheme())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// typeText simulates typing into the input.
func typeText(t *testing.T, m bt.Model, text string) bt.Model {
	t.Helper()
	return updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}
