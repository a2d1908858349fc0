package bubbletea

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/tkaczmarek/chatter"
)

var _ tea.Model = Model{}

const sidebarWidth = 24

// suggestions are shown on the empty-state welcome screen.
var suggestions = []string{
	"What can you help me with?",
	"Explain quantum computing in simple terms",
	"Help me write a Python function",
	"Give me creative writing ideas",
}

// Model is the Bubble Tea model for the chatter TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation area. Exported for test access.
	Viewport viewport.Model
	// Spinner animates while a reply is pending. Exported for test access.
	Spinner spinner.Model

	engine *chatter.Engine
	theme  chatter.Theme
	styles Styles

	running   bool
	sessionID string // session receiving the in-flight reply
	eventCh   chan StreamDeltaMsg
	doneCh    chan error
	err       error

	showSidebar bool
	width       int
	height      int
	ready       bool
}

// New creates a new TUI Model driven by the given engine.
func New(engine *chatter.Engine, theme chatter.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Send a message..."
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		Input:       ti,
		Spinner:     sp,
		engine:      engine,
		theme:       theme,
		styles:      NewStyles(theme),
		showSidebar: true,
	}
}

// Running returns whether an exchange is in flight.
func (m Model) Running() bool { return m.running }

// Err returns the last submission error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamDeltaMsg:
		m = m.refreshViewport()
		m.Viewport.GotoBottom()
		if m.eventCh != nil {
			return m, listenForDelta(m.eventCh, m.doneCh)
		}
		return m, nil

	case SendDoneMsg:
		m.running = false
		m.sessionID = ""
		m.eventCh = nil
		m.doneCh = nil
		m.err = msg.Err
		m = m.refreshViewport()
		m.Viewport.GotoBottom()
		cmds = append(cmds, m.Input.Focus())
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.running {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		m = m.refreshViewport()
		return m, cmd
	}

	// Pass remaining messages to sub-components. The viewport always
	// receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var main strings.Builder
	main.WriteString(m.Viewport.View())
	main.WriteString("\n")
	main.WriteString(m.statusLine())
	main.WriteString("\n")
	main.WriteString(m.Input.View())

	if !m.sidebarVisible() {
		return main.String()
	}
	return joinColumns(m.renderSidebar(), main.String())
}

func (m Model) sidebarVisible() bool {
	return m.showSidebar && m.width >= 2*sidebarWidth
}

func (m Model) viewportWidth() int {
	w := m.width
	if m.sidebarVisible() {
		w -= sidebarWidth
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	inputHeight := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := msg.Height - inputHeight - statusHeight - borderHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(m.viewportWidth(), vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = m.viewportWidth()
		m.Viewport.Height = vpHeight
	}
	m = m.refreshViewport()
	m.Viewport.GotoBottom()

	m.Input.Width = m.viewportWidth() - len(m.Input.Prompt)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			m.engine.Cancel(m.sessionID)
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		if m.running {
			m.engine.Cancel(m.sessionID)
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyCtrlN:
		if !m.running {
			m.engine.NewConversation()
			m.err = nil
			m = m.refreshViewport()
		}
		return m, nil

	case tea.KeyCtrlX:
		if !m.running {
			if activeID := m.engine.View().ActiveID; activeID != "" {
				m.engine.Delete(activeID)
				m = m.refreshViewport()
			}
		}
		return m, nil

	case tea.KeyCtrlB:
		m.showSidebar = !m.showSidebar
		m.Viewport.Width = m.viewportWidth()
		m = m.refreshViewport()
		return m, nil

	case tea.KeyTab:
		if !m.running {
			m = m.cycleSession(1)
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleSession(-1)
		}
		return m, nil
	}

	// When idle, pass keys to both input (for typing) and viewport (for
	// scrolling). Only forward non-character keys to the viewport to avoid
	// conflicts (e.g. 'j'/'k' are viewport scroll AND text characters).
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	sessionID, err := m.engine.Submit(text)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.Input.SetValue("")
	m.Input.Blur()
	m.err = nil
	m.sessionID = sessionID
	m.eventCh = make(chan StreamDeltaMsg, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	// The user message is committed by Submit, so it renders before any
	// reply text arrives.
	m = m.refreshViewport()
	m.Viewport.GotoBottom()

	return m, tea.Batch(
		startStream(m.engine, sessionID, m.eventCh, m.doneCh),
		listenForDelta(m.eventCh, m.doneCh),
		m.Spinner.Tick,
	)
}

// cycleSession moves the active session forward or backward through the
// collection, wrapping around.
func (m Model) cycleSession(step int) Model {
	view := m.engine.View()
	if len(view.Sessions) == 0 {
		return m
	}
	idx := -1
	for i, sess := range view.Sessions {
		if sess.ID == view.ActiveID {
			idx = i
			break
		}
	}
	if idx < 0 {
		idx = 0
	} else {
		idx = (idx + step + len(view.Sessions)) % len(view.Sessions)
	}
	if err := m.engine.Select(view.Sessions[idx].ID); err != nil {
		return m
	}
	m = m.refreshViewport()
	m.Viewport.GotoBottom()
	return m
}

func (m Model) refreshViewport() Model {
	m.Viewport.SetContent(m.renderContent())
	return m
}

func (m Model) renderContent() string {
	view := m.engine.View()
	sess, ok := activeSession(view)
	if !ok {
		return m.renderWelcome()
	}

	width := m.Viewport.Width
	var b strings.Builder
	for i, msg := range sess.Messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderMessage(msg, width))
	}
	if view.Busy {
		if len(sess.Messages) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.renderInProgress(view.InProgressText, width))
	}
	return b.String()
}

func (m Model) renderMessage(msg chatter.Message, width int) string {
	header := m.styles.Assistant.Render("Assistant")
	if msg.Role == chatter.RoleUser {
		header = m.styles.UserMsg.Render("You")
	}
	body := lipgloss.NewStyle().Width(width).Render(msg.Content)
	return header + "\n" + body
}

func (m Model) renderInProgress(text string, width int) string {
	header := m.styles.Assistant.Render("Assistant")
	if text == "" {
		return header + "\n" + m.Spinner.View() + m.styles.Muted.Render("Thinking...")
	}
	body := lipgloss.NewStyle().Width(width).Render(text + "▌")
	return header + "\n" + body
}

func (m Model) renderWelcome() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.Accent.Render("How can I help you today?"))
	b.WriteString("\n\n")
	for _, s := range suggestions {
		b.WriteString(m.styles.Muted.Render("  • " + s))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderSidebar() string {
	view := m.engine.View()
	height := m.Viewport.Height + 2

	var b strings.Builder
	b.WriteString(m.styles.Accent.Render("Conversations"))
	b.WriteString("\n\n")
	lines := 2
	for _, sess := range view.Sessions {
		if lines >= height {
			break
		}
		title := runewidth.Truncate(sess.Title, sidebarWidth-3, "…")
		if sess.ID == view.ActiveID {
			b.WriteString(m.styles.Accent.Render("▸ " + title))
		} else {
			b.WriteString(m.styles.Muted.Render("  " + title))
		}
		b.WriteString("\n")
		lines++
	}
	if len(view.Sessions) == 0 {
		b.WriteString(m.styles.Muted.Render("  (none yet)"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render("Error: " + m.err.Error())
	}
	if m.running {
		return m.styles.Muted.Render("Esc to cancel")
	}
	return m.styles.Muted.Render("Enter send · Ctrl+N new · Ctrl+X delete · Tab switch · Ctrl+C quit")
}

// joinColumns places the sidebar to the left of the main column, padding
// the sidebar to its fixed width.
func joinColumns(sidebar, main string) string {
	side := lipgloss.NewStyle().Width(sidebarWidth).Render(sidebar)
	return lipgloss.JoinHorizontal(lipgloss.Top, side, main)
}

func activeSession(view chatter.View) (chatter.Session, bool) {
	for _, sess := range view.Sessions {
		if sess.ID == view.ActiveID {
			return sess, true
		}
	}
	return chatter.Session{}, false
}

// startStream drives the submitted exchange in a goroutine, pumping deltas
// into the event channel until the engine reports a terminal state.
func startStream(engine *chatter.Engine, sessionID string, eventCh chan<- StreamDeltaMsg, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := engine.Stream(context.Background(), sessionID, func(delta, text string) {
			eventCh <- StreamDeltaMsg{Delta: delta, Text: text}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForDelta waits for the next delta from the channel. When the channel
// closes, it reads the terminal error from doneCh and returns SendDoneMsg.
func listenForDelta(ch <-chan StreamDeltaMsg, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return SendDoneMsg{Err: <-doneCh}
		}
		return msg
	}
}
