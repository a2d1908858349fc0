package chatter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrorReply is the diagnostic committed in place of model output when an
// exchange fails.
const ErrorReply = "Sorry, there was an error processing your request. " +
	"Please make sure your API key is set in .env.local."

// View is a read-only snapshot of engine state for rendering. InProgressText
// and Busy describe the active session's exchange, if any.
type View struct {
	Sessions       []Session
	ActiveID       string
	InProgressText string
	Busy           bool
}

// Engine coordinates submissions end-to-end: it owns the session store, one
// controller per streaming session, and the rules for turning terminal
// outcomes into committed session content. It is the only layer that makes
// failures visible as messages.
type Engine struct {
	store    *Store
	provider Provider
	logger   zerolog.Logger

	mu          sync.Mutex
	controllers map[string]*Controller // keyed by session id
	inProgress  map[string]string      // streaming text per session id
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used by the engine and its controllers.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine backed by the given store and provider.
func NewEngine(store *Store, provider Provider, opts ...EngineOption) *Engine {
	e := &Engine{
		store:       store,
		provider:    provider,
		logger:      zerolog.Nop(),
		controllers: make(map[string]*Controller),
		inProgress:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit performs the synchronous half of a submission: input validation,
// session creation or reuse, the one-controller-per-session check, and the
// user-message append. It returns the id of the session the reply will
// stream into. On success the caller must follow up with Stream; until then
// the session counts as busy.
//
// Whitespace-only input is rejected with ErrEmptyMessage before any session
// mutation or network activity.
func (e *Engine) Submit(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	userMsg := NewMessage(RoleUser, text)

	sess, ok := e.store.Active()
	if !ok {
		sess = e.store.Create(userMsg)
		e.register(sess.ID)
		e.logger.Debug().Str("session", sess.ID).Str("title", sess.Title).Msg("session created")
		return sess.ID, nil
	}

	e.mu.Lock()
	if _, busy := e.controllers[sess.ID]; busy {
		e.mu.Unlock()
		return "", fmt.Errorf("session %s: %w", sess.ID, ErrBusy)
	}
	e.controllers[sess.ID] = NewController(e.provider, e.logger)
	e.inProgress[sess.ID] = ""
	e.mu.Unlock()

	if err := e.store.Append(sess.ID, userMsg); err != nil {
		e.release(sess.ID)
		return "", err
	}
	return sess.ID, nil
}

// Stream drives a submitted exchange to its terminal state and commits the
// result: on completion a single assistant message with the accumulated
// text, on failure the fixed diagnostic, on abort nothing. The in-progress
// text is cleared on every terminal outcome. It blocks until done; the
// delta handler fires on the calling goroutine.
//
// The request history is built strictly from the messages already committed
// to the session, including the user message appended by Submit.
func (e *Engine) Stream(ctx context.Context, sessionID string, onDelta func(delta, text string)) error {
	e.mu.Lock()
	ctl := e.controllers[sessionID]
	e.mu.Unlock()
	if ctl == nil {
		return fmt.Errorf("session %s: no pending submission", sessionID)
	}
	defer e.release(sessionID)

	sess, ok := e.store.Get(sessionID)
	if !ok {
		// Deleted between Submit and Stream; nothing to do.
		return nil
	}

	out := ctl.Start(ctx, Request{Messages: sess.Messages}, WithDeltaHandler(func(delta, text string) {
		e.mu.Lock()
		e.inProgress[sessionID] = text
		e.mu.Unlock()
		if onDelta != nil {
			onDelta(delta, text)
		}
	}))

	switch out.State {
	case StreamCompleted:
		err := e.store.Append(sessionID, NewMessage(RoleAssistant, out.Text))
		if errors.Is(err, ErrSessionNotFound) {
			// Session deleted while the reply was streaming; drop the result.
			return nil
		}
		return err
	case StreamErrored:
		e.logger.Warn().Err(out.Err).Str("session", sessionID).Msg("exchange failed")
		err := e.store.Append(sessionID, NewMessage(RoleAssistant, ErrorReply))
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return nil
	default: // StreamAborted: nothing is committed.
		return nil
	}
}

// Send drives one submission end-to-end: Submit followed by Stream.
func (e *Engine) Send(ctx context.Context, text string, onDelta func(delta, text string)) error {
	sessionID, err := e.Submit(text)
	if err != nil {
		return err
	}
	return e.Stream(ctx, sessionID, onDelta)
}

// Cancel signals the session's in-flight exchange, if any. The abort is
// cooperative: the exchange ends at the next chunk boundary and commits no
// assistant message.
func (e *Engine) Cancel(sessionID string) {
	e.mu.Lock()
	ctl := e.controllers[sessionID]
	e.mu.Unlock()
	if ctl != nil {
		ctl.Cancel()
	}
}

// Select makes the session active.
func (e *Engine) Select(sessionID string) error {
	return e.store.SetActive(sessionID)
}

// Delete removes the session, cancelling its in-flight exchange first.
// Deleting the active session clears the active pointer.
func (e *Engine) Delete(sessionID string) {
	e.Cancel(sessionID)
	e.store.Delete(sessionID)
}

// NewConversation clears the active pointer so the next submission creates
// a fresh session.
func (e *Engine) NewConversation() {
	e.store.ClearActive()
}

// View returns a snapshot of the sessions, the active pointer, and the
// active session's streaming state.
func (e *Engine) View() View {
	sessions := e.store.Sessions()
	activeID := e.store.ActiveID()
	e.mu.Lock()
	_, busy := e.controllers[activeID]
	text := e.inProgress[activeID]
	e.mu.Unlock()
	return View{
		Sessions:       sessions,
		ActiveID:       activeID,
		InProgressText: text,
		Busy:           busy,
	}
}

func (e *Engine) register(sessionID string) {
	e.mu.Lock()
	e.controllers[sessionID] = NewController(e.provider, e.logger)
	e.inProgress[sessionID] = ""
	e.mu.Unlock()
}

func (e *Engine) release(sessionID string) {
	e.mu.Lock()
	delete(e.controllers, sessionID)
	delete(e.inProgress, sessionID)
	e.mu.Unlock()
}
