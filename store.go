package chatter

import "sync"

// Store is the single source of truth for session state. It holds the
// ordered session collection (most recently created first) and the active
// session pointer. Every transition is atomic with respect to concurrent
// reads, and accessors return copies so callers never alias internal slices.
type Store struct {
	mu       sync.RWMutex
	sessions []*Session
	activeID string // empty = no session selected
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Create inserts a new session at the front of the collection, containing
// the given first user message and titled after it, and makes it active.
// Creation and first append are a single transition, so a session is never
// observable without at least one message.
func (s *Store) Create(first Message) Session {
	sess := newSession(first)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append([]*Session{sess}, s.sessions...)
	s.activeID = sess.ID
	return sess.snapshot()
}

// Append adds a message to the session's history. Returns ErrSessionNotFound
// when the session no longer exists; it may have been deleted while a
// request was in flight.
func (s *Store) Append(sessionID string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.find(sessionID)
	if sess == nil {
		return ErrSessionNotFound
	}
	sess.Messages = append(sess.Messages, msg)
	return nil
}

// Delete removes the session. Deleting the active session clears the active
// pointer. Deleting an unknown id is a no-op.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sess := range s.sessions {
		if sess.ID == sessionID {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			break
		}
	}
	if s.activeID == sessionID {
		s.activeID = ""
	}
}

// SetActive selects the session as active.
func (s *Store) SetActive(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(sessionID) == nil {
		return ErrSessionNotFound
	}
	s.activeID = sessionID
	return nil
}

// ClearActive resets the active pointer; the next submission creates a
// fresh session.
func (s *Store) ClearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
}

// ActiveID returns the active session id, or empty when none is selected.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(sessionID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.find(sessionID)
	if sess == nil {
		return Session{}, false
	}
	return sess.snapshot(), true
}

// Active returns a copy of the active session, if any.
func (s *Store) Active() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.find(s.activeID)
	if sess == nil {
		return Session{}, false
	}
	return sess.snapshot(), true
}

// Sessions returns a copy of the collection in creation order, newest first.
func (s *Store) Sessions() []Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = sess.snapshot()
	}
	return out
}

// Restore replaces the collection, used when loading persisted
// conversations at startup. An activeID not present in sessions is treated
// as "no selection".
func (s *Store) Restore(sessions []Session, activeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make([]*Session, len(sessions))
	for i := range sessions {
		sess := sessions[i].snapshot()
		s.sessions[i] = &sess
	}
	s.activeID = ""
	if s.find(activeID) != nil {
		s.activeID = activeID
	}
}

// find returns the stored session, or nil. Callers hold s.mu.
func (s *Store) find(sessionID string) *Session {
	if sessionID == "" {
		return nil
	}
	for _, sess := range s.sessions {
		if sess.ID == sessionID {
			return sess
		}
	}
	return nil
}
