package chatter

import (
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
)

// titleMax is the maximum number of grapheme clusters in a derived title.
const titleMax = 30

// Session is one conversation thread. Messages are insertion-ordered and
// never reordered. Title is fixed at creation and never recomputed.
type Session struct {
	ID        string
	Title     string
	Messages  []Message
	CreatedAt time.Time
}

// newSession creates a session containing the given first user message,
// titled after its content.
func newSession(first Message) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Title:     Title(first.Content),
		Messages:  []Message{first},
		CreatedAt: time.Now(),
	}
}

// snapshot returns a copy whose Messages slice does not alias the original.
func (s *Session) snapshot() Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// Title derives a session title from the first user message: a prefix of at
// most titleMax grapheme clusters, ellipsized when truncated. Counting
// clusters rather than bytes keeps emoji and combining marks intact.
func Title(text string) string {
	g := uniseg.NewGraphemes(text)
	count := 0
	cut := len(text)
	for g.Next() {
		count++
		if count == titleMax {
			_, cut = g.Positions()
		}
		if count > titleMax {
			return text[:cut] + "..."
		}
	}
	return text
}
