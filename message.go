package chatter

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single conversation entry. Once the exchange that produced it
// has reached a terminal state the message is never mutated again.
type Message struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// NewMessage creates a Message with a fresh id and the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
