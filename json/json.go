// Package json persists the session collection to disk in a versioned
// envelope format.
package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tkaczmarek/chatter"
)

// envelope is the v1 wire format for the persisted session collection.
type envelope struct {
	Version  int          `json:"version"`
	ActiveID string       `json:"active_id,omitempty"`
	Sessions []sessionDTO `json:"sessions"`
}

type sessionDTO struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	CreatedAt time.Time    `json:"created_at"`
	Messages  []messageDTO `json:"messages"`
}

// MarshalSessions serializes the session collection to JSON in v1 envelope
// format.
func MarshalSessions(sessions []chatter.Session, activeID string) ([]byte, error) {
	env := envelope{
		Version:  1,
		ActiveID: activeID,
		Sessions: make([]sessionDTO, len(sessions)),
	}
	for i, sess := range sessions {
		env.Sessions[i] = marshalSession(sess)
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalSessions deserializes the session collection from JSON in v1
// envelope format.
func UnmarshalSessions(data []byte) ([]chatter.Session, string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, "", fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return nil, "", fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	sessions := make([]chatter.Session, len(env.Sessions))
	for i, dto := range env.Sessions {
		sess, err := unmarshalSession(dto)
		if err != nil {
			return nil, "", fmt.Errorf("session %d: %w", i, err)
		}
		sessions[i] = sess
	}
	return sessions, env.ActiveID, nil
}

// Save writes the session collection to a JSON file, creating parent
// directories as needed. The write is atomic: a temp file is renamed into
// place so a crash never leaves a truncated file.
func Save(path string, sessions []chatter.Session, activeID string) error {
	data, err := MarshalSessions(sessions, activeID)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads the session collection from a JSON file.
func Load(path string) ([]chatter.Session, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	return UnmarshalSessions(data)
}

func marshalSession(sess chatter.Session) sessionDTO {
	dto := sessionDTO{
		ID:        sess.ID,
		Title:     sess.Title,
		CreatedAt: sess.CreatedAt,
		Messages:  make([]messageDTO, len(sess.Messages)),
	}
	for i, msg := range sess.Messages {
		dto.Messages[i] = marshalMessage(msg)
	}
	return dto
}

func unmarshalSession(dto sessionDTO) (chatter.Session, error) {
	msgs := make([]chatter.Message, len(dto.Messages))
	for i, m := range dto.Messages {
		msg, err := unmarshalMessage(m)
		if err != nil {
			return chatter.Session{}, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = msg
	}
	return chatter.Session{
		ID:        dto.ID,
		Title:     dto.Title,
		CreatedAt: dto.CreatedAt,
		Messages:  msgs,
	}, nil
}
