package json

import (
	"fmt"
	"time"

	"github.com/tkaczmarek/chatter"
)

// messageDTO is the JSON representation of a Message.
type messageDTO struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func marshalMessage(msg chatter.Message) messageDTO {
	return messageDTO{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func unmarshalMessage(dto messageDTO) (chatter.Message, error) {
	role := chatter.Role(dto.Role)
	switch role {
	case chatter.RoleUser, chatter.RoleAssistant:
	default:
		return chatter.Message{}, fmt.Errorf("unknown role: %q", dto.Role)
	}
	return chatter.Message{
		ID:        dto.ID,
		Role:      role,
		Content:   dto.Content,
		CreatedAt: dto.CreatedAt,
	}, nil
}
