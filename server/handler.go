package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/tkaczmarek/chatter"
	"github.com/tkaczmarek/chatter/datastream"
)

// Handler serves the chat completion endpoint.
type Handler struct {
	logger    zerolog.Logger
	completer Completer
}

// NewHandler creates a Handler streaming replies from the given Completer.
func NewHandler(logger zerolog.Logger, completer Completer) *Handler {
	return &Handler{logger: logger, completer: completer}
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages *[]wireMessage `json:"messages"`
}

// Chat handles POST /api/chat. The reply streams as one text record per
// delta, followed by a finish data record. Once the first byte is written
// the status code is committed, so a mid-stream failure simply truncates
// the stream; the client treats the truncated tail as discardable.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Messages == nil {
		h.logger.Warn().Err(err).Msg("invalid chat request")
		c.String(http.StatusBadRequest, "Invalid messages format")
		return
	}

	messages := make([]chatter.Message, len(*req.Messages))
	for i, m := range *req.Messages {
		role := chatter.Role(m.Role)
		if role != chatter.RoleUser && role != chatter.RoleAssistant {
			h.logger.Warn().Str("role", m.Role).Msg("invalid chat request")
			c.String(http.StatusBadRequest, "Invalid messages format")
			return
		}
		messages[i] = chatter.Message{Role: role, Content: m.Content}
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("X-Vercel-AI-Data-Stream", "v1")

	w := datastream.NewWriter(c.Writer)
	started := false
	err := h.completer.Complete(c.Request.Context(), messages, func(delta string) error {
		started = true
		return w.Text(delta)
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("completion failed")
		if !started {
			c.String(http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}
	if err := w.Data(map[string]string{"finishReason": "stop"}); err != nil {
		h.logger.Error().Err(err).Msg("write finish record")
	}
}
