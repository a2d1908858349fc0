package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tkaczmarek/chatter"
)

const systemPromptFormat = `You are ChatGPT, a large language model trained by OpenAI, based on the GPT-4 architecture.
Knowledge cutoff: 2023-10
Current date: %s

You are a helpful, harmless, and honest AI assistant. You provide accurate, thoughtful, and well-structured responses.`

// Interface compliance check.
var _ Completer = (*OpenAICompleter)(nil)

// OpenAICompleter streams chat completions from the OpenAI API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// NewOpenAICompleter creates a Completer backed by the OpenAI API.
func NewOpenAICompleter(apiKey, model string) *OpenAICompleter {
	return &OpenAICompleter{
		client: openai.NewClient(apiKey),
		model:  model,
		now:    time.Now,
	}
}

// Complete sends the conversation prefixed with the system prompt and relays
// each content delta to onDelta until the stream finishes.
func (c *OpenAICompleter) Complete(ctx context.Context, messages []chatter.Message, onDelta func(delta string) error) error {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Stream:   true,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)+1),
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: fmt.Sprintf(systemPromptFormat, c.now().UTC().Format("2006-01-02")),
	})
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("create completion stream: %w", err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("recv completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := onDelta(delta); err != nil {
			return err
		}
	}
}
