package datastream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tkaczmarek/chatter"
)

const chatPath = "/api/chat"

// Interface compliance check.
var _ chatter.Provider = (*Client)(nil)

// Client implements [chatter.Provider] against a data-stream chat endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the endpoint at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream posts the role-tagged message history and returns a stream of
// decoded text deltas over the response body. A non-success status is a
// hard failure with no frames to decode.
func (c *Client) Stream(ctx context.Context, req chatter.Request) (chatter.Stream, error) {
	body, err := json.Marshal(buildRequestBody(req))
	if err != nil {
		return nil, fmt.Errorf("datastream: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("datastream: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("datastream: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("datastream: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	return newStream(ctx, resp.Body), nil
}

type apiRequest struct {
	Messages []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func buildRequestBody(req chatter.Request) apiRequest {
	out := apiRequest{Messages: make([]apiMessage, len(req.Messages))}
	for i, msg := range req.Messages {
		out.Messages[i] = apiMessage{Role: string(msg.Role), Content: msg.Content}
	}
	return out
}
