package server_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkaczmarek/chatter"
	"github.com/tkaczmarek/chatter/datastream"
	"github.com/tkaczmarek/chatter/server"
)

func newTestServer(t *testing.T, completer server.Completer) *httptest.Server {
	t.Helper()
	handler := server.NewHandler(zerolog.Nop(), completer)
	srv := httptest.NewServer(server.NewRouter(handler))
	t.Cleanup(srv.Close)
	return srv
}

func postChat(t *testing.T, srv *httptest.Server, body string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func echoCompleter(deltas ...string) server.CompleterFunc {
	return func(_ context.Context, _ []chatter.Message, onDelta func(string) error) error {
		for _, d := range deltas {
			if err := onDelta(d); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestHandler_Chat_StreamsDeltas(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, echoCompleter("Hel", "lo", " world"))
	resp, body := postChat(t, srv, `{"messages": [{"role": "user", "content": "hi"}]}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasSuffix(body, "2:{\"finishReason\":\"stop\"}\n"))

	var dec datastream.Decoder
	assert.Equal(t, []string{"Hel", "lo", " world"}, dec.Feed(body))
}

func TestHandler_Chat_PassesHistory(t *testing.T) {
	t.Parallel()

	var got []chatter.Message
	srv := newTestServer(t, server.CompleterFunc(
		func(_ context.Context, messages []chatter.Message, onDelta func(string) error) error {
			got = messages
			return onDelta("ok")
		}))

	resp, _ := postChat(t, srv, `{"messages": [
		{"role": "user", "content": "question"},
		{"role": "assistant", "content": "answer"},
		{"role": "user", "content": "follow-up"}
	]}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got, 3)
	assert.Equal(t, chatter.RoleUser, got[0].Role)
	assert.Equal(t, "answer", got[1].Content)
	assert.Equal(t, "follow-up", got[2].Content)
}

func TestHandler_Chat_InvalidRequests(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, echoCompleter("unused"))

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{not json`},
		{name: "missing messages", body: `{}`},
		{name: "null messages", body: `{"messages": null}`},
		{name: "messages not an array", body: `{"messages": "hi"}`},
		{name: "unknown role", body: `{"messages": [{"role": "system", "content": "x"}]}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, body := postChat(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Invalid messages format", body)
		})
	}
}

func TestHandler_Chat_FailureBeforeFirstDelta(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, server.CompleterFunc(
		func(_ context.Context, _ []chatter.Message, _ func(string) error) error {
			return errors.New("api key missing")
		}))

	resp, body := postChat(t, srv, `{"messages": []}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal Server Error", body)
}

func TestHandler_Chat_FailureMidStreamTruncates(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, server.CompleterFunc(
		func(_ context.Context, _ []chatter.Message, onDelta func(string) error) error {
			if err := onDelta("partial"); err != nil {
				return err
			}
			return errors.New("upstream reset")
		}))

	resp, body := postChat(t, srv, `{"messages": []}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The stream ends without a finish record; decoded deltas survive.
	assert.False(t, strings.Contains(body, "finishReason"))
	var dec datastream.Decoder
	assert.Equal(t, []string{"partial"}, dec.Feed(body))
}

func TestHandler_Chat_EndToEndWithClient(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, echoCompleter("round", " trip"))

	client := datastream.New(srv.URL)
	stream, err := client.Stream(context.Background(), chatter.Request{
		Messages: []chatter.Message{{Role: chatter.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	defer stream.Close()

	var text strings.Builder
	for {
		delta, err := stream.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		text.WriteString(delta)
	}
	assert.Equal(t, "round trip", text.String())
	assert.Equal(t, chatter.StreamCompleted, stream.State())
}
