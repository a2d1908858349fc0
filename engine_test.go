package chatter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkaczmarek/chatter"
	"github.com/tkaczmarek/chatter/mock"
)

func TestEngine_Send_CommitsExchange(t *testing.T) {
	t.Parallel()

	store := chatter.NewStore()
	engine := chatter.NewEngine(store, mock.ScriptedProvider("Hel", "lo", "!"))

	var texts []string
	err := engine.Send(context.Background(), "  hi there  ", func(delta, text string) {
		texts = append(texts, text)
	})
	require.NoError(t, err)

	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Messages, 2)
	assert.Equal(t, chatter.RoleUser, sessions[0].Messages[0].Role)
	assert.Equal(t, "hi there", sessions[0].Messages[0].Content)
	assert.Equal(t, chatter.RoleAssistant, sessions[0].Messages[1].Role)
	assert.Equal(t, "Hello!", sessions[0].Messages[1].Content)
	assert.Equal(t, []string{"Hel", "Hello", "Hello!"}, texts)

	view := engine.View()
	assert.False(t, view.Busy)
	assert.Empty(t, view.InProgressText)
	assert.Equal(t, sessions[0].ID, view.ActiveID)
}

func TestEngine_Send_ReusesActiveSession(t *testing.T) {
	t.Parallel()

	store := chatter.NewStore()
	engine := chatter.NewEngine(store, mock.ScriptedProvider("reply"))

	require.NoError(t, engine.Send(context.Background(), "first", nil))
	require.NoError(t, engine.Send(context.Background(), "second", nil))

	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Messages, 4)
	assert.Equal(t, "first", sessions[0].Messages[0].Content)
	assert.Equal(t, "reply", sessions[0].Messages[1].Content)
	assert.Equal(t, "second", sessions[0].Messages[2].Content)
	assert.Equal(t, "reply", sessions[0].Messages[3].Content)
}

func TestEngine_Submit_RejectsWhitespace(t *testing.T) {
	t.Parallel()

	store := chatter.NewStore()
	engine := chatter.NewEngine(store, mock.ScriptedProvider())

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := engine.Submit(text)
		assert.ErrorIs(t, err, chatter.ErrEmptyMessage)
	}
	assert.Empty(t, store.Sessions())
}

func TestEngine_Submit_RejectsBusySession(t *testing.T) {
	t.Parallel()

	store := chatter.NewStore()
	engine := chatter.NewEngine(store, mock.ScriptedProvider("reply"))

	_, err := engine.Submit("first")
	require.NoError(t, err)

	// The reply has not been streamed yet, so the session is busy.
	_, err = engine.Submit("second")
	assert.ErrorIs(t, err, chatter.ErrBusy)
}

func TestEngine_Stream_RequestCarriesHistory(t *testing.T) {
	t.Parallel()

	var got chatter.Request
	provider := &mock.Provider{
		StreamFn: func(_ context.Context, req chatter.Request) (chatter.Stream, error) {
			got = req
			return mock.ScriptedStream("reply"), nil
		},
	}
	store := chatter.NewStore()
	engine := chatter.NewEngine(store, provider)

	require.NoError(t, engine.Send(context.Background(), "first", nil))
	require.NoError(t, engine.Send(context.Background(), "second", nil))

	// The second request includes the full committed history, ending with
	// the just-appended user message.
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "first", got.Messages[0].Content)
	assert.Equal(t, "reply", got.Messages[1].Content)
	assert.Equal(t, "second", got.Messages[2].Content)
}

func TestEngine_Cancel_CommitsNothing(t *testing.T) {
	t.Parallel()

	calls := 0
	provider := &mock.Provider{
		StreamFn: func(ctx context.Context, _ chatter.Request) (chatter.Stream, error) {
			return &mock.Stream{
				NextFn: func() (string, error) {
					calls++
					if calls == 1 {
						return "partial", nil
					}
					<-ctx.Done()
					return "", ctx.Err()
				},
				TextFn: func() string { return "partial" },
			}, nil
		},
	}
	store := chatter.NewStore()
	engine := chatter.NewEngine(store, provider)

	sessionID, err := engine.Submit("question")
	require.NoError(t, err)

	err = engine.Stream(context.Background(), sessionID, func(delta, text string) {
		engine.Cancel(sessionID)
	})
	require.NoError(t, err)

	// Only the user message survives; the partial reply is discarded.
	sess, ok := store.Get(sessionID)
	require.True(t, ok)
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, chatter.RoleUser, sess.Messages[0].Role)

	view := engine.View()
	assert.False(t, view.Busy)
	assert.Empty(t, view.InProgressText)
}

func TestEngine_Stream_FailureCommitsDiagnostic(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		StreamFn: func(_ context.Context, _ chatter.Request) (chatter.Stream, error) {
			return nil, errors.New("connection refused")
		},
	}
	store := chatter.NewStore()
	engine := chatter.NewEngine(store, provider)

	require.NoError(t, engine.Send(context.Background(), "question", nil))

	sessions := store.Sessions()
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Messages, 2)
	assert.Equal(t, chatter.RoleAssistant, sessions[0].Messages[1].Role)
	assert.Equal(t, chatter.ErrorReply, sessions[0].Messages[1].Content)
}

func TestEngine_Stream_DeletedSessionDropsReply(t *testing.T) {
	t.Parallel()

	store := chatter.NewStore()
	engine := chatter.NewEngine(store, mock.ScriptedProvider("reply"))

	sessionID, err := engine.Submit("question")
	require.NoError(t, err)

	// Deleted before the reply streams; the result is dropped silently.
	engine.Delete(sessionID)
	require.NoError(t, engine.Stream(context.Background(), sessionID, nil))

	assert.Empty(t, store.Sessions())
	assert.False(t, engine.View().Busy)
}

func TestEngine_Stream_WithoutSubmit(t *testing.T) {
	t.Parallel()

	engine := chatter.NewEngine(chatter.NewStore(), mock.ScriptedProvider())
	err := engine.Stream(context.Background(), "nope", nil)
	assert.ErrorContains(t, err, "no pending submission")
}

func TestEngine_NewConversation(t *testing.T) {
	t.Parallel()

	store := chatter.NewStore()
	engine := chatter.NewEngine(store, mock.ScriptedProvider("reply"))

	require.NoError(t, engine.Send(context.Background(), "first", nil))
	engine.NewConversation()
	assert.Empty(t, engine.View().ActiveID)

	require.NoError(t, engine.Send(context.Background(), "second", nil))
	assert.Len(t, store.Sessions(), 2)
}

func TestEngine_SelectAndDelete(t *testing.T) {
	t.Parallel()

	store := chatter.NewStore()
	engine := chatter.NewEngine(store, mock.ScriptedProvider("reply"))

	require.NoError(t, engine.Send(context.Background(), "first", nil))
	a := store.Sessions()[0]
	engine.NewConversation()
	require.NoError(t, engine.Send(context.Background(), "second", nil))

	require.NoError(t, engine.Select(a.ID))
	assert.Equal(t, a.ID, engine.View().ActiveID)

	engine.Delete(a.ID)
	view := engine.View()
	assert.Empty(t, view.ActiveID)
	assert.Len(t, view.Sessions, 1)

	assert.ErrorIs(t, engine.Select(a.ID), chatter.ErrSessionNotFound)
}

func TestEngine_View_InProgressDuringStream(t *testing.T) {
	t.Parallel()

	store := chatter.NewStore()
	engine := chatter.NewEngine(store, mock.ScriptedProvider("par", "tial"))

	sessionID, err := engine.Submit("question")
	require.NoError(t, err)

	var snapshots []chatter.View
	err = engine.Stream(context.Background(), sessionID, func(delta, text string) {
		snapshots = append(snapshots, engine.View())
	})
	require.NoError(t, err)

	require.Len(t, snapshots, 2)
	assert.True(t, snapshots[0].Busy)
	assert.Equal(t, "par", snapshots[0].InProgressText)
	assert.Equal(t, "partial", snapshots[1].InProgressText)
}
