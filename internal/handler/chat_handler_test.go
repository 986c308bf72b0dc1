package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleSendMessage_RequiresIdentity(t *testing.T) {
	deps, _ := newTestDeps()

	rec := doJSON(t, HandleSendMessage(deps), http.MethodPost, "/api/chat/send",
		`{"content":"hello"}`, "")

	require.Equal(t, 3006, decodeResponse(t, rec).Code)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleSendMessage_PersistsAndReturnsView(t *testing.T) {
	deps, users := newTestDeps()
	_, err := users.Create(context.Background(), "alice", "hash")
	require.NoError(t, err)

	rec := doJSON(t, HandleSendMessage(deps), http.MethodPost, "/api/chat/send",
		`{"content":"hello room"}`, tokenFor(t, "alice"))

	body := decodeResponse(t, rec)
	require.Equal(t, 0, body.Code)

	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "hello room", data["content"])
	require.Equal(t, "alice", data["username"])
	require.NotZero(t, data["id"])
}

func TestHandleSendMessage_UnknownIdentity(t *testing.T) {
	deps, _ := newTestDeps()

	// Valid token for a user that was never registered.
	rec := doJSON(t, HandleSendMessage(deps), http.MethodPost, "/api/chat/send",
		`{"content":"hello"}`, tokenFor(t, "ghost"))

	require.Equal(t, 3005, decodeResponse(t, rec).Code)
}

func TestHandleSendMessage_ContentTooLong(t *testing.T) {
	deps, users := newTestDeps()
	_, err := users.Create(context.Background(), "alice", "hash")
	require.NoError(t, err)

	long := strings.Repeat("x", MaxMessageContentLength+1)
	rec := doJSON(t, HandleSendMessage(deps), http.MethodPost, "/api/chat/send",
		`{"content":"`+long+`"}`, tokenFor(t, "alice"))

	require.Equal(t, 2001, decodeResponse(t, rec).Code)
}

func TestHandleSendMessage_EmptyContentAccepted(t *testing.T) {
	deps, users := newTestDeps()
	_, err := users.Create(context.Background(), "alice", "hash")
	require.NoError(t, err)

	rec := doJSON(t, HandleSendMessage(deps), http.MethodPost, "/api/chat/send",
		`{"content":""}`, tokenFor(t, "alice"))

	require.Equal(t, 0, decodeResponse(t, rec).Code)
}

func TestHandleRecentMessages_NewestFirst(t *testing.T) {
	deps, users := newTestDeps()
	_, err := users.Create(context.Background(), "alice", "hash")
	require.NoError(t, err)

	for _, content := range []string{"first", "second", "third"} {
		_, customErr := deps.Core.SendMessage(context.Background(), content, "alice")
		require.Nil(t, customErr)
	}

	rec := doJSON(t, HandleRecentMessages(deps), http.MethodGet, "/api/chat/messages", "", "")

	body := decodeResponse(t, rec)
	require.Equal(t, 0, body.Code)

	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	messages, ok := data["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 3)

	newest, ok := messages[0].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "third", newest["content"])
}

func TestHandleRecentMessages_LimitParameter(t *testing.T) {
	deps, users := newTestDeps()
	_, err := users.Create(context.Background(), "alice", "hash")
	require.NoError(t, err)

	for _, content := range []string{"one", "two", "three"} {
		_, customErr := deps.Core.SendMessage(context.Background(), content, "alice")
		require.Nil(t, customErr)
	}

	rec := doJSON(t, HandleRecentMessages(deps), http.MethodGet, "/api/chat/messages?limit=2", "", "")

	data, ok := decodeResponse(t, rec).Data.(map[string]any)
	require.True(t, ok)
	messages, ok := data["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
}

func TestHandleRoster_ReflectsPresence(t *testing.T) {
	deps, users := newTestDeps()
	for _, name := range []string{"alice", "bob"} {
		_, err := users.Create(context.Background(), name, "hash")
		require.NoError(t, err)
	}

	require.Nil(t, deps.Core.Connect(context.Background(), "alice"))

	rec := doJSON(t, HandleRoster(deps), http.MethodGet, "/api/chat/roster", "", "")

	body := decodeResponse(t, rec)
	require.Equal(t, 0, body.Code)

	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	entries, ok := data["users"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 2)

	byName := make(map[string]map[string]any, len(entries))
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		require.True(t, ok)
		byName[entry["username"].(string)] = entry
	}

	require.Equal(t, true, byName["alice"]["online"])
	require.Equal(t, "", byName["alice"]["lastSeen"])

	require.Equal(t, false, byName["bob"]["online"])
	require.Equal(t, "Never", byName["bob"]["lastSeen"])
}
