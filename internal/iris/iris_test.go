package iris

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendMessagePostsReply(t *testing.T) {
	var got []ReplyRequest
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reply", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var req ReplyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		mu.Lock()
		got = append(got, req)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", zap.NewNop())
	require.NoError(t, client.SendMessage(context.Background(), "room-1", "hello"))

	require.Len(t, got, 1)
	assert.Equal(t, ReplyRequest{Type: "text", Room: "room-1", Data: "hello"}, got[0])
}

func TestSendMessageSplitsLongReplies(t *testing.T) {
	var parts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ReplyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		parts = append(parts, req.Data)
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())
	client.maxRunes = 10

	require.NoError(t, client.SendMessage(context.Background(), "r", "first\nsecond\nthird"))
	assert.Equal(t, []string{"first", "second", "third"}, parts)
}

func TestSendMessageReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("down"))
	}))
	defer server.Close()

	err := NewClient(server.URL, zap.NewNop()).SendMessage(context.Background(), "r", "hi")
	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "iris", apiErr.Upstream)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/config", r.URL.Path)
		_, _ = w.Write([]byte(`{"port":3000,"pollingSpeed":100}`))
	}))
	defer server.Close()

	assert.True(t, NewClient(server.URL, zap.NewNop()).Ping(context.Background()))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, splitMessage("abcdefghij", 4))
	assert.Equal(t, []string{"안녕하세요"}, splitMessage("안녕하세요", 5))
}

func TestSplitMessageSkipsBlankParts(t *testing.T) {
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, splitMessage("\nabcdefghij", 4))
	assert.Equal(t, []string{"hi", "abcd", "ef"}, splitMessage("hi\n\n\nabcdef", 4))

	for _, part := range splitMessage("one\n\n   \n\ntwo three four five", 6) {
		assert.NotEmpty(t, strings.TrimSpace(part))
	}
}

func TestMessageAccessors(t *testing.T) {
	sender := "kim"
	m := &Message{Room: "general", Sender: &sender, JSON: &MessageJSON{ChatID: "123", Message: "!help"}}

	assert.Equal(t, "!help", m.Text())
	assert.Equal(t, "kim", m.SenderName())
	assert.Equal(t, "123", m.ReplyRoom())

	m.Msg = " !search tokyo "
	assert.Equal(t, "!search tokyo", m.Text())

	var empty *Message
	assert.Equal(t, "", empty.Text())
}

func TestWebSocketDeliversMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"msg":"!weather Seoul","room":"travel"}`))
		// 클라이언트가 닫을 때까지 대기
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	ws := NewWebSocket("ws"+strings.TrimPrefix(server.URL, "http"), zap.NewNop())
	received := make(chan *Message, 1)
	ws.OnMessage(func(m *Message) { received <- m })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.Run(ctx) }()

	select {
	case m := <-received:
		assert.Equal(t, "!weather Seoul", m.Text())
		assert.Equal(t, "travel", m.Room)
	case <-time.After(5 * time.Second):
		t.Fatal("message not delivered")
	}
	assert.True(t, ws.IsConnected())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
	assert.Equal(t, WSStateDisconnected, ws.GetState())
}

func TestWebSocketGivesUpAfterMaxAttempts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	ws := NewWebSocket("ws"+strings.TrimPrefix(server.URL, "http"), zap.NewNop())
	ws.maxReconnectAttempts = 2
	ws.reconnectDelay = time.Millisecond

	var states []WebSocketState
	ws.OnStateChange(func(s WebSocketState) { states = append(states, s) })

	err := ws.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, WSStateFailed, ws.GetState())
	assert.Contains(t, states, WSStateReconnecting)
}
