package iris

import "strings"

// Config is what Iris reports on GET /config.
type Config struct {
	Port              int    `json:"port"`
	PollingSpeed      int    `json:"pollingSpeed"`
	MessageRate       int    `json:"messageRate"`
	WebserverEndpoint string `json:"webserverEndpoint"`
}

type ReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

// Message is one KakaoTalk chat event pushed over the websocket.
type Message struct {
	Msg    string       `json:"msg"`
	Room   string       `json:"room"`
	Sender *string      `json:"sender,omitempty"`
	JSON   *MessageJSON `json:"json,omitempty"`
}

type MessageJSON struct {
	UserID    string `json:"user_id,omitempty"`
	Message   string `json:"message,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
	Type      string `json:"type,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Text returns the message body, falling back to the raw event payload.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	if text := strings.TrimSpace(m.Msg); text != "" {
		return text
	}
	if m.JSON != nil {
		return strings.TrimSpace(m.JSON.Message)
	}
	return ""
}

func (m *Message) SenderName() string {
	if m == nil || m.Sender == nil {
		return ""
	}
	return *m.Sender
}

// ReplyRoom is where answers go: the chat id when present, else the room name.
func (m *Message) ReplyRoom() string {
	if m.JSON != nil && m.JSON.ChatID != "" {
		return m.JSON.ChatID
	}
	return m.Room
}

type WebSocketState string

const (
	WSStateConnecting   WebSocketState = "CONNECTING"
	WSStateConnected    WebSocketState = "CONNECTED"
	WSStateDisconnected WebSocketState = "DISCONNECTED"
	WSStateReconnecting WebSocketState = "RECONNECTING"
	WSStateFailed       WebSocketState = "FAILED"
)

func (s WebSocketState) String() string {
	return string(s)
}
