package iris

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/util"
	"go.uber.org/zap"
)

type MessageCallback func(message *Message)

type StateCallback func(state WebSocketState)

type callbackEntry struct {
	id       int
	callback MessageCallback
}

type stateCallbackEntry struct {
	id       int
	callback StateCallback
}

// WebSocket receives chat events from Iris. Run keeps the connection alive and
// reconnects after read failures until MaxReconnectAttempts is spent.
type WebSocket struct {
	wsURL                string
	dialer               *websocket.Dialer
	connMu               sync.Mutex
	conn                 *websocket.Conn
	state                WebSocketState
	stateMu              sync.RWMutex
	messageCallbacks     []callbackEntry
	stateCallbacks       []stateCallbackEntry
	nextCallbackID       int
	callbacksMu          sync.RWMutex
	maxReconnectAttempts int
	reconnectDelay       time.Duration
	logger               *zap.Logger
}

func NewWebSocket(wsURL string, logger *zap.Logger) *WebSocket {
	return &WebSocket{
		wsURL:                wsURL,
		dialer:               &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		state:                WSStateDisconnected,
		maxReconnectAttempts: constants.WebSocketConfig.MaxReconnectAttempts,
		reconnectDelay:       constants.WebSocketConfig.ReconnectDelay,
		logger:               logger,
		nextCallbackID:       1,
	}
}

// Run connects and blocks until ctx is cancelled or reconnects are exhausted.
func (ws *WebSocket) Run(ctx context.Context) error {
	attempts := 0
	for {
		err := ws.connectAndListen(ctx)
		if ctx.Err() != nil {
			ws.setState(WSStateDisconnected)
			return nil
		}
		if err == nil {
			// 정상 연결 후 끊김: 시도 횟수 초기화
			attempts = 0
		}

		attempts++
		if attempts > ws.maxReconnectAttempts {
			ws.logger.Error("Max reconnect attempts reached", zap.Int("attempts", attempts-1), zap.Error(err))
			ws.setState(WSStateFailed)
			return err
		}

		ws.setState(WSStateReconnecting)
		ws.logger.Info("Scheduling reconnect",
			zap.Int("attempt", attempts),
			zap.Int("max", ws.maxReconnectAttempts),
			zap.Duration("delay", ws.reconnectDelay),
		)

		timer := time.NewTimer(ws.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			ws.setState(WSStateDisconnected)
			return nil
		case <-timer.C:
		}
	}
}

// connectAndListen returns a non-nil error only when the dial itself failed.
func (ws *WebSocket) connectAndListen(ctx context.Context) error {
	ws.setState(WSStateConnecting)

	conn, _, err := ws.dialer.DialContext(ctx, ws.wsURL, nil)
	if err != nil {
		ws.logger.Error("Failed to connect WebSocket", zap.Error(err))
		return err
	}

	ws.connMu.Lock()
	ws.conn = conn
	ws.connMu.Unlock()
	ws.setState(WSStateConnected)
	ws.logger.Info("WebSocket connected", zap.String("url", ws.wsURL))

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	defer ws.closeConn()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				ws.logger.Warn("WebSocket read error", zap.Error(err))
			}
			ws.setState(WSStateDisconnected)
			return nil
		}
		ws.handleMessage(data)
	}
}

func (ws *WebSocket) handleMessage(data []byte) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		ws.logger.Error("Failed to parse message",
			zap.Error(err),
			zap.String("data", util.Preview(string(data), constants.StringLimits.LogPreview)),
		)
		return
	}
	if message.Text() == "" {
		return
	}

	ws.callbacksMu.RLock()
	callbacks := make([]callbackEntry, len(ws.messageCallbacks))
	copy(callbacks, ws.messageCallbacks)
	ws.callbacksMu.RUnlock()

	for _, entry := range callbacks {
		entry.callback(&message)
	}
}

func (ws *WebSocket) OnMessage(callback MessageCallback) func() {
	ws.callbacksMu.Lock()
	id := ws.nextCallbackID
	ws.nextCallbackID++
	ws.messageCallbacks = append(ws.messageCallbacks, callbackEntry{id: id, callback: callback})
	ws.callbacksMu.Unlock()

	return func() {
		ws.callbacksMu.Lock()
		defer ws.callbacksMu.Unlock()
		for i, entry := range ws.messageCallbacks {
			if entry.id == id {
				ws.messageCallbacks = append(ws.messageCallbacks[:i], ws.messageCallbacks[i+1:]...)
				break
			}
		}
	}
}

func (ws *WebSocket) OnStateChange(callback StateCallback) func() {
	ws.callbacksMu.Lock()
	id := ws.nextCallbackID
	ws.nextCallbackID++
	ws.stateCallbacks = append(ws.stateCallbacks, stateCallbackEntry{id: id, callback: callback})
	ws.callbacksMu.Unlock()

	return func() {
		ws.callbacksMu.Lock()
		defer ws.callbacksMu.Unlock()
		for i, entry := range ws.stateCallbacks {
			if entry.id == id {
				ws.stateCallbacks = append(ws.stateCallbacks[:i], ws.stateCallbacks[i+1:]...)
				break
			}
		}
	}
}

func (ws *WebSocket) setState(newState WebSocketState) {
	ws.stateMu.Lock()
	oldState := ws.state
	ws.state = newState
	ws.stateMu.Unlock()

	if oldState == newState {
		return
	}
	ws.logger.Debug("WebSocket state changed",
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
	)

	ws.callbacksMu.RLock()
	callbacks := make([]stateCallbackEntry, len(ws.stateCallbacks))
	copy(callbacks, ws.stateCallbacks)
	ws.callbacksMu.RUnlock()

	for _, entry := range callbacks {
		entry.callback(newState)
	}
}

func (ws *WebSocket) GetState() WebSocketState {
	ws.stateMu.RLock()
	defer ws.stateMu.RUnlock()
	return ws.state
}

func (ws *WebSocket) IsConnected() bool {
	return ws.GetState() == WSStateConnected
}

func (ws *WebSocket) closeConn() {
	ws.connMu.Lock()
	defer ws.connMu.Unlock()
	if ws.conn != nil {
		_ = ws.conn.Close()
		ws.conn = nil
	}
}

func (ws *WebSocket) RemoveAllListeners() {
	ws.callbacksMu.Lock()
	defer ws.callbacksMu.Unlock()
	ws.messageCallbacks = nil
	ws.stateCallbacks = nil
}
