package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kapu/ai-demo-hub/internal/adapter"
	"github.com/kapu/ai-demo-hub/internal/command"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/iris"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// MessageSource delivers incoming chat messages. *iris.WebSocket satisfies it.
type MessageSource interface {
	OnMessage(callback iris.MessageCallback) func()
	Run(ctx context.Context) error
}

type Dependencies struct {
	Source         MessageSource
	MessageAdapter *adapter.MessageAdapter
	Dispatcher     command.Dispatcher
	MaxInFlight    int
	CommandTimeout time.Duration
	Logger         *zap.Logger
}

// Bot answers KakaoTalk chat commands relayed by Iris.
type Bot struct {
	source         MessageSource
	adapter        *adapter.MessageAdapter
	dispatcher     command.Dispatcher
	maxInFlight    int
	commandTimeout time.Duration
	logger         *zap.Logger

	mu      sync.Mutex
	workers *pool.Pool
	runCtx  context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewBot(deps *Dependencies) (*Bot, error) {
	if deps == nil || deps.Source == nil || deps.MessageAdapter == nil || deps.Dispatcher == nil {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxInFlight := deps.MaxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 4
	}
	timeout := deps.CommandTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Bot{
		source:         deps.Source,
		adapter:        deps.MessageAdapter,
		dispatcher:     deps.Dispatcher,
		maxInFlight:    maxInFlight,
		commandTimeout: timeout,
		logger:         logger,
	}, nil
}

// Start subscribes to messages and blocks until ctx is cancelled or the source gives up.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.workers != nil {
		b.mu.Unlock()
		return fmt.Errorf("bot already started")
	}
	b.runCtx, b.cancel = context.WithCancel(ctx)
	b.workers = pool.New().WithMaxGoroutines(b.maxInFlight)
	b.done = make(chan struct{})
	runCtx := b.runCtx
	b.mu.Unlock()

	unsubscribe := b.source.OnMessage(func(message *iris.Message) {
		b.enqueue(runCtx, message)
	})
	defer close(b.done)
	defer unsubscribe()

	b.logger.Info("Bot listening for chat commands", zap.Int("max_in_flight", b.maxInFlight))
	return b.source.Run(runCtx)
}

func (b *Bot) enqueue(ctx context.Context, message *iris.Message) {
	if ctx.Err() != nil {
		return
	}
	b.mu.Lock()
	workers := b.workers
	b.mu.Unlock()
	if workers == nil {
		return
	}
	// pool.Go blocks while MaxInFlight commands are already running
	workers.Go(func() {
		b.HandleMessage(ctx, message)
	})
}

// HandleMessage parses one chat message and runs the resulting command.
func (b *Bot) HandleMessage(ctx context.Context, message *iris.Message) {
	text := message.Text()
	parsed := b.adapter.ParseMessage(text)
	if parsed == nil || parsed.Type == domain.CommandUnknown {
		return
	}

	cmdCtx := domain.NewCommandContext(
		message.ReplyRoom(),
		message.Room,
		message.SenderName(),
		text,
		message.SenderName() != message.Room,
	)

	ctx, cancel := context.WithTimeout(ctx, b.commandTimeout)
	defer cancel()

	b.logger.Info("Command received",
		zap.String("command", parsed.Type.String()),
		zap.String("room", cmdCtx.RoomName),
		zap.String("sender", cmdCtx.Sender),
	)

	if _, err := b.dispatcher.Publish(ctx, cmdCtx, command.CommandEvent{Type: parsed.Type, Params: parsed.Params}); err != nil {
		b.logger.Error("Command dispatch failed",
			zap.String("command", parsed.Type.String()),
			zap.String("room", cmdCtx.Room),
			zap.Error(err),
		)
	}
}

// Shutdown stops listening and waits for in-flight commands.
func (b *Bot) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	cancel, workers, done := b.cancel, b.workers, b.done
	b.mu.Unlock()
	if workers == nil {
		return nil
	}
	cancel()

	finished := make(chan struct{})
	go func() {
		<-done
		workers.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		b.logger.Info("Bot stopped cleanly")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timed out waiting for in-flight commands: %w", ctx.Err())
	}
}
