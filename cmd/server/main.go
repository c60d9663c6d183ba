package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kapu/ai-demo-hub/internal/app"
	"github.com/kapu/ai-demo-hub/internal/bot"
	"github.com/kapu/ai-demo-hub/internal/config"
	"github.com/kapu/ai-demo-hub/internal/util"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("AI demo hub starting...",
		zap.String("addr", cfg.Server.Addr),
		zap.String("llm", cfg.LLM.Primary),
		zap.String("embeddings", cfg.LLM.EmbeddingProvider),
		zap.String("log_level", cfg.Logging.Level),
	)

	buildCtx, buildCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.Build(buildCtx, cfg, logger)
	buildCancel()
	if err != nil {
		logger.Error("Failed to assemble application services", zap.Error(err))
		os.Exit(1)
	}
	defer container.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 2)

	httpServer := container.NewServer()
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	var kakaoBot *bot.Bot
	if container.BotEnabled() {
		kakaoBot, err = container.NewBot()
		if err != nil {
			logger.Error("Failed to initialize bot", zap.Error(err))
			os.Exit(1)
		}
		go func() {
			if err := kakaoBot.Start(ctx); err != nil {
				errCh <- fmt.Errorf("bot: %w", err)
			}
		}()
		logger.Info("KakaoTalk bridge enabled", zap.String("ws", cfg.Iris.WSURL))
	}

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("Runtime error", zap.Error(err))
	}

	logger.Info("Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}
	if kakaoBot != nil {
		if err := kakaoBot.Shutdown(shutdownCtx); err != nil {
			logger.Error("Bot shutdown error", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
}
