package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kapu/ai-demo-hub/internal/adapter"
	"github.com/kapu/ai-demo-hub/internal/command"
	"github.com/kapu/ai-demo-hub/internal/service/history"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Dependencies struct {
	Services       *command.Services
	Formatter      *adapter.ResponseFormatter
	MessageAdapter *adapter.MessageAdapter
	Dispatcher     command.Dispatcher
	Tracker        *history.Tracker
	History        HistoryReader // nil when run history is disabled
	HealthChecks   map[string]func(context.Context) error
	RequestTimeout time.Duration
	GinMode        string
	Logger         *zap.Logger
}

// NewRouter mounts every demo endpoint on a gin engine.
func NewRouter(deps *Dependencies) (*gin.Engine, error) {
	if deps == nil || deps.Services == nil || deps.Formatter == nil || deps.MessageAdapter == nil || deps.Dispatcher == nil {
		return nil, fmt.Errorf("server dependencies not initialized")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracker := deps.Tracker
	if tracker == nil {
		tracker = history.NewTracker(nil, logger)
	}
	if deps.GinMode != "" {
		gin.SetMode(deps.GinMode)
	}

	h := &Handlers{
		services:   deps.Services,
		formatter:  deps.Formatter,
		adapter:    deps.MessageAdapter,
		dispatcher: deps.Dispatcher,
		tracker:    tracker,
		history:    deps.History,
		checks:     deps.HealthChecks,
		timeout:    deps.RequestTimeout,
		logger:     logger,
	}

	router := gin.New()
	router.Use(requestID(), recovery(logger), accessLog(logger), cors())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		travel := api.Group("/travel")
		travel.POST("/search", h.Search)
		travel.GET("/weather", h.Weather)
		travel.POST("/hotels", h.Hotels)

		api.POST("/sentiment", h.Sentiment)
		api.POST("/reports", h.Report)
		api.POST("/youtube/summaries", h.Summarize)
		api.POST("/chat", h.Chat)
		api.GET("/history", h.History)
	}

	return router, nil
}

// Server owns the HTTP listener.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

func New(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks until the server stops. A graceful Shutdown is not reported as an error.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
