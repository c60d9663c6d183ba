package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/kapu/ai-demo-hub/internal/adapter"
	"github.com/kapu/ai-demo-hub/internal/bot"
	"github.com/kapu/ai-demo-hub/internal/command"
	"github.com/kapu/ai-demo-hub/internal/config"
	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/iris"
	"github.com/kapu/ai-demo-hub/internal/prompt"
	"github.com/kapu/ai-demo-hub/internal/server"
	"github.com/kapu/ai-demo-hub/internal/service/ai"
	"github.com/kapu/ai-demo-hub/internal/service/cache"
	"github.com/kapu/ai-demo-hub/internal/service/database"
	"github.com/kapu/ai-demo-hub/internal/service/history"
	"github.com/kapu/ai-demo-hub/internal/service/hotel"
	"github.com/kapu/ai-demo-hub/internal/service/httpapi"
	"github.com/kapu/ai-demo-hub/internal/service/report"
	"github.com/kapu/ai-demo-hub/internal/service/retrieval"
	"github.com/kapu/ai-demo-hub/internal/service/search"
	"github.com/kapu/ai-demo-hub/internal/service/sentiment"
	"github.com/kapu/ai-demo-hub/internal/service/summary"
	"github.com/kapu/ai-demo-hub/internal/service/transcript"
	"github.com/kapu/ai-demo-hub/internal/service/weather"
	"github.com/kapu/ai-demo-hub/internal/util"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// Container bundles assembled services for constructing runtime components like the
// HTTP server and the chat bot.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Router *gin.Engine

	botDeps *bot.Dependencies
	closers []func()
}

// NewServer wraps the router in an HTTP server bound to the configured address.
func (c *Container) NewServer() *server.Server {
	return server.New(c.Config.Server.Addr, c.Router, c.Logger)
}

// BotEnabled reports whether the Iris bridge is configured.
func (c *Container) BotEnabled() bool {
	return c != nil && c.botDeps != nil
}

// NewBot instantiates a bot using the pre-built dependency graph.
func (c *Container) NewBot() (*bot.Bot, error) {
	if !c.BotEnabled() {
		return nil, fmt.Errorf("bot dependencies not initialized")
	}
	return bot.NewBot(c.botDeps)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles all infrastructure services. Heavy initialization (Redis, Postgres,
// model clients, Chroma) happens here so the server and bot only orchestrate.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := &Container{Config: cfg, Logger: logger}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	healthChecks := map[string]func(context.Context) error{}

	// Cache
	var store cache.Store = cache.Noop{}
	if cfg.Redis.Enabled {
		cacheSvc, cacheErr := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if cacheErr != nil {
			return nil, fmt.Errorf("failed to create cache service: %w", cacheErr)
		}
		c.closers = append(c.closers, func() { _ = cacheSvc.Close() })
		healthChecks["redis"] = func(ctx context.Context) error {
			if !cacheSvc.IsConnected(ctx) {
				return fmt.Errorf("redis unreachable")
			}
			return nil
		}
		store = cacheSvc
	} else {
		logger.Info("Redis disabled, responses are not cached")
	}

	// Run history
	var (
		recorder    history.Recorder = history.Noop{}
		historyRead server.HistoryReader
	)
	if cfg.Postgres.Enabled {
		postgresSvc, pgErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", pgErr)
		}
		c.closers = append(c.closers, func() { _ = postgresSvc.Close() })
		healthChecks["postgres"] = postgresSvc.Ping

		repo := history.NewRunRepository(postgresSvc, logger)
		recorder = repo
		historyRead = repo
	}
	tracker := history.NewTracker(recorder, logger)

	// AI stack
	clients := &modelClients{cfg: cfg}
	models, err := buildModelManager(ctx, clients, logger)
	if err != nil {
		return nil, err
	}
	healthChecks["models"] = func(context.Context) error {
		status := models.GetCircuitStatus()
		if status.State == util.CircuitStateOpen {
			return fmt.Errorf("%s circuit open after %d failures", models.PrimaryName(), status.FailureCount)
		}
		return nil
	}
	prompts := prompt.NewDefaultPrompts(logger)

	// Travel demos
	weatherAPI := httpapi.NewClient("weatherstack", cfg.Weather.BaseURL, nil, logger)
	hotelAPI := httpapi.NewClient("makcorps", cfg.Hotel.BaseURL, nil, logger)
	searchAPI := httpapi.NewClient("duckduckgo", cfg.Search.BaseURL, nil, logger,
		httpapi.WithHeader("Accept", "text/html"),
		httpapi.WithHeader("User-Agent", constants.APIConfig.UserAgent),
	)

	services := &command.Services{
		Search:    search.NewService(searchAPI, cfg.Search.MaxResults, store, logger),
		Weather:   weather.NewService(weatherAPI, cfg.Weather.APIKey, store, logger),
		Hotels:    hotel.NewService(hotelAPI, hotel.Config{APIKey: cfg.Hotel.APIKey, MappingAPIKey: cfg.Hotel.MappingAPIKey}, store, logger),
		Sentiment: sentiment.NewService(models, prompts, logger),
		Report:    report.NewService(models, prompts, report.Config{ParallelFeedback: cfg.Report.ParallelFeedback}, logger),
	}

	// YouTube summariser
	summarySvc, err := c.buildSummary(ctx, clients, models, prompts, store)
	if err != nil {
		return nil, err
	}
	services.Summary = summarySvc

	// Chat surfaces
	messageAdapter := adapter.NewMessageAdapter(cfg.Bot.Prefix)
	formatter := adapter.NewResponseFormatter(cfg.Bot.Prefix)
	commandDeps := &command.Dependencies{
		Services:  services,
		Formatter: formatter,
		Tracker:   tracker,
		Logger:    logger,
	}

	var irisWS *iris.WebSocket
	if cfg.Iris.Enabled {
		irisClient := iris.NewClient(cfg.Iris.BaseURL, logger)
		irisWS = iris.NewWebSocket(cfg.Iris.WSURL, logger)
		commandDeps.SendMessage = irisClient.SendMessage
		healthChecks["iris"] = func(ctx context.Context) error {
			if !irisClient.Ping(ctx) {
				return fmt.Errorf("iris unreachable")
			}
			return nil
		}
	}

	registry := command.NewRegistry()
	command.RegisterAll(registry, commandDeps)
	dispatcher := command.NewSequentialDispatcher(registry, nil)
	logger.Info("Commands registered", zap.Strings("commands", registry.Names()))

	router, err := server.NewRouter(&server.Dependencies{
		Services:       services,
		Formatter:      formatter,
		MessageAdapter: messageAdapter,
		Dispatcher:     dispatcher,
		Tracker:        tracker,
		History:        historyRead,
		HealthChecks:   healthChecks,
		RequestTimeout: cfg.Server.RequestTimeout,
		GinMode:        cfg.Server.GinMode,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	c.Router = router

	if irisWS != nil {
		c.botDeps = &bot.Dependencies{
			Source:         irisWS,
			MessageAdapter: messageAdapter,
			Dispatcher:     dispatcher,
			CommandTimeout: cfg.Server.RequestTimeout,
			Logger:         logger,
		}
	}

	return c, nil
}

// modelClients creates each SDK client at most once; generation and embeddings share them.
type modelClients struct {
	cfg    *config.Config
	gemini *genai.Client
}

func (m *modelClients) geminiClient(ctx context.Context) (*genai.Client, error) {
	if m.gemini != nil {
		return m.gemini, nil
	}
	client, err := ai.NewGeminiClient(ctx, m.cfg.Gemini.APIKey)
	if err != nil {
		return nil, err
	}
	m.gemini = client
	return client, nil
}

func (m *modelClients) provider(ctx context.Context, name string, logger *zap.Logger) (ai.Provider, error) {
	switch name {
	case config.ProviderGemini:
		client, err := m.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		return ai.NewGeminiProvider(client, m.cfg.Gemini.Model, logger), nil
	case config.ProviderOpenAI:
		return ai.NewOpenAIProvider(m.cfg.OpenAI.APIKey, m.cfg.OpenAI.Model, logger), nil
	case config.ProviderHuggingFace:
		llm, err := ai.NewHuggingFaceLLM(m.cfg.HuggingFace.Token, m.cfg.HuggingFace.Model)
		if err != nil {
			return nil, err
		}
		return ai.NewHuggingFaceProvider(llm, m.cfg.HuggingFace.Model, logger), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", name)
	}
}

func buildModelManager(ctx context.Context, clients *modelClients, logger *zap.Logger) (*ai.ModelManager, error) {
	cfg := clients.cfg
	primary, err := clients.provider(ctx, cfg.LLM.Primary, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", cfg.LLM.Primary, err)
	}

	var fallback ai.Provider
	if cfg.OpenAI.EnableFallback && cfg.OpenAI.APIKey != "" && cfg.LLM.Primary != config.ProviderOpenAI {
		fallback = ai.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)
	}

	models, err := ai.NewModelManager(ai.ModelManagerConfig{Primary: primary, Fallback: fallback}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create model manager: %w", err)
	}
	return models, nil
}

func (c *Container) buildSummary(ctx context.Context, clients *modelClients, models ai.Generator, prompts *prompt.Prompts, store cache.Store) (*summary.Service, error) {
	cfg, logger := c.Config, c.Logger

	// Transcript sources: OAuth captions API first (when a token exists), then the watch page.
	sources := make([]transcript.Source, 0, 2)
	captions, err := transcript.NewCaptionsAPISource(ctx, cfg.YouTube.OAuthCredentials, cfg.YouTube.OAuthToken, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create captions source: %w", err)
	}
	if captions != nil {
		sources = append(sources, captions)
	}
	youtubeAPI := httpapi.NewClient("youtube", constants.APIConfig.YouTubeBaseURL, nil, logger,
		httpapi.WithHeader("Accept", "text/html,application/xml"),
		httpapi.WithHeader("Accept-Language", "en-US,en;q=0.9"),
		httpapi.WithHeader("User-Agent", constants.APIConfig.UserAgent),
	)
	sources = append(sources, transcript.NewWatchPageSource(youtubeAPI))
	source := transcript.NewFallbackSource(logger, sources...)
	transcripts := transcript.NewService(source, cfg.YouTube.Languages, store, logger)

	chunker, err := retrieval.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	var embedder retrieval.Embedder
	switch cfg.LLM.EmbeddingProvider {
	case config.ProviderHuggingFace:
		llm, hfErr := ai.NewHuggingFaceLLM(cfg.HuggingFace.Token, cfg.HuggingFace.Model)
		if hfErr != nil {
			return nil, hfErr
		}
		embedder = retrieval.NewHuggingFaceEmbedder(llm, cfg.HuggingFace.EmbeddingModel)
	default:
		client, gErr := clients.geminiClient(ctx)
		if gErr != nil {
			return nil, gErr
		}
		embedder = retrieval.NewGeminiEmbedder(client, cfg.Gemini.EmbeddingModel, constants.RetrievalConfig.EmbedWorkers)
	}

	var index retrieval.Index
	if cfg.Retrieval.ChromaURL != "" {
		chroma, chromaErr := retrieval.NewChromaIndex(cfg.Retrieval.ChromaURL, embedder)
		if chromaErr != nil {
			return nil, fmt.Errorf("failed to create chroma index: %w", chromaErr)
		}
		c.closers = append(c.closers, func() { _ = chroma.Close() })
		index = chroma
		logger.Info("Chroma similarity index enabled", zap.String("url", cfg.Retrieval.ChromaURL))
	}

	retriever := retrieval.NewRetriever(chunker, embedder, index, cfg.Retrieval.TopK, logger)
	svc := summary.NewService(transcripts, retriever, models, prompts, logger)

	metadata, err := transcript.NewMetadataClient(ctx, cfg.YouTube.APIKey, store, logger)
	if err != nil {
		logger.Warn("YouTube metadata lookups disabled", zap.Error(err))
	} else if metadata != nil {
		svc.WithVideoInfo(metadata)
	}

	logger.Info("YouTube summariser ready",
		zap.String("transcripts", source.Name()),
		zap.String("embedder", retriever.EmbedderName()),
	)
	return svc, nil
}
