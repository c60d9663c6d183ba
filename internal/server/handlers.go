package server

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kapu/ai-demo-hub/internal/adapter"
	"github.com/kapu/ai-demo-hub/internal/command"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/history"
	"github.com/kapu/ai-demo-hub/internal/service/hotel"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

const sourceHTTP = "http"

type HistoryReader interface {
	Recent(ctx context.Context, feature domain.Feature, limit int) ([]domain.Run, error)
}

type searchRequest struct {
	Query string `json:"query"`
}

type sentimentRequest struct {
	Text string `json:"text"`
}

type reportRequest struct {
	Topic string `json:"topic"`
}

type summaryRequest struct {
	Link string `json:"link"`
}

type chatRequest struct {
	Message string `json:"message"`
	Room    string `json:"room"`
}

type chatResponse struct {
	Command domain.CommandType `json:"command"`
	Replies []string           `json:"replies"`
}

// Handlers expose the demos as JSON endpoints.
type Handlers struct {
	services   *command.Services
	formatter  *adapter.ResponseFormatter
	adapter    *adapter.MessageAdapter
	dispatcher command.Dispatcher
	tracker    *history.Tracker
	history    HistoryReader
	checks     map[string]func(context.Context) error
	timeout    time.Duration
	logger     *zap.Logger
}

func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "ai-demo-hub",
		"checks":  checks,
	})
}

func (h *Handlers) Search(c *gin.Context) {
	var req searchRequest
	if !h.bind(c, &req) {
		return
	}
	serve(h, c, domain.FeatureSearch, req.Query, func(ctx context.Context) (*domain.SearchResponse, error) {
		return h.services.Search.Search(ctx, req.Query)
	}, h.formatter.FormatSearch)
}

func (h *Handlers) Weather(c *gin.Context) {
	city := c.Query("city")
	serve(h, c, domain.FeatureWeather, city, func(ctx context.Context) (*domain.WeatherReport, error) {
		return h.services.Weather.Current(ctx, city)
	}, h.formatter.FormatWeather)
}

func (h *Handlers) Hotels(c *gin.Context) {
	var req hotel.SearchRequest
	if !h.bind(c, &req) {
		return
	}
	serve(h, c, domain.FeatureHotels, req.City, func(ctx context.Context) (*domain.HotelSearchResult, error) {
		return h.services.Hotels.Search(ctx, req)
	}, h.formatter.FormatHotels)
}

func (h *Handlers) Sentiment(c *gin.Context) {
	var req sentimentRequest
	if !h.bind(c, &req) {
		return
	}
	serve(h, c, domain.FeatureSentiment, req.Text, func(ctx context.Context) (*domain.SentimentReply, error) {
		return h.services.Sentiment.Analyze(ctx, req.Text)
	}, h.formatter.FormatSentiment)
}

func (h *Handlers) Report(c *gin.Context) {
	var req reportRequest
	if !h.bind(c, &req) {
		return
	}
	serve(h, c, domain.FeatureReport, req.Topic, func(ctx context.Context) (*domain.Report, error) {
		return h.services.Report.Generate(ctx, req.Topic)
	}, h.formatter.FormatReport)
}

func (h *Handlers) Summarize(c *gin.Context) {
	var req summaryRequest
	if !h.bind(c, &req) {
		return
	}
	serve(h, c, domain.FeatureSummary, req.Link, func(ctx context.Context) (*domain.VideoSummary, error) {
		return h.services.Summary.Summarize(ctx, req.Link)
	}, h.formatter.FormatSummary)
}

// Chat runs a chat command and returns the replies it would have sent.
func (h *Handlers) Chat(c *gin.Context) {
	var req chatRequest
	if !h.bind(c, &req) {
		return
	}

	parsed := h.adapter.ParseMessage(req.Message)
	if parsed.Type == domain.CommandUnknown {
		h.renderError(c, errors.NewValidationError("Unknown command. Send help for the command list.", "message", req.Message))
		return
	}

	room := req.Room
	if room == "" {
		room = sourceHTTP
	}

	var (
		mu      sync.Mutex
		replies = []string{}
	)
	cmdCtx := domain.NewCommandContext(room, room, c.ClientIP(), req.Message, false)
	cmdCtx.Source = sourceHTTP
	cmdCtx.Reply = func(message string) error {
		mu.Lock()
		defer mu.Unlock()
		replies = append(replies, message)
		return nil
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if _, err := h.dispatcher.Publish(ctx, cmdCtx, command.CommandEvent{Type: parsed.Type, Params: parsed.Params}); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, chatResponse{Command: parsed.Type, Replies: replies})
}

func (h *Handlers) History(c *gin.Context) {
	if h.history == nil {
		h.renderError(c, errors.NewNotFoundError("Run history is disabled.", "history", ""))
		return
	}

	feature := domain.Feature(c.Query("feature"))
	if feature != "" && !feature.IsValid() {
		h.renderError(c, errors.NewValidationError("Unknown feature: "+string(feature), "feature", string(feature)))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, err := h.history.Recent(c.Request.Context(), feature, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// serve runs one demo call, records it and writes either the result or the error.
func serve[T any](h *Handlers, c *gin.Context, feature domain.Feature, input string,
	exec func(ctx context.Context) (T, error), render func(T) string) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	started := time.Now()
	result, err := exec(ctx)
	output := ""
	if err == nil && render != nil {
		output = render(result)
	}
	h.tracker.Track(ctx, feature, sourceHTTP, input, output, err, started)

	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) bind(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *Handlers) renderError(c *gin.Context, err error) {
	status := errors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": errors.UserMessage(err)})
}

func (h *Handlers) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}
