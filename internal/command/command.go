package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/ai-demo-hub/internal/adapter"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/history"
	"github.com/kapu/ai-demo-hub/internal/service/hotel"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error
}

type SearchService interface {
	Search(ctx context.Context, query string) (*domain.SearchResponse, error)
}

type WeatherService interface {
	Current(ctx context.Context, city string) (*domain.WeatherReport, error)
}

type HotelService interface {
	Search(ctx context.Context, req hotel.SearchRequest) (*domain.HotelSearchResult, error)
}

type SentimentService interface {
	Analyze(ctx context.Context, text string) (*domain.SentimentReply, error)
}

type ReportService interface {
	Generate(ctx context.Context, topic string) (*domain.Report, error)
}

type SummaryService interface {
	Summarize(ctx context.Context, link string) (*domain.VideoSummary, error)
}

// Services are the demo backends shared by chat commands and the HTTP handlers.
type Services struct {
	Search    SearchService
	Weather   WeatherService
	Hotels    HotelService
	Sentiment SentimentService
	Report    ReportService
	Summary   SummaryService
}

type Dependencies struct {
	Services    *Services
	Formatter   *adapter.ResponseFormatter
	Tracker     *history.Tracker
	SendMessage func(ctx context.Context, room, message string) error
	Logger      *zap.Logger
}

func (d *Dependencies) reply(ctx context.Context, cmdCtx *domain.CommandContext, message string) error {
	if cmdCtx.Reply != nil {
		return cmdCtx.Reply(message)
	}
	if d.SendMessage == nil {
		return fmt.Errorf("no message sink for room %s", cmdCtx.Room)
	}
	return d.SendMessage(ctx, cmdCtx.Room, message)
}

// run executes one demo, tracks it and replies with either the output or the error text.
// Demo failures are answered in chat and are not returned as errors.
func (d *Dependencies) run(ctx context.Context, cmdCtx *domain.CommandContext, feature domain.Feature, input string,
	exec func(ctx context.Context) (string, error), errMessage func(error) string) error {
	started := time.Now()
	out, err := exec(ctx)
	d.Tracker.Track(ctx, feature, cmdCtx.Source, input, out, err, started)

	if err != nil {
		d.Logger.Warn("Command failed",
			zap.String("feature", string(feature)),
			zap.String("room", cmdCtx.Room),
			zap.Error(err),
		)
		if errMessage == nil {
			errMessage = errors.UserMessage
		}
		return d.reply(ctx, cmdCtx, d.Formatter.FormatError(errMessage(err)))
	}
	return d.reply(ctx, cmdCtx, out)
}

func stringParam(params map[string]any, key string) string {
	if v, ok := params[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func intParam(params map[string]any, key string) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	}
	return 0
}
