package command

import (
	"context"

	"github.com/kapu/ai-demo-hub/internal/domain"
)

type SentimentCommand struct {
	deps *Dependencies
}

func NewSentimentCommand(deps *Dependencies) *SentimentCommand {
	return &SentimentCommand{deps: deps}
}

func (c *SentimentCommand) Name() string { return "sentiment" }

func (c *SentimentCommand) Description() string { return "피드백 감정을 분류하고 답장을 작성합니다" }

func (c *SentimentCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	text := stringParam(params, "text")
	return c.deps.run(ctx, cmdCtx, domain.FeatureSentiment, text, func(ctx context.Context) (string, error) {
		reply, err := c.deps.Services.Sentiment.Analyze(ctx, text)
		if err != nil {
			return "", err
		}
		return c.deps.Formatter.FormatSentiment(reply), nil
	}, nil)
}

type ReportCommand struct {
	deps *Dependencies
}

func NewReportCommand(deps *Dependencies) *ReportCommand {
	return &ReportCommand{deps: deps}
}

func (c *ReportCommand) Name() string { return "report" }

func (c *ReportCommand) Description() string { return "주제로 에세이를 쓰고 평가합니다" }

func (c *ReportCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	topic := stringParam(params, "topic")
	return c.deps.run(ctx, cmdCtx, domain.FeatureReport, topic, func(ctx context.Context) (string, error) {
		report, err := c.deps.Services.Report.Generate(ctx, topic)
		if err != nil {
			return "", err
		}
		return c.deps.Formatter.FormatReport(report), nil
	}, nil)
}

type SummarizeCommand struct {
	deps *Dependencies
}

func NewSummarizeCommand(deps *Dependencies) *SummarizeCommand {
	return &SummarizeCommand{deps: deps}
}

func (c *SummarizeCommand) Name() string { return "summarize" }

func (c *SummarizeCommand) Description() string { return "유튜브 영상을 요약합니다" }

func (c *SummarizeCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	link := stringParam(params, "link")
	return c.deps.run(ctx, cmdCtx, domain.FeatureSummary, link, func(ctx context.Context) (string, error) {
		summary, err := c.deps.Services.Summary.Summarize(ctx, link)
		if err != nil {
			return "", err
		}
		return c.deps.Formatter.FormatSummary(summary), nil
	}, nil)
}

// RegisterAll registers every chat command on the registry.
func RegisterAll(registry *Registry, deps *Dependencies) {
	registry.Register(NewHelpCommand(deps))
	registry.Register(NewSearchCommand(deps))
	registry.Register(NewWeatherCommand(deps))
	registry.Register(NewHotelsCommand(deps))
	registry.Register(NewSentimentCommand(deps))
	registry.Register(NewReportCommand(deps))
	registry.Register(NewSummarizeCommand(deps))
}
