package sentiment

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/prompt"
	"github.com/kapu/ai-demo-hub/internal/service/ai"
	"github.com/kapu/ai-demo-hub/internal/util"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

// Service classifies a piece of feedback and drafts the matching reply.
type Service struct {
	generator ai.Generator
	prompts   *prompt.Prompts
	logger    *zap.Logger
}

func NewService(generator ai.Generator, prompts *prompt.Prompts, logger *zap.Logger) *Service {
	return &Service{
		generator: generator,
		prompts:   prompts,
		logger:    logger,
	}
}

// ParseSentiment reduces free-form model output to a label.
// "positive" is checked first so outputs mentioning both words stay positive.
// Anything unrecognised falls back to negative.
func ParseSentiment(raw string) (domain.Sentiment, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(normalized, string(domain.SentimentPositive)):
		return domain.SentimentPositive, true
	case strings.Contains(normalized, string(domain.SentimentNegative)):
		return domain.SentimentNegative, true
	default:
		return domain.SentimentNegative, false
	}
}

func (s *Service) Analyze(ctx context.Context, text string) (*domain.SentimentReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewValidationError("Please enter some feedback text.", "text", text)
	}
	if len([]rune(text)) > constants.AIInputLimits.MaxTextLength {
		return nil, errors.NewValidationError(
			fmt.Sprintf("Feedback is limited to %d characters.", constants.AIInputLimits.MaxTextLength), "text", len(text))
	}

	raw, _, err := s.generator.GenerateText(ctx,
		s.prompts.SentimentClassify(prompt.SentimentClassifyVars{UserText: text}),
		ai.PresetPrecise, nil)
	if err != nil {
		return nil, errors.NewServiceError("sentiment classification failed", "sentiment", "classify", err)
	}

	label, ok := ParseSentiment(raw)
	if !ok {
		s.logger.Warn("Unrecognised sentiment, defaulting to negative",
			zap.String("raw", util.Preview(raw, constants.StringLimits.LogPreview)))
	}

	reply, _, err := s.generator.GenerateText(ctx,
		s.prompts.SentimentReply(prompt.SentimentReplyVars{Sentiment: string(label)}),
		ai.PresetCreative, nil)
	if err != nil {
		return nil, errors.NewServiceError("sentiment reply failed", "sentiment", "reply", err)
	}

	s.logger.Info("Sentiment analyzed",
		zap.String("label", string(label)),
		zap.Int("text_len", len(text)),
	)

	return &domain.SentimentReply{
		Text:     text,
		Label:    label,
		RawLabel: strings.TrimSpace(raw),
		Reply:    strings.TrimSpace(reply),
	}, nil
}
