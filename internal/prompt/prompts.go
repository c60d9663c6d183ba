package prompt

import "go.uber.org/zap"

// Prompts renders every demo prompt, falling back to inline text when a template breaks.
// A nil catalog renders fallbacks only.
type Prompts struct {
	catalog *Catalog
	logger  *zap.Logger
}

func NewPrompts(catalog *Catalog, logger *zap.Logger) *Prompts {
	return &Prompts{catalog: catalog, logger: logger}
}

// NewDefaultPrompts uses the shared embedded catalog.
func NewDefaultPrompts(logger *zap.Logger) *Prompts {
	catalog, err := DefaultCatalog()
	if err != nil {
		logger.Warn("Prompt templates unavailable, using inline prompts", zap.Error(err))
	}
	return NewPrompts(catalog, logger)
}

func (p *Prompts) SentimentClassify(v SentimentClassifyVars) string {
	return p.render(TemplateSentimentClassify, v, FallbackSentimentClassify(v))
}

func (p *Prompts) SentimentReply(v SentimentReplyVars) string {
	return p.render(TemplateSentimentReply, v, FallbackSentimentReply(v))
}

func (p *Prompts) Essay(v EssayVars) string {
	return p.render(TemplateEssay, v, FallbackEssay(v))
}

func (p *Prompts) Feedback(v FeedbackVars) string {
	return p.render(TemplateFeedback, v, FallbackFeedback(v))
}

func (p *Prompts) Overall(v OverallVars) string {
	return p.render(TemplateOverall, v, FallbackOverall(v))
}

func (p *Prompts) VideoSummary(v VideoSummaryVars) string {
	return p.render(TemplateVideoSummary, v, FallbackVideoSummary(v))
}

func (p *Prompts) render(name TemplateName, data any, fallback string) string {
	if p.catalog == nil {
		return fallback
	}
	text, err := p.catalog.Render(name, data)
	if err != nil {
		p.logger.Warn("Prompt template failed, using fallback",
			zap.String("template", string(name)),
			zap.Error(err),
		)
		return fallback
	}
	return text
}
