package summary

import (
	"context"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/prompt"
	"github.com/kapu/ai-demo-hub/internal/service/ai"
	"github.com/kapu/ai-demo-hub/internal/service/retrieval"
	"github.com/kapu/ai-demo-hub/internal/service/transcript"
	"github.com/kapu/ai-demo-hub/internal/util"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (*domain.Transcript, error)
}

type ContextRetriever interface {
	Retrieve(ctx context.Context, namespace, text, question string) (*retrieval.Result, error)
}

type VideoInfoFetcher interface {
	VideoInfo(ctx context.Context, videoID string) (*domain.VideoInfo, error)
}

// Service answers "summarize this video" for a YouTube link.
type Service struct {
	transcripts TranscriptFetcher
	retriever   ContextRetriever
	generator   ai.Generator
	prompts     *prompt.Prompts
	videoInfo   VideoInfoFetcher
	logger      *zap.Logger
}

func NewService(transcripts TranscriptFetcher, retriever ContextRetriever, generator ai.Generator, prompts *prompt.Prompts, logger *zap.Logger) *Service {
	return &Service{
		transcripts: transcripts,
		retriever:   retriever,
		generator:   generator,
		prompts:     prompts,
		logger:      logger,
	}
}

// WithVideoInfo attaches an optional title lookup. Lookup failures never fail a summary.
func (s *Service) WithVideoInfo(f VideoInfoFetcher) *Service {
	s.videoInfo = f
	return s
}

func (s *Service) Summarize(ctx context.Context, link string) (*domain.VideoSummary, error) {
	videoID, err := transcript.ExtractVideoID(link)
	if err != nil {
		return nil, err
	}

	t, err := s.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	text := transcript.Text(t)
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewNotFoundError("This video does not have a transcript available.", "transcript", videoID)
	}

	question := constants.RetrievalConfig.Question
	res, err := s.retriever.Retrieve(ctx, videoID, text, question)
	if err != nil {
		return nil, errors.NewServiceError("transcript indexing failed", "summary", "retrieve", err)
	}

	contextText := util.TruncateString(strings.Join(res.Context, "\n\n"), constants.AIInputLimits.MaxContextChars)
	out, meta, err := s.generator.GenerateText(ctx,
		s.prompts.VideoSummary(prompt.VideoSummaryVars{Context: contextText, Question: question}),
		ai.PresetBalanced, nil)
	if err != nil {
		return nil, errors.NewServiceError("summary generation failed", "summary", "generate", err)
	}

	summary := &domain.VideoSummary{
		VideoID: videoID,
		Summary: strings.TrimSpace(out),
		Chunks:  res.Chunks,
		Context: res.Context,
	}
	if meta != nil {
		summary.Provider = meta.Provider
	}

	if s.videoInfo != nil {
		info, err := s.videoInfo.VideoInfo(ctx, videoID)
		if err != nil {
			s.logger.Warn("Video info lookup failed", zap.String("video_id", videoID), zap.Error(err))
		} else {
			summary.Info = info
		}
	}

	s.logger.Info("Video summarized",
		zap.String("video_id", videoID),
		zap.Int("chunks", res.Chunks),
		zap.Int("context", len(res.Context)),
	)
	return summary, nil
}
