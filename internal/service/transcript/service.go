package transcript

import (
	"context"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/cache"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

// Service resolves links to transcripts and caches them.
type Service struct {
	source    Source
	languages []string
	cache     cache.Store
	logger    *zap.Logger
}

func NewService(source Source, languages []string, store cache.Store, logger *zap.Logger) *Service {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{
		source:    source,
		languages: languages,
		cache:     store,
		logger:    logger,
	}
}

// Fetch returns the transcript for a video id. Failures are mapped onto user-facing
// messages: disabled captions get their own message, anything else is reported as a
// fetch error with its cause.
func (s *Service) Fetch(ctx context.Context, videoID string) (*domain.Transcript, error) {
	key := videoID + ":" + strings.Join(s.languages, ",")
	t, err := cache.Remember(ctx, s.cache, s.logger, "transcript", key, constants.CacheTTL.Transcript,
		func(ctx context.Context) (*domain.Transcript, error) {
			return s.source.Fetch(ctx, videoID, s.languages)
		})
	if err == nil {
		s.logger.Info("Transcript fetched",
			zap.String("video_id", videoID),
			zap.String("source", t.Source),
			zap.String("language", t.Language),
			zap.Int("segments", len(t.Segments)),
		)
		return t, nil
	}

	if errors.Is(err, ErrTranscriptsDisabled) {
		return nil, errors.NewNotFoundError("This video does not have a transcript available.", "transcript", videoID)
	}
	var notFound *errors.NotFoundError
	if errors.As(err, &notFound) {
		return nil, err
	}
	return nil, errors.NewServiceError("Error fetching transcript", "transcript", "fetch", err)
}

// Text joins segment texts with single spaces.
func Text(t *domain.Transcript) string {
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}
