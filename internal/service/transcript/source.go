package transcript

import (
	"context"
	"fmt"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

// ErrTranscriptsDisabled means the video has no caption tracks at all.
var ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

// NoTranscriptError means captions exist but none in the requested languages.
type NoTranscriptError struct {
	VideoID   string
	Languages []string
	Available []string
}

func (e *NoTranscriptError) Error() string {
	return fmt.Sprintf("no transcript for %s in %s (available: %s)",
		e.VideoID, strings.Join(e.Languages, ", "), strings.Join(e.Available, ", "))
}

// Source fetches timed transcript segments for one video.
type Source interface {
	Name() string
	Fetch(ctx context.Context, videoID string, languages []string) (*domain.Transcript, error)
}

// FallbackSource tries each source in order and returns the first success.
// ErrTranscriptsDisabled from any source is final.
type FallbackSource struct {
	sources []Source
	logger  *zap.Logger
}

func NewFallbackSource(logger *zap.Logger, sources ...Source) *FallbackSource {
	active := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			active = append(active, s)
		}
	}
	return &FallbackSource{sources: active, logger: logger}
}

func (f *FallbackSource) Name() string {
	names := make([]string, len(f.sources))
	for i, s := range f.sources {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

func (f *FallbackSource) Fetch(ctx context.Context, videoID string, languages []string) (*domain.Transcript, error) {
	if len(f.sources) == 0 {
		return nil, fmt.Errorf("no transcript source configured")
	}

	var lastErr error
	for _, src := range f.sources {
		t, err := src.Fetch(ctx, videoID, languages)
		if err == nil {
			return t, nil
		}
		if errors.Is(err, ErrTranscriptsDisabled) || ctx.Err() != nil {
			return nil, err
		}
		f.logger.Warn("Transcript source failed, trying next",
			zap.String("source", src.Name()),
			zap.String("video_id", videoID),
			zap.Error(err),
		)
		lastErr = err
	}
	return nil, lastErr
}

// pickLanguage prefers manual tracks in language order, then auto-generated ones.
func pickLanguage[T any](tracks []T, lang func(T) string, generated func(T) bool, languages []string) (T, bool) {
	for _, wantGenerated := range []bool{false, true} {
		for _, want := range languages {
			for _, t := range tracks {
				if generated(t) == wantGenerated && strings.EqualFold(lang(t), want) {
					return t, true
				}
			}
		}
	}
	var zero T
	return zero, false
}
