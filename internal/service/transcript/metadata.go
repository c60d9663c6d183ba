package transcript

import (
	"context"
	"fmt"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/cache"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// MetadataClient looks up video titles with an API key.
type MetadataClient struct {
	service *youtube.Service
	cache   cache.Store
	logger  *zap.Logger
}

func NewMetadataClient(ctx context.Context, apiKey string, store cache.Store, logger *zap.Logger, opts ...option.ClientOption) (*MetadataClient, error) {
	if apiKey == "" {
		return nil, nil
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	if store == nil {
		store = cache.Noop{}
	}
	return &MetadataClient{service: svc, cache: store, logger: logger}, nil
}

func (m *MetadataClient) VideoInfo(ctx context.Context, videoID string) (*domain.VideoInfo, error) {
	return cache.Remember(ctx, m.cache, m.logger, "video_info", videoID, constants.CacheTTL.VideoInfo,
		func(ctx context.Context) (*domain.VideoInfo, error) {
			resp, err := m.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
			if err != nil {
				return nil, fmt.Errorf("videos list: %w", err)
			}
			if len(resp.Items) == 0 {
				return nil, errors.NewNotFoundError("This video is unavailable.", "video", videoID)
			}
			snippet := resp.Items[0].Snippet
			return &domain.VideoInfo{
				VideoID:      videoID,
				Title:        snippet.Title,
				ChannelTitle: snippet.ChannelTitle,
				PublishedAt:  snippet.PublishedAt,
			}, nil
		})
}
