package transcript

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/util"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// CaptionsAPISource downloads captions through the YouTube Data API. It needs an OAuth
// token with the force-ssl scope.
type CaptionsAPISource struct {
	service *youtube.Service
	logger  *zap.Logger
}

// NewCaptionsAPISource loads the OAuth client config and a previously saved token.
// Returns nil when either file is missing so the caller can fall back to other sources.
func NewCaptionsAPISource(ctx context.Context, credentialsFile, tokenFile string, logger *zap.Logger) (*CaptionsAPISource, error) {
	if credentialsFile == "" || tokenFile == "" {
		return nil, nil
	}

	credBytes, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(credBytes, youtube.YoutubeForceSslScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	token, err := loadToken(tokenFile)
	if err != nil {
		logger.Warn("No saved YouTube token, captions API disabled", zap.String("file", tokenFile), zap.Error(err))
		return nil, nil
	}

	svc, err := youtube.NewService(ctx, option.WithHTTPClient(config.Client(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	logger.Info("YouTube captions API source initialized")
	return &CaptionsAPISource{service: svc, logger: logger}, nil
}

func NewCaptionsAPISourceWithService(svc *youtube.Service, logger *zap.Logger) *CaptionsAPISource {
	return &CaptionsAPISource{service: svc, logger: logger}
}

func (c *CaptionsAPISource) Name() string { return "captions_api" }

func (c *CaptionsAPISource) Fetch(ctx context.Context, videoID string, languages []string) (*domain.Transcript, error) {
	resp, err := c.service.Captions.List([]string{"snippet"}, videoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("captions list: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrTranscriptsDisabled
	}

	track, ok := pickLanguage(resp.Items,
		func(cp *youtube.Caption) string { return cp.Snippet.Language },
		func(cp *youtube.Caption) bool { return strings.EqualFold(cp.Snippet.TrackKind, "asr") },
		languages)
	if !ok {
		available := make([]string, len(resp.Items))
		for i, it := range resp.Items {
			available[i] = it.Snippet.Language
		}
		return nil, &NoTranscriptError{VideoID: videoID, Languages: languages, Available: available}
	}

	dl, err := c.service.Captions.Download(track.Id).Tfmt("srt").Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("captions download: %w", err)
	}
	defer dl.Body.Close()

	segments, err := ParseSRT(dl.Body)
	if err != nil {
		return nil, err
	}

	return &domain.Transcript{
		VideoID:  videoID,
		Language: track.Snippet.Language,
		Source:   c.Name(),
		Segments: segments,
	}, nil
}

// ParseSRT reads SubRip cues into segments.
func ParseSRT(r io.Reader) ([]domain.TranscriptSegment, error) {
	scanner := bufio.NewScanner(r)
	segments := make([]domain.TranscriptSegment, 0)

	var (
		start, end float64
		timed      bool
		lines      []string
	)
	flush := func() {
		if timed && len(lines) > 0 {
			segments = append(segments, domain.TranscriptSegment{
				Text:     util.CollapseWhitespace(strings.Join(lines, " ")),
				Start:    start,
				Duration: end - start,
			})
		}
		timed, lines = false, nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "\ufeff"))
		switch {
		case line == "":
			flush()
		case strings.Contains(line, "-->"):
			parts := strings.SplitN(line, "-->", 2)
			s, err1 := parseSRTTime(parts[0])
			e, err2 := parseSRTTime(parts[1])
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("bad SRT timing %q", line)
			}
			start, end, timed = s, e, true
		case !timed:
			// cue index
		default:
			lines = append(lines, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("SRT read: %w", err)
	}
	return segments, nil
}

// parseSRTTime parses "HH:MM:SS,mmm" into seconds.
func parseSRTTime(v string) (float64, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	parts := strings.Split(v, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	s, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}
	return float64(h*3600+m*60) + s, nil
}

func loadToken(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}
