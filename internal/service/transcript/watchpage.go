package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/httpapi"
	"github.com/kapu/ai-demo-hub/internal/util"
	"github.com/kapu/ai-demo-hub/pkg/errors"
)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

// WatchPageSource reads the caption track list embedded in the public watch page and
// downloads the chosen timedtext track. No credentials are needed.
type WatchPageSource struct {
	api httpapi.Requester
}

func NewWatchPageSource(api httpapi.Requester) *WatchPageSource {
	return &WatchPageSource{api: api}
}

func (w *WatchPageSource) Name() string { return "watch_page" }

func (w *WatchPageSource) Fetch(ctx context.Context, videoID string, languages []string) (*domain.Transcript, error) {
	page, err := w.api.Get(ctx, "watch", url.Values{"v": {videoID}})
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	tracks, err := ParseCaptionTracks(page)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		if bytes.Contains(page, []byte(`"playabilityStatus":{"status":"ERROR"`)) {
			return nil, errors.NewNotFoundError("This video is unavailable.", "video", videoID)
		}
		return nil, ErrTranscriptsDisabled
	}

	track, ok := pickLanguage(tracks,
		func(t captionTrack) string { return t.LanguageCode },
		func(t captionTrack) bool { return t.Kind == "asr" },
		languages)
	if !ok {
		available := make([]string, len(tracks))
		for i, t := range tracks {
			available[i] = t.LanguageCode
		}
		return nil, &NoTranscriptError{VideoID: videoID, Languages: languages, Available: available}
	}

	body, err := w.api.Get(ctx, track.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}

	segments, err := ParseTimedText(body)
	if err != nil {
		return nil, err
	}

	return &domain.Transcript{
		VideoID:  videoID,
		Language: track.LanguageCode,
		Source:   w.Name(),
		Segments: segments,
	}, nil
}

const captionTracksKey = `"captionTracks":`

// ParseCaptionTracks extracts the captionTracks array from a watch page.
// A page without the key yields an empty list.
func ParseCaptionTracks(page []byte) ([]captionTrack, error) {
	idx := bytes.Index(page, []byte(captionTracksKey))
	if idx < 0 {
		return nil, nil
	}

	raw, ok := balancedArray(page[idx+len(captionTracksKey):])
	if !ok {
		return nil, fmt.Errorf("captionTracks array is truncated")
	}

	var tracks []captionTrack
	if err := json.Unmarshal(raw, &tracks); err != nil {
		return nil, fmt.Errorf("captionTracks decode: %w", err)
	}
	return tracks, nil
}

// balancedArray returns the JSON array at the start of b, honouring nested brackets
// and string literals.
func balancedArray(b []byte) ([]byte, bool) {
	if len(b) == 0 || b[0] != '[' {
		return nil, false
	}
	depth := 0
	inString := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return b[:i+1], true
			}
		}
	}
	return nil, false
}

// ParseTimedText reads both the legacy <text start dur> format and the srv3 <p t d> format.
func ParseTimedText(body []byte) ([]domain.TranscriptSegment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("timedtext parse: %w", err)
	}

	segments := make([]domain.TranscriptSegment, 0)
	doc.Find("text").Each(func(_ int, sel *goquery.Selection) {
		if seg, ok := segmentFrom(sel, "start", "dur", 1); ok {
			segments = append(segments, seg)
		}
	})
	if len(segments) == 0 {
		doc.Find("p").Each(func(_ int, sel *goquery.Selection) {
			if seg, ok := segmentFrom(sel, "t", "d", 1000); ok {
				segments = append(segments, seg)
			}
		})
	}
	return segments, nil
}

func segmentFrom(sel *goquery.Selection, startAttr, durAttr string, divisor float64) (domain.TranscriptSegment, bool) {
	// timedtext escapes entities twice
	text := util.CollapseWhitespace(html.UnescapeString(sel.Text()))
	if text == "" {
		return domain.TranscriptSegment{}, false
	}
	return domain.TranscriptSegment{
		Text:     text,
		Start:    attrFloat(sel, startAttr) / divisor,
		Duration: attrFloat(sel, durAttr) / divisor,
	}, true
}

func attrFloat(sel *goquery.Selection, name string) float64 {
	v, _ := sel.Attr(name)
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
