package transcript

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const sampleSRT = "1\n00:00:01,000 --> 00:00:03,500\nWelcome to\nKyoto\n\n2\n00:00:04,000 --> 00:00:06,000\nRamen first.\n"

type fakeCaptionsAPI struct {
	list         string
	listStatus   int
	download     string
	downloadedID string
}

func (f *fakeCaptionsAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/youtube/v3/captions":
			assert.Equal(t, "abc123", r.URL.Query().Get("videoId"))
			w.Header().Set("Content-Type", "application/json")
			if f.listStatus != 0 {
				w.WriteHeader(f.listStatus)
			}
			_, _ = w.Write([]byte(f.list))
		case strings.HasPrefix(r.URL.Path, "/youtube/v3/captions/"):
			f.downloadedID = strings.TrimPrefix(r.URL.Path, "/youtube/v3/captions/")
			assert.Equal(t, "srt", r.URL.Query().Get("tfmt"))
			assert.Equal(t, "media", r.URL.Query().Get("alt"))
			_, _ = w.Write([]byte(f.download))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func newCaptionsSource(t *testing.T, fake *fakeCaptionsAPI) *CaptionsAPISource {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	svc, err := youtube.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return NewCaptionsAPISourceWithService(svc, zap.NewNop())
}

func TestCaptionsAPISourcePrefersManualTrack(t *testing.T) {
	fake := &fakeCaptionsAPI{
		list: `{"items":[
			{"id":"asr-en","snippet":{"language":"en","trackKind":"asr"}},
			{"id":"manual-en","snippet":{"language":"en","trackKind":"standard"}}
		]}`,
		download: sampleSRT,
	}
	src := newCaptionsSource(t, fake)

	tr, err := src.Fetch(context.Background(), "abc123", []string{"en"})
	require.NoError(t, err)
	assert.Equal(t, "manual-en", fake.downloadedID)
	assert.Equal(t, "captions_api", tr.Source)
	assert.Equal(t, "en", tr.Language)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, "Welcome to Kyoto", tr.Segments[0].Text)
	assert.InDelta(t, 2.5, tr.Segments[0].Duration, 1e-9)
}

func TestCaptionsAPISourceNoTracks(t *testing.T) {
	src := newCaptionsSource(t, &fakeCaptionsAPI{list: `{"items":[]}`})

	_, err := src.Fetch(context.Background(), "abc123", []string{"en"})
	assert.ErrorIs(t, err, ErrTranscriptsDisabled)
}

func TestCaptionsAPISourceWrongLanguage(t *testing.T) {
	src := newCaptionsSource(t, &fakeCaptionsAPI{
		list: `{"items":[{"id":"ko","snippet":{"language":"ko","trackKind":"standard"}}]}`,
	})

	_, err := src.Fetch(context.Background(), "abc123", []string{"en"})
	var noTranscript *NoTranscriptError
	require.ErrorAs(t, err, &noTranscript)
	assert.Equal(t, []string{"ko"}, noTranscript.Available)
}

func TestCaptionsAPISourceListFailure(t *testing.T) {
	src := newCaptionsSource(t, &fakeCaptionsAPI{
		list:       `{"error":{"code":403,"message":"forbidden"}}`,
		listStatus: http.StatusForbidden,
	})

	_, err := src.Fetch(context.Background(), "abc123", []string{"en"})
	assert.ErrorContains(t, err, "captions list")
}

func TestCaptionsAPISourceMalformedSRT(t *testing.T) {
	src := newCaptionsSource(t, &fakeCaptionsAPI{
		list:     `{"items":[{"id":"en","snippet":{"language":"en","trackKind":"standard"}}]}`,
		download: "1\nnot a time --> either\nhello\n",
	})

	_, err := src.Fetch(context.Background(), "abc123", []string{"en"})
	assert.ErrorContains(t, err, "bad SRT timing")
}
