package transcript

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kapu/ai-demo-hub/internal/service/httpapi"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const timedText = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.0" dur="1.5">Welcome to the &amp;#39;city&amp;#39; tour</text>
<text start="1.5" dur="2.25">today we
visit Kyoto</text>
<text start="3.75" dur="1"></text>
</transcript>`

func watchPage(baseURL string) string {
	return fmt.Sprintf(`<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[`+
		`{"baseUrl":"%[1]s/api/timedtext?v=abc&lang=ko","name":{"runs":[{"text":"Korean [auto]"}]},"languageCode":"ko","kind":"asr"},`+
		`{"baseUrl":"%[1]s/api/timedtext?v=abc&lang=en","name":{"simpleText":"English ]["},"languageCode":"en"}`+
		`],"audioTracks":[]}}};</script></html>`, baseURL)
}

func newWatchServer(t *testing.T, page func(base string) string) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			_, _ = w.Write([]byte(page(server.URL)))
		case "/api/timedtext":
			assert.Equal(t, "en", r.URL.Query().Get("lang"))
			_, _ = w.Write([]byte(timedText))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestWatchPageSourceFetch(t *testing.T) {
	server := newWatchServer(t, watchPage)
	src := NewWatchPageSource(httpapi.NewClient("youtube", server.URL, server.Client(), zap.NewNop()))

	tr, err := src.Fetch(context.Background(), "abc", []string{"en"})
	require.NoError(t, err)

	assert.Equal(t, "en", tr.Language)
	assert.Equal(t, "watch_page", tr.Source)
	require.Len(t, tr.Segments, 2)
	assert.Equal(t, "Welcome to the 'city' tour", tr.Segments[0].Text)
	assert.Equal(t, "today we visit Kyoto", tr.Segments[1].Text)
	assert.Equal(t, 1.5, tr.Segments[1].Start)
	assert.Equal(t, 2.25, tr.Segments[1].Duration)
	assert.Equal(t, "Welcome to the 'city' tour today we visit Kyoto", Text(tr))
}

func TestWatchPageSourceDisabled(t *testing.T) {
	server := newWatchServer(t, func(string) string { return `<html>no captions here</html>` })
	src := NewWatchPageSource(httpapi.NewClient("youtube", server.URL, server.Client(), zap.NewNop()))

	_, err := src.Fetch(context.Background(), "abc", []string{"en"})
	assert.ErrorIs(t, err, ErrTranscriptsDisabled)
}

func TestWatchPageSourceMissingLanguage(t *testing.T) {
	server := newWatchServer(t, watchPage)
	src := NewWatchPageSource(httpapi.NewClient("youtube", server.URL, server.Client(), zap.NewNop()))

	_, err := src.Fetch(context.Background(), "abc", []string{"de"})
	var noTranscript *NoTranscriptError
	require.True(t, errors.As(err, &noTranscript))
	assert.Equal(t, []string{"ko", "en"}, noTranscript.Available)
}

func TestPickLanguagePrefersManualTracks(t *testing.T) {
	tracks := []captionTrack{
		{LanguageCode: "en", Kind: "asr", BaseURL: "auto"},
		{LanguageCode: "ko", BaseURL: "manual-ko"},
		{LanguageCode: "en", BaseURL: "manual-en"},
	}
	got, ok := pickLanguage(tracks,
		func(t captionTrack) string { return t.LanguageCode },
		func(t captionTrack) bool { return t.Kind == "asr" },
		[]string{"en", "ko"})
	require.True(t, ok)
	assert.Equal(t, "manual-en", got.BaseURL)
}

func TestParseTimedTextSrv3(t *testing.T) {
	body := `<timedtext format="3"><body><p t="1000" d="2500">Hello</p><p t="3500" d="500">world</p></body></timedtext>`
	segs, err := ParseTimedText([]byte(body))
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, 1.0, segs[0].Start)
	assert.Equal(t, 2.5, segs[0].Duration)
}

func TestParseSRT(t *testing.T) {
	srt := "1\n00:00:00,000 --> 00:00:02,500\nHello there\n\n2\n00:01:02,000 --> 00:01:03,000\nsecond\nline\n"
	segs, err := ParseSRT(strings.NewReader(srt))
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "Hello there", segs[0].Text)
	assert.Equal(t, 2.5, segs[0].Duration)
	assert.Equal(t, 62.0, segs[1].Start)
	assert.Equal(t, "second line", segs[1].Text)
}
