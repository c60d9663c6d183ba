package command

import (
	"context"
	"testing"

	"github.com/kapu/ai-demo-hub/internal/adapter"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/history"
	"github.com/kapu/ai-demo-hub/internal/service/hotel"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWeather struct{ err error }

func (f fakeWeather) Current(_ context.Context, city string) (*domain.WeatherReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.WeatherReport{City: city, Summary: "Weather in " + city + ": 21°C, Sunny", HasData: true}, nil
}

type fakeHotels struct{ got hotel.SearchRequest }

func (f *fakeHotels) Search(_ context.Context, req hotel.SearchRequest) (*domain.HotelSearchResult, error) {
	f.got = req
	return &domain.HotelSearchResult{City: req.City, Message: "No hotels found in " + req.City + " for your search criteria."}, nil
}

type fakeSentiment struct{}

func (fakeSentiment) Analyze(_ context.Context, text string) (*domain.SentimentReply, error) {
	if text == "" {
		return nil, errors.NewValidationError("Please enter some feedback text.", "text", text)
	}
	return &domain.SentimentReply{Text: text, Label: domain.SentimentPositive, Reply: "Thank you!"}, nil
}

type recorder struct {
	runs []*domain.Run
}

func (r *recorder) Record(_ context.Context, run *domain.Run) error {
	r.runs = append(r.runs, run)
	return nil
}

func (r *recorder) Recent(context.Context, domain.Feature, int) ([]domain.Run, error) { return nil, nil }

type harness struct {
	dispatcher Dispatcher
	registry   *Registry
	hotels     *fakeHotels
	runs       *recorder
	sent       []string
}

func newHarness(weatherErr error) *harness {
	h := &harness{hotels: &fakeHotels{}, runs: &recorder{}}
	deps := &Dependencies{
		Services: &Services{
			Weather:   fakeWeather{err: weatherErr},
			Hotels:    h.hotels,
			Sentiment: fakeSentiment{},
		},
		Formatter: adapter.NewResponseFormatter("!"),
		Tracker:   history.NewTracker(h.runs, zap.NewNop()),
		SendMessage: func(_ context.Context, room, message string) error {
			h.sent = append(h.sent, room+"|"+message)
			return nil
		},
		Logger: zap.NewNop(),
	}
	h.registry = NewRegistry()
	RegisterAll(h.registry, deps)
	h.dispatcher = NewSequentialDispatcher(h.registry, nil)
	return h
}

func (h *harness) publish(t *testing.T, msg string) int {
	t.Helper()
	parsed := adapter.NewMessageAdapter("!").ParseMessage(msg)
	cmdCtx := domain.NewCommandContext("room-1", "Travel", "kapu", msg, true)
	n, err := h.dispatcher.Publish(context.Background(), cmdCtx, CommandEvent{Type: parsed.Type, Params: parsed.Params})
	require.NoError(t, err)
	return n
}

func TestRegistryNames(t *testing.T) {
	h := newHarness(nil)
	assert.Equal(t, 7, h.registry.Count())
	assert.Equal(t, []string{"help", "hotels", "report", "search", "sentiment", "summarize", "weather"}, h.registry.Names())
}

func TestRegistryUnknownKey(t *testing.T) {
	err := NewRegistry().Execute(context.Background(), &domain.CommandContext{}, "dance", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestWeatherCommand(t *testing.T) {
	h := newHarness(nil)
	assert.Equal(t, 1, h.publish(t, "!weather Seoul"))

	require.Len(t, h.sent, 1)
	assert.Equal(t, "room-1|Weather in Seoul: 21°C, Sunny", h.sent[0])
	require.Len(t, h.runs.runs, 1)
	assert.Equal(t, domain.FeatureWeather, h.runs.runs[0].Feature)
	assert.Equal(t, "kakao", h.runs.runs[0].Source)
}

func TestWeatherCommandError(t *testing.T) {
	h := newHarness(errors.NewAPIError("Server error: 503", "weatherstack", 503, nil))
	h.publish(t, "!weather Seoul")

	require.Len(t, h.sent, 1)
	assert.Equal(t, "room-1|❌ Error fetching weather: Server error: 503", h.sent[0])
	assert.Equal(t, "Server error: 503", h.runs.runs[0].Error)
}

func TestHotelsCommandPassesArguments(t *testing.T) {
	h := newHarness(nil)
	h.publish(t, "!hotels New York 2025-07-01 2025-07-03 1 2")

	assert.Equal(t, hotel.SearchRequest{City: "New York", CheckIn: "2025-07-01", CheckOut: "2025-07-03", Rooms: 1, Adults: 2}, h.hotels.got)
	assert.Contains(t, h.sent[0], "No hotels found in New York for your search criteria.")
}

func TestSentimentValidationIsAnsweredInChat(t *testing.T) {
	h := newHarness(nil)
	h.publish(t, "!sentiment")

	assert.Equal(t, "room-1|❌ Please enter some feedback text.", h.sent[0])
}

func TestUnknownCommandIsSkipped(t *testing.T) {
	h := newHarness(nil)
	assert.Equal(t, 0, h.publish(t, "hello there"))
	assert.Empty(t, h.sent)
}

func TestReplyOverride(t *testing.T) {
	h := newHarness(nil)

	var collected []string
	cmdCtx := &domain.CommandContext{Room: "http", Source: "http", Reply: func(m string) error {
		collected = append(collected, m)
		return nil
	}}
	_, err := h.dispatcher.Publish(context.Background(), cmdCtx, CommandEvent{Type: domain.CommandHelp})
	require.NoError(t, err)

	require.Len(t, collected, 1)
	assert.Contains(t, collected[0], "!weather [city]")
	assert.Empty(t, h.sent)
}

func TestIntParam(t *testing.T) {
	params := map[string]any{"a": 2, "b": float64(3), "c": " 4 ", "d": "x"}
	assert.Equal(t, 2, intParam(params, "a"))
	assert.Equal(t, 3, intParam(params, "b"))
	assert.Equal(t, 4, intParam(params, "c"))
	assert.Equal(t, 0, intParam(params, "d"))
	assert.Equal(t, 0, intParam(params, "missing"))
}
