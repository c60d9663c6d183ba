package adapter

import (
	"strings"
	"testing"

	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFormatHelpUsesPrefix(t *testing.T) {
	out := NewResponseFormatter("/").FormatHelp()
	assert.Contains(t, out, "/weather [city]")
	assert.Contains(t, out, "/summarize [link]")
}

func TestFormatHotels(t *testing.T) {
	f := NewResponseFormatter("!")
	out := f.FormatHotels(&domain.HotelSearchResult{
		City: "Paris", CheckIn: "2025-07-01", CheckOut: "2025-07-04", Rooms: 1, Adults: 2, Total: 25,
		Hotels: []domain.HotelCard{
			{Rank: 1, Name: "Hotel Lumiere", Rating: 4.6, ReviewCount: 812, Price: "$210", Vendor: "Booking.com", Badge: domain.BadgeTopRated},
			{Rank: 2, Name: "N/A", Price: "N/A", Vendor: "Book Now"},
		},
	})

	assert.Contains(t, out, "Showing 2 of 25")
	assert.Contains(t, out, "1. Hotel Lumiere [Top Rated]")
	assert.Contains(t, out, "⭐ 4.6 (812 reviews)")
	assert.Contains(t, out, "2. N/A\n")
	assert.Contains(t, out, "💰 N/A · Book Now")
}

func TestFormatHotelsMessage(t *testing.T) {
	out := NewResponseFormatter("!").FormatHotels(&domain.HotelSearchResult{
		City: "Atlantis", Message: "No hotels found in Atlantis for your search criteria.",
	})
	assert.True(t, strings.HasSuffix(out, "No hotels found in Atlantis for your search criteria."))
}

func TestFormatReport(t *testing.T) {
	out := NewResponseFormatter("!").FormatReport(&domain.Report{
		Topic:     "Rail",
		Essay:     "Trains are great.",
		Depth:     &domain.Feedback{Feedback: "ok", Score: 7},
		Grammar:   &domain.Feedback{Feedback: "clean", Score: 9},
		Structure: &domain.Feedback{Feedback: "fine", Score: 7},
		AvgScore:  7.67,
		Overall:   &domain.OverallFeedback{Feedback: "Good", Evaluation: domain.EvaluationApproved},
	})
	assert.Contains(t, out, "Grammar (9/10): clean")
	assert.Contains(t, out, "Average: 7.67")
	assert.Contains(t, out, "✅ approved: Good")
}

func TestFormatReportFallsBackOnIncompleteState(t *testing.T) {
	out := NewResponseFormatter("!").FormatReport(&domain.Report{Topic: "Rail", Essay: "Trains."})
	assert.Equal(t, "Trains.", out)
}

func TestFormatSentimentAndSummary(t *testing.T) {
	f := NewResponseFormatter("!")

	out := f.FormatSentiment(&domain.SentimentReply{Label: domain.SentimentNegative, Reply: "We are sorry."})
	assert.Equal(t, "🙏 Sentiment: negative\n\nWe are sorry.", out)

	out = f.FormatSummary(&domain.VideoSummary{VideoID: "abc", Summary: "A walk."})
	assert.Equal(t, "🎥 abc\n\nA walk.", out)

	out = f.FormatSummary(&domain.VideoSummary{VideoID: "abc", Summary: "A walk.", Info: &domain.VideoInfo{Title: "Kyoto", ChannelTitle: "Walks"}})
	assert.True(t, strings.HasPrefix(out, "🎥 Kyoto (Walks)"))
}

func TestFormatWeatherPassesSummary(t *testing.T) {
	out := NewResponseFormatter("!").FormatWeather(&domain.WeatherReport{Summary: "Weather in Seoul: 21°C, Sunny"})
	assert.Equal(t, "Weather in Seoul: 21°C, Sunny", out)
}

func TestFormatReportNotApproved(t *testing.T) {
	out := NewResponseFormatter("!").FormatReport(&domain.Report{
		Topic:     "Rail",
		Essay:     "Trains.",
		Depth:     &domain.Feedback{Score: 3},
		Grammar:   &domain.Feedback{Score: 4},
		Structure: &domain.Feedback{Score: 2},
		AvgScore:  3,
		Overall:   &domain.OverallFeedback{Feedback: "Too short", Evaluation: domain.EvaluationNotApproved},
	})
	assert.Contains(t, out, "❌ not approved: Too short")
}

func TestFormatSentimentPositive(t *testing.T) {
	out := NewResponseFormatter("!").FormatSentiment(&domain.SentimentReply{Label: domain.SentimentPositive, Reply: "Thank you!"})
	assert.Equal(t, "😊 Sentiment: positive\n\nThank you!", out)
}

func TestFormatterWithoutRepliesUsesPlainText(t *testing.T) {
	f := &ResponseFormatter{prefix: "!"}
	assert.Equal(t, "!help: search, weather, hotels, sentiment, report, summarize", f.FormatHelp())
	assert.Equal(t, "Thank you!", f.FormatSentiment(&domain.SentimentReply{Label: domain.SentimentPositive, Reply: "Thank you!"}))
}
