package adapter

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/util"
)

// ResponseFormatter renders demo results as chat text.
// Replies fall back to plain text when a template cannot render.
type ResponseFormatter struct {
	prefix  string
	replies *template.Template
}

func NewResponseFormatter(prefix string) *ResponseFormatter {
	if strings.TrimSpace(prefix) == "" {
		prefix = "!"
	}
	replies, _ := parseReplyTemplates(prefix)
	return &ResponseFormatter{prefix: prefix, replies: replies}
}

func (f *ResponseFormatter) FormatHelp() string {
	return f.render("help.tmpl", nil,
		fmt.Sprintf("%shelp: search, weather, hotels, sentiment, report, summarize", f.prefix))
}

func (f *ResponseFormatter) FormatError(message string) string {
	return fmt.Sprintf("❌ %s", message)
}

func (f *ResponseFormatter) FormatSearch(resp *domain.SearchResponse) string {
	if resp == nil {
		return f.FormatError("No good search results found.")
	}
	return f.render("search.tmpl", resp, resp.Summary)
}

// FormatWeather returns the weather line unchanged; raw upstream bodies are passed through.
func (f *ResponseFormatter) FormatWeather(report *domain.WeatherReport) string {
	if report == nil {
		return f.FormatError("No weather data.")
	}
	return util.TruncateString(report.Summary, constants.StringLimits.ChatReply)
}

func (f *ResponseFormatter) FormatHotels(result *domain.HotelSearchResult) string {
	if result == nil {
		return f.FormatError("No hotels found")
	}
	return f.render("hotels.tmpl", result, result.Message)
}

func (f *ResponseFormatter) FormatSentiment(reply *domain.SentimentReply) string {
	return f.render("sentiment.tmpl", reply, reply.Reply)
}

func (f *ResponseFormatter) FormatReport(report *domain.Report) string {
	return f.render("report.tmpl", report, report.Essay)
}

func (f *ResponseFormatter) FormatSummary(summary *domain.VideoSummary) string {
	return f.render("summary.tmpl", summary, summary.Summary)
}

func (f *ResponseFormatter) render(name string, data any, fallback string) string {
	text, err := executeReply(f.replies, name, data)
	if err != nil {
		text = fallback
	}
	return util.TruncateString(text, constants.StringLimits.ChatReply)
}
