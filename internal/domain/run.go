package domain

import "time"

type Feature string

const (
	FeatureSearch    Feature = "search"
	FeatureWeather   Feature = "weather"
	FeatureHotels    Feature = "hotels"
	FeatureSentiment Feature = "sentiment"
	FeatureReport    Feature = "report"
	FeatureSummary   Feature = "summary"
)

// Run is one recorded demo invocation.
type Run struct {
	ID        string        `json:"id"`
	Feature   Feature       `json:"feature"`
	Input     string        `json:"input"`
	Output    string        `json:"output"`
	Error     string        `json:"error,omitempty"`
	Source    string        `json:"source"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

func (f Feature) IsValid() bool {
	switch f {
	case FeatureSearch, FeatureWeather, FeatureHotels, FeatureSentiment, FeatureReport, FeatureSummary:
		return true
	default:
		return false
	}
}
