package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/cache"
	"github.com/kapu/ai-demo-hub/internal/service/httpapi"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

// Service looks up current conditions on Weatherstack.
type Service struct {
	api    httpapi.Requester
	apiKey string
	cache  cache.Store
	logger *zap.Logger
}

func NewService(api httpapi.Requester, apiKey string, store cache.Store, logger *zap.Logger) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{
		api:    api,
		apiKey: apiKey,
		cache:  store,
		logger: logger,
	}
}

// Current returns the weather report for city. A payload without current conditions
// (Weatherstack reports errors with HTTP 200) is returned with its raw body as Summary.
func (s *Service) Current(ctx context.Context, city string) (*domain.WeatherReport, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, errors.NewValidationError("Please enter a city name!", "city", city)
	}

	key := strings.ToLower(city)
	return cache.Remember(ctx, s.cache, s.logger, "weather", key, constants.CacheTTL.Weather,
		func(ctx context.Context) (*domain.WeatherReport, error) {
			return s.fetch(ctx, city)
		})
}

// DisplayError renders a lookup failure the way the weather demo shows it.
func DisplayError(err error) string {
	var validationErr *errors.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	return "Error fetching weather: " + errors.UserMessage(err)
}

func (s *Service) fetch(ctx context.Context, city string) (*domain.WeatherReport, error) {
	params := url.Values{}
	params.Set("access_key", s.apiKey)
	params.Set("query", city)

	body, err := s.api.Get(ctx, "current", params)
	if err != nil {
		s.logger.Warn("Weather request failed", zap.String("city", city), zap.Error(err))
		return nil, err
	}

	return ParseReport(city, body)
}

// ParseReport turns a Weatherstack body into a report.
func ParseReport(city string, body []byte) (*domain.WeatherReport, error) {
	var payload domain.WeatherResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.NewAPIError("invalid weather response", "weatherstack", 200, nil).WithCause(err)
	}

	report := &domain.WeatherReport{City: city}
	if payload.Current == nil {
		report.Summary = strings.TrimSpace(string(body))
		return report, nil
	}

	report.HasData = true
	report.Current = payload.Current
	if payload.Location != nil {
		report.Location = strings.Trim(strings.Join([]string{payload.Location.Name, payload.Location.Country}, ", "), ", ")
	}
	report.Summary = FormatSummary(city, payload.Current)
	return report, nil
}

// FormatSummary renders "Weather in {city}: {temp}°C, {desc}".
func FormatSummary(city string, current *domain.WeatherCurrent) string {
	temp := strconv.FormatFloat(current.Temperature.Float64(), 'f', -1, 64)
	return fmt.Sprintf("Weather in %s: %s°C, %s", city, temp, current.Description())
}
