package command

import (
	"context"
	"strings"

	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/hotel"
	"github.com/kapu/ai-demo-hub/internal/service/weather"
)

type SearchCommand struct {
	deps *Dependencies
}

func NewSearchCommand(deps *Dependencies) *SearchCommand {
	return &SearchCommand{deps: deps}
}

func (c *SearchCommand) Name() string { return "search" }

func (c *SearchCommand) Description() string { return "웹 검색 결과를 요약합니다" }

func (c *SearchCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	query := stringParam(params, "query")
	return c.deps.run(ctx, cmdCtx, domain.FeatureSearch, query, func(ctx context.Context) (string, error) {
		resp, err := c.deps.Services.Search.Search(ctx, query)
		if err != nil {
			return "", err
		}
		return c.deps.Formatter.FormatSearch(resp), nil
	}, nil)
}

type WeatherCommand struct {
	deps *Dependencies
}

func NewWeatherCommand(deps *Dependencies) *WeatherCommand {
	return &WeatherCommand{deps: deps}
}

func (c *WeatherCommand) Name() string { return "weather" }

func (c *WeatherCommand) Description() string { return "현재 날씨를 조회합니다" }

func (c *WeatherCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	city := stringParam(params, "city")
	return c.deps.run(ctx, cmdCtx, domain.FeatureWeather, city, func(ctx context.Context) (string, error) {
		report, err := c.deps.Services.Weather.Current(ctx, city)
		if err != nil {
			return "", err
		}
		return c.deps.Formatter.FormatWeather(report), nil
	}, weather.DisplayError)
}

type HotelsCommand struct {
	deps *Dependencies
}

func NewHotelsCommand(deps *Dependencies) *HotelsCommand {
	return &HotelsCommand{deps: deps}
}

func (c *HotelsCommand) Name() string { return "hotels" }

func (c *HotelsCommand) Description() string { return "호텔을 검색합니다" }

func (c *HotelsCommand) Execute(ctx context.Context, cmdCtx *domain.CommandContext, params map[string]any) error {
	req := hotel.SearchRequest{
		City:     stringParam(params, "city"),
		CheckIn:  stringParam(params, "checkin"),
		CheckOut: stringParam(params, "checkout"),
		Rooms:    intParam(params, "rooms"),
		Adults:   intParam(params, "adults"),
	}
	input := strings.TrimSpace(strings.Join([]string{req.City, req.CheckIn, req.CheckOut}, " "))

	return c.deps.run(ctx, cmdCtx, domain.FeatureHotels, input, func(ctx context.Context) (string, error) {
		result, err := c.deps.Services.Hotels.Search(ctx, req)
		if err != nil {
			return "", err
		}
		return c.deps.Formatter.FormatHotels(result), nil
	}, nil)
}
