package hotel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/cache"
	"github.com/kapu/ai-demo-hub/internal/service/httpapi"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"go.uber.org/zap"
)

type Config struct {
	APIKey        string
	MappingAPIKey string
}

// Service resolves a city name to a Makcorps city id and lists hotels for it.
type Service struct {
	api    httpapi.Requester
	cfg    Config
	cache  cache.Store
	now    func() time.Time
	logger *zap.Logger
}

func NewService(api httpapi.Requester, cfg Config, store cache.Store, logger *zap.Logger) *Service {
	if store == nil {
		store = cache.Noop{}
	}
	return &Service{
		api:    api,
		cfg:    cfg,
		cache:  store,
		now:    time.Now,
		logger: logger,
	}
}

// LookupCityID returns the document id of the first mapping entry. found is false when
// the API answered with no entries. Only resolved ids are cached.
func (s *Service) LookupCityID(ctx context.Context, name string) (string, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false, errors.NewValidationError("Please enter a city name!", "city", name)
	}

	id, err := cache.RememberIf(ctx, s.cache, s.logger, "hotel:mapping", strings.ToLower(name), constants.CacheTTL.CityMapping,
		func(id string) bool { return id != "" },
		func(ctx context.Context) (string, error) {
			return s.fetchCityID(ctx, name)
		})
	if err != nil {
		return "", false, err
	}
	return id, id != "", nil
}

func (s *Service) fetchCityID(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("api_key", s.cfg.MappingAPIKey)
	params.Set("name", name)

	var entries []domain.CityMapping
	if err := s.api.GetJSON(ctx, "mapping", params, &entries); err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return "", nil
		}
		s.logger.Warn("City mapping failed", zap.String("city", name), zap.Error(err))
		return "", err
	}

	return FirstCityID(entries), nil
}

// FirstCityID returns the document_id of the first mapping entry, or "" for none.
func FirstCityID(entries []domain.CityMapping) string {
	if len(entries) == 0 {
		return ""
	}
	return strings.TrimSpace(entries[0].DocumentID.String())
}

// Listing is the decoded /city response: a list of hotels, an error object, or neither.
type Listing struct {
	Hotels  []domain.Hotel `json:"hotels"`
	IsList  bool           `json:"is_list"`
	Failed  bool           `json:"failed"`
	Message string         `json:"message"`
}

func (s *Service) fetchListing(ctx context.Context, cityID string, q domain.HotelQuery) (*Listing, error) {
	params := url.Values{}
	params.Set("cityid", cityID)
	params.Set("pagination", strconv.Itoa(constants.HotelConfig.PaginationStart))
	params.Set("cur", constants.HotelConfig.Currency)
	params.Set("rooms", strconv.Itoa(q.Rooms))
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("checkin", q.CheckIn.Format(constants.HotelConfig.DateLayout))
	params.Set("checkout", q.CheckOut.Format(constants.HotelConfig.DateLayout))
	params.Set("api_key", s.cfg.APIKey)

	body, err := s.api.Get(ctx, "city", params)
	if err != nil {
		// Makcorps reports quota and key problems as 4xx JSON objects.
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && len(apiErr.Body) > 0 {
			return ParseListing(apiErr.Body), nil
		}
		return nil, err
	}
	return ParseListing(body), nil
}

// ParseListing classifies a /city response body.
func ParseListing(body []byte) *Listing {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return &Listing{}
	}

	switch trimmed[0] {
	case '[':
		var hotels []domain.Hotel
		if err := json.Unmarshal(trimmed, &hotels); err != nil {
			return &Listing{}
		}
		return &Listing{Hotels: hotels, IsList: true}
	case '{':
		var obj struct {
			Success *bool  `json:"success"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return &Listing{}
		}
		if obj.Success != nil && !*obj.Success {
			msg := obj.Message
			if msg == "" {
				msg = "No hotels found"
			}
			return &Listing{Failed: true, Message: msg}
		}
	}
	return &Listing{}
}

// Search runs the whole hotel flow: validate, map the city, list hotels, build cards.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*domain.HotelSearchResult, error) {
	q, err := BuildQuery(req, s.now())
	if err != nil {
		return nil, err
	}

	cityID, found, err := s.LookupCityID(ctx, q.City)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("Could not find city: %s. Please try another city name.", q.City), "city", q.City)
	}

	s.logger.Info("City resolved", zap.String("city", q.City), zap.String("city_id", cityID))

	listingKey := fmt.Sprintf("%s:%s:%s:%d:%d", cityID,
		q.CheckIn.Format(constants.HotelConfig.DateLayout), q.CheckOut.Format(constants.HotelConfig.DateLayout), q.Rooms, q.Adults)
	result, err := cache.RememberIf(ctx, s.cache, s.logger, "hotel:city", listingKey, constants.CacheTTL.HotelListing,
		func(l *Listing) bool { return l.IsList },
		func(ctx context.Context) (*Listing, error) {
			return s.fetchListing(ctx, cityID, q)
		})
	if err != nil {
		return nil, err
	}

	out := &domain.HotelSearchResult{
		City:     q.City,
		CityID:   cityID,
		CheckIn:  q.CheckIn.Format(constants.HotelConfig.DateLayout),
		CheckOut: q.CheckOut.Format(constants.HotelConfig.DateLayout),
		Rooms:    q.Rooms,
		Adults:   q.Adults,
		Hotels:   []domain.HotelCard{},
	}

	switch {
	case result.IsList && len(result.Hotels) > 0:
		out.Total = len(result.Hotels)
		out.Hotels = BuildCards(result.Hotels, constants.HotelConfig.DisplayLimit)
	case result.Failed:
		out.Message = result.Message
	default:
		out.Message = fmt.Sprintf("No hotels found in %s for your search criteria.", q.City)
	}

	return out, nil
}

// BuildCards converts the first limit listings into display cards.
func BuildCards(hotels []domain.Hotel, limit int) []domain.HotelCard {
	if limit > 0 && len(hotels) > limit {
		hotels = hotels[:limit]
	}

	cards := make([]domain.HotelCard, 0, len(hotels))
	for i, h := range hotels {
		card := domain.HotelCard{
			Rank:      i + 1,
			Name:      valueOr(h.Name, "N/A"),
			Telephone: h.Telephone,
			Price:     valueOr(h.Price1.String(), "N/A"),
			Vendor:    valueOr(h.Vendor1, "Book Now"),
		}
		if h.Reviews != nil {
			card.Rating = h.Reviews.Rating.Float64()
			card.ReviewCount = int(h.Reviews.Count.Float64())
		}
		card.Badge = Badge(card.Rating)
		if h.Geocode != nil {
			lat, lon := h.Geocode.Latitude.Float64(), h.Geocode.Longitude.Float64()
			card.Latitude = &lat
			card.Longitude = &lon
		}
		cards = append(cards, card)
	}
	return cards
}

// Badge labels ratings of 4.5 and above "Top Rated" and 4.0 and above "Great".
func Badge(rating float64) domain.HotelBadge {
	switch {
	case rating >= constants.HotelConfig.TopRatedRating:
		return domain.BadgeTopRated
	case rating >= constants.HotelConfig.GreatRating:
		return domain.BadgeGreat
	default:
		return domain.BadgeNone
	}
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
