package hotel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/service/cache"
	"github.com/kapu/ai-demo-hub/internal/service/httpapi"
	"github.com/kapu/ai-demo-hub/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

type fakeMakcorps struct {
	mapping    string
	mappingSts int
	city       string
	citySts    int
	cityQuery  map[string]string
}

func (f *fakeMakcorps) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/mapping":
			assert.Equal(t, "map-key", r.URL.Query().Get("api_key"))
			writeStatus(w, f.mappingSts)
			_, _ = w.Write([]byte(f.mapping))
		case "/city":
			f.cityQuery = map[string]string{}
			for k := range r.URL.Query() {
				f.cityQuery[k] = r.URL.Query().Get(k)
			}
			writeStatus(w, f.citySts)
			_, _ = w.Write([]byte(f.city))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func writeStatus(w http.ResponseWriter, status int) {
	if status != 0 {
		w.WriteHeader(status)
	}
}

func newTestService(t *testing.T, fake *fakeMakcorps) *Service {
	t.Helper()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	api := httpapi.NewClient("makcorps", server.URL, server.Client(), zap.NewNop(), httpapi.WithMaxAttempts(1))
	svc := NewService(api, Config{APIKey: "hotel-key", MappingAPIKey: "map-key"}, nil, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestLookupCityIDEmptyMappingIsAbsent(t *testing.T) {
	svc := newTestService(t, &fakeMakcorps{mapping: `[]`})

	id, found, err := svc.LookupCityID(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, id)
}

func TestLookupCityIDTakesFirstEntry(t *testing.T) {
	svc := newTestService(t, &fakeMakcorps{mapping: `[{"document_id":"60763","name":"New York"},{"document_id":"1"}]`})

	id, found, err := svc.LookupCityID(context.Background(), "New York")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "60763", id)
}

func TestLookupCityIDRejectsGarbledMapping(t *testing.T) {
	svc := newTestService(t, &fakeMakcorps{mapping: `<html>maintenance</html>`})

	_, _, err := svc.LookupCityID(context.Background(), "Paris")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, errors.StatusCode(err))
}

func TestLookupCityIDNotFoundIsAbsent(t *testing.T) {
	svc := newTestService(t, &fakeMakcorps{mapping: `{"message":"no such city"}`, mappingSts: http.StatusNotFound})

	_, found, err := svc.LookupCityID(context.Background(), "Paris")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLookupCityIDRejectedKeyIsAnError(t *testing.T) {
	svc := newTestService(t, &fakeMakcorps{mapping: `{"message":"invalid key"}`, mappingSts: http.StatusUnauthorized})

	_, found, err := svc.LookupCityID(context.Background(), "Paris")
	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.False(t, found)
}

// newCachedService answers each request with the next scripted response for its path.
func newCachedService(t *testing.T, responses map[string][]scripted) (*Service, *miniredis.Miniredis, map[string]int) {
	t.Helper()
	calls := map[string]int{}
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		n := calls[r.URL.Path]
		calls[r.URL.Path]++
		mu.Unlock()

		script := responses[r.URL.Path]
		resp := script[min(n, len(script)-1)]
		w.WriteHeader(resp.status)
		_, _ = w.Write([]byte(resp.body))
	}))
	t.Cleanup(server.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := cache.NewCacheServiceWithClient(client, zap.NewNop())

	api := httpapi.NewClient("makcorps", server.URL, server.Client(), zap.NewNop(), httpapi.WithMaxAttempts(1))
	svc := NewService(api, Config{APIKey: "hotel-key", MappingAPIKey: "map-key"}, store, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, mr, calls
}

type scripted struct {
	status int
	body   string
}

func TestLookupCityIDQuotaFailureIsNotCached(t *testing.T) {
	svc, mr, calls := newCachedService(t, map[string][]scripted{
		"/mapping": {
			{http.StatusTooManyRequests, `{"message":"quota exceeded"}`},
			{http.StatusOK, `[{"document_id":"60763"}]`},
		},
	})
	ctx := context.Background()

	_, _, err := svc.LookupCityID(ctx, "New York")
	require.Error(t, err)
	assert.Empty(t, mr.Keys())

	id, found, err := svc.LookupCityID(ctx, "New York")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "60763", id)
	assert.Equal(t, 2, calls["/mapping"])

	_, _, err = svc.LookupCityID(ctx, "New York")
	require.NoError(t, err)
	assert.Equal(t, 2, calls["/mapping"])
}

func TestSearchRejectedListingIsNotCached(t *testing.T) {
	svc, _, calls := newCachedService(t, map[string][]scripted{
		"/mapping": {{http.StatusOK, `[{"document_id":"1"}]`}},
		"/city": {
			{http.StatusTooManyRequests, `{"success":false,"message":"API limit reached"}`},
			{http.StatusOK, `[{"name":"Hotel Roma","price1":"120"}]`},
		},
	})
	ctx := context.Background()

	first, err := svc.Search(ctx, SearchRequest{City: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, "API limit reached", first.Message)

	second, err := svc.Search(ctx, SearchRequest{City: "Rome"})
	require.NoError(t, err)
	require.Len(t, second.Hotels, 1)
	assert.Equal(t, "Hotel Roma", second.Hotels[0].Name)
	assert.Equal(t, 2, calls["/city"])
	assert.Equal(t, 1, calls["/mapping"])
}

func TestSearchParsesLongErrorBodies(t *testing.T) {
	message := strings.Repeat("한도 초과 ", 1000)
	body := fmt.Sprintf(`{"success":false,"message":%q}`, message)
	svc := newTestService(t, &fakeMakcorps{mapping: `[{"document_id":"1"}]`, city: body, citySts: http.StatusForbidden})

	result, err := svc.Search(context.Background(), SearchRequest{City: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, message, result.Message)
}

func TestSearchUnknownCity(t *testing.T) {
	svc := newTestService(t, &fakeMakcorps{mapping: `[]`})

	_, err := svc.Search(context.Background(), SearchRequest{City: "Atlantis"})
	var notFound *errors.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Could not find city: Atlantis. Please try another city name.", notFound.Message)
}

func TestSearchListsTopTenWithBadges(t *testing.T) {
	var hotels []string
	for i := 0; i < 12; i++ {
		hotels = append(hotels, fmt.Sprintf(`{"name":"Hotel %d","price1":"%d","vendor1":"Booking.com","reviews":{"rating":%.1f,"count":%d},"geocode":{"latitude":48.85,"longitude":2.35}}`, i, 100+i, 3.5+float64(i%3)*0.5, 10*i))
	}
	fake := &fakeMakcorps{
		mapping: `[{"document_id":187147}]`,
		city:    "[" + strings.Join(append([]string{`{"telephone":"+33 1 23"}`}, hotels...), ",") + "]",
	}
	svc := newTestService(t, fake)

	result, err := svc.Search(context.Background(), SearchRequest{City: " Paris ", CheckIn: "2025-06-20", CheckOut: "2025-06-22", Rooms: 2, Adults: 3})
	require.NoError(t, err)

	assert.Equal(t, "Paris", result.City)
	assert.Equal(t, "187147", result.CityID)
	assert.Equal(t, 13, result.Total)
	require.Len(t, result.Hotels, 10)
	assert.Empty(t, result.Message)

	first := result.Hotels[0]
	assert.Equal(t, "N/A", first.Name)
	assert.Equal(t, "N/A", first.Price)
	assert.Equal(t, "Book Now", first.Vendor)
	assert.Equal(t, "+33 1 23", first.Telephone)
	assert.Equal(t, 0.0, first.Rating)
	assert.Nil(t, first.Latitude)

	assert.Equal(t, domain.BadgeNone, result.Hotels[1].Badge)     // 3.5
	assert.Equal(t, domain.BadgeGreat, result.Hotels[2].Badge)    // 4.0
	assert.Equal(t, domain.BadgeTopRated, result.Hotels[3].Badge) // 4.5
	assert.Equal(t, "101", result.Hotels[2].Price)
	require.NotNil(t, result.Hotels[2].Latitude)
	assert.Equal(t, 48.85, *result.Hotels[2].Latitude)

	assert.Equal(t, map[string]string{
		"cityid":     "187147",
		"pagination": "0",
		"cur":        "USD",
		"rooms":      "2",
		"adults":     "3",
		"checkin":    "2025-06-20",
		"checkout":   "2025-06-22",
		"api_key":    "hotel-key",
	}, fake.cityQuery)
}

func TestSearchErrorObjectShowsMessage(t *testing.T) {
	svc := newTestService(t, &fakeMakcorps{mapping: `[{"document_id":"1"}]`, city: `{"success":false,"message":"API limit reached"}`})

	result, err := svc.Search(context.Background(), SearchRequest{City: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, "API limit reached", result.Message)
	assert.Empty(t, result.Hotels)
}

func TestSearchErrorObjectWithoutMessage(t *testing.T) {
	svc := newTestService(t, &fakeMakcorps{mapping: `[{"document_id":"1"}]`, city: `{"success":false}`, citySts: http.StatusPaymentRequired})

	result, err := svc.Search(context.Background(), SearchRequest{City: "Rome"})
	require.NoError(t, err)
	assert.Equal(t, "No hotels found", result.Message)
}

func TestSearchNoHotels(t *testing.T) {
	for _, body := range []string{`[]`, `{"status":"ok"}`, `null`} {
		svc := newTestService(t, &fakeMakcorps{mapping: `[{"document_id":"1"}]`, city: body})

		result, err := svc.Search(context.Background(), SearchRequest{City: "Oslo"})
		require.NoError(t, err, body)
		assert.Equal(t, "No hotels found in Oslo for your search criteria.", result.Message, body)
	}
}

func TestSearchDefaultsDates(t *testing.T) {
	fake := &fakeMakcorps{mapping: `[{"document_id":"1"}]`, city: `[]`}
	svc := newTestService(t, fake)

	result, err := svc.Search(context.Background(), SearchRequest{City: "Oslo"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-11", result.CheckIn)
	assert.Equal(t, "2025-06-12", result.CheckOut)
	assert.Equal(t, 1, result.Rooms)
	assert.Equal(t, 2, result.Adults)
}

func TestBuildQueryValidation(t *testing.T) {
	tests := []struct {
		name string
		req  SearchRequest
		msg  string
	}{
		{"checkout equals checkin", SearchRequest{City: "Paris", CheckIn: "2025-06-20", CheckOut: "2025-06-20"}, "Check-out date must be after check-in date!"},
		{"checkout before checkin", SearchRequest{City: "Paris", CheckIn: "2025-06-20", CheckOut: "2025-06-19"}, "Check-out date must be after check-in date!"},
		{"date check wins over blank city", SearchRequest{City: "", CheckIn: "2025-06-20", CheckOut: "2025-06-19"}, "Check-out date must be after check-in date!"},
		{"blank city", SearchRequest{City: "   "}, "Please enter a city name!"},
		{"past checkin", SearchRequest{City: "Paris", CheckIn: "2025-06-09", CheckOut: "2025-06-12"}, "Check-in date cannot be in the past!"},
		{"bad date", SearchRequest{City: "Paris", CheckIn: "20/06/2025"}, "Check-in date must use the YYYY-MM-DD format."},
		{"negative rooms", SearchRequest{City: "Paris", Rooms: -1}, "Rooms must be at least 1."},
		{"negative adults", SearchRequest{City: "Paris", Adults: -2}, "Adults must be at least 1."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildQuery(tt.req, fixedNow)
			var validationErr *errors.ValidationError
			require.True(t, errors.As(err, &validationErr), "got %v", err)
			assert.Equal(t, tt.msg, validationErr.Message)
		})
	}
}

func TestBuildQueryCheckInTodayAllowed(t *testing.T) {
	q, err := BuildQuery(SearchRequest{City: "Paris", CheckIn: "2025-06-10"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-11", q.CheckOut.Format("2006-01-02"))
}

func TestBadge(t *testing.T) {
	assert.Equal(t, domain.BadgeTopRated, Badge(4.5))
	assert.Equal(t, domain.BadgeTopRated, Badge(5))
	assert.Equal(t, domain.BadgeGreat, Badge(4.0))
	assert.Equal(t, domain.BadgeGreat, Badge(4.49))
	assert.Equal(t, domain.BadgeNone, Badge(3.99))
}
