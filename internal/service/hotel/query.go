package hotel

import (
	"strings"
	"time"

	"github.com/kapu/ai-demo-hub/internal/constants"
	"github.com/kapu/ai-demo-hub/internal/domain"
	"github.com/kapu/ai-demo-hub/internal/util"
	"github.com/kapu/ai-demo-hub/pkg/errors"
)

// SearchRequest is the raw user input for a hotel search. Empty dates and zero counts
// take the defaults: check-in tomorrow, check-out the day after, 1 room, 2 adults.
type SearchRequest struct {
	City     string `json:"city" form:"city"`
	CheckIn  string `json:"checkin" form:"checkin"`
	CheckOut string `json:"checkout" form:"checkout"`
	Rooms    int    `json:"rooms" form:"rooms"`
	Adults   int    `json:"adults" form:"adults"`
}

// BuildQuery validates req against today's date and returns the normalized query.
// Checks run in the order the form reports them: dates first, then the city.
func BuildQuery(req SearchRequest, now time.Time) (domain.HotelQuery, error) {
	today := util.StartOfDay(now)

	checkIn := util.DaysFrom(now, 1)
	if strings.TrimSpace(req.CheckIn) != "" {
		parsed, err := parseDate(req.CheckIn, now.Location())
		if err != nil {
			return domain.HotelQuery{}, errors.NewValidationError("Check-in date must use the YYYY-MM-DD format.", "checkin", req.CheckIn)
		}
		checkIn = parsed
	}

	checkOut := checkIn.AddDate(0, 0, 1)
	if strings.TrimSpace(req.CheckOut) != "" {
		parsed, err := parseDate(req.CheckOut, now.Location())
		if err != nil {
			return domain.HotelQuery{}, errors.NewValidationError("Check-out date must use the YYYY-MM-DD format.", "checkout", req.CheckOut)
		}
		checkOut = parsed
	} else if strings.TrimSpace(req.CheckIn) == "" {
		checkOut = util.DaysFrom(now, 2)
	}

	if checkIn.Before(today) {
		return domain.HotelQuery{}, errors.NewValidationError("Check-in date cannot be in the past!", "checkin", req.CheckIn)
	}
	if !checkOut.After(checkIn) {
		return domain.HotelQuery{}, errors.NewValidationError("Check-out date must be after check-in date!", "checkout", req.CheckOut)
	}

	city := strings.TrimSpace(req.City)
	if city == "" {
		return domain.HotelQuery{}, errors.NewValidationError("Please enter a city name!", "city", req.City)
	}

	rooms := req.Rooms
	if rooms == 0 {
		rooms = constants.HotelConfig.DefaultRooms
	}
	adults := req.Adults
	if adults == 0 {
		adults = constants.HotelConfig.DefaultAdults
	}
	if rooms < 1 {
		return domain.HotelQuery{}, errors.NewValidationError("Rooms must be at least 1.", "rooms", req.Rooms)
	}
	if adults < 1 {
		return domain.HotelQuery{}, errors.NewValidationError("Adults must be at least 1.", "adults", req.Adults)
	}

	return domain.HotelQuery{
		City:     city,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Rooms:    rooms,
		Adults:   adults,
	}, nil
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(constants.HotelConfig.DateLayout, strings.TrimSpace(value), loc)
}
