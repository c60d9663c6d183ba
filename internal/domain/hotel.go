package domain

import "time"

// CityMapping is one entry of the Makcorps /mapping response.
type CityMapping struct {
	DocumentID FlexString `json:"document_id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
}

// Hotel is one listing from the Makcorps /city response.
type Hotel struct {
	Name      string        `json:"name"`
	Telephone string        `json:"telephone,omitempty"`
	Price1    FlexString    `json:"price1"`
	Vendor1   string        `json:"vendor1"`
	Reviews   *HotelReviews `json:"reviews,omitempty"`
	Geocode   *Geocode      `json:"geocode,omitempty"`
}

type HotelReviews struct {
	Rating FlexFloat `json:"rating"`
	Count  FlexFloat `json:"count"`
}

type Geocode struct {
	Latitude  FlexFloat `json:"latitude"`
	Longitude FlexFloat `json:"longitude"`
}

// HotelQuery is a validated hotel search request.
type HotelQuery struct {
	City     string    `json:"city"`
	CheckIn  time.Time `json:"checkin"`
	CheckOut time.Time `json:"checkout"`
	Rooms    int       `json:"rooms"`
	Adults   int       `json:"adults"`
}

type HotelBadge string

const (
	BadgeNone     HotelBadge = ""
	BadgeTopRated HotelBadge = "Top Rated"
	BadgeGreat    HotelBadge = "Great"
)

// HotelCard is a listing prepared for display.
type HotelCard struct {
	Rank        int        `json:"rank"`
	Name        string     `json:"name"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
	Telephone   string     `json:"telephone,omitempty"`
	Price       string     `json:"price"`
	Vendor      string     `json:"vendor"`
	Badge       HotelBadge `json:"badge,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
}

type HotelSearchResult struct {
	City     string      `json:"city"`
	CityID   string      `json:"city_id"`
	CheckIn  string      `json:"checkin"`
	CheckOut string      `json:"checkout"`
	Rooms    int         `json:"rooms"`
	Adults   int         `json:"adults"`
	Total    int         `json:"total"`
	Hotels   []HotelCard `json:"hotels"`
	Message  string      `json:"message,omitempty"`
}
