package domain

// WeatherResponse is the subset of the Weatherstack /current payload the demo reads.
type WeatherResponse struct {
	Location *WeatherLocation `json:"location,omitempty"`
	Current  *WeatherCurrent  `json:"current,omitempty"`
	Success  *bool            `json:"success,omitempty"`
	Error    *WeatherAPIError `json:"error,omitempty"`
}

type WeatherLocation struct {
	Name      string `json:"name"`
	Country   string `json:"country"`
	Region    string `json:"region"`
	LocalTime string `json:"localtime"`
}

type WeatherCurrent struct {
	Temperature         FlexFloat `json:"temperature"`
	WeatherDescriptions []string  `json:"weather_descriptions"`
	FeelsLike           FlexFloat `json:"feelslike"`
	Humidity            FlexFloat `json:"humidity"`
	WindSpeed           FlexFloat `json:"wind_speed"`
	ObservationTime     string    `json:"observation_time"`
}

type WeatherAPIError struct {
	Code int    `json:"code"`
	Type string `json:"type"`
	Info string `json:"info"`
}

// Description returns the first weather description, or "" when none was sent.
func (c *WeatherCurrent) Description() string {
	if c == nil || len(c.WeatherDescriptions) == 0 {
		return ""
	}
	return c.WeatherDescriptions[0]
}

// WeatherReport is what the weather demo returns. Summary is always set: the formatted
// line when current conditions were present, the raw upstream body otherwise.
type WeatherReport struct {
	City     string          `json:"city"`
	Summary  string          `json:"summary"`
	HasData  bool            `json:"has_data"`
	Current  *WeatherCurrent `json:"current,omitempty"`
	Location string          `json:"location,omitempty"`
}
