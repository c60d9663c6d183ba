package constants

import "time"

var CacheTTL = struct {
	Weather      time.Duration
	CityMapping  time.Duration
	HotelListing time.Duration
	SearchResult time.Duration
	Transcript   time.Duration
	VideoInfo    time.Duration
}{
	Weather:      10 * time.Minute, // 현재 날씨
	CityMapping:  24 * time.Hour,   // 도시명 → city id
	HotelListing: 30 * time.Minute, // 호텔 목록
	SearchResult: 10 * time.Minute,
	Transcript:   2 * time.Hour,
	VideoInfo:    6 * time.Hour,
}

var WebSocketConfig = struct {
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}{
	MaxReconnectAttempts: 5,
	ReconnectDelay:       5 * time.Second,
}

var AIInputLimits = struct {
	MaxQueryLength  int
	MaxTextLength   int
	MaxTopicLength  int
	MaxContextChars int
}{
	MaxQueryLength:  500,
	MaxTextLength:   4000,
	MaxTopicLength:  300,
	MaxContextChars: 12000,
}

var RetryConfig = struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
}{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	Jitter:      250 * time.Millisecond,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,                // 3회 연속 실패 시 Circuit OPEN
	ResetTimeout:        30 * time.Second, // 기본 재시도 대기 시간
	RateLimitTimeout:    1 * time.Hour,    // 429 Rate Limit 전용 타임아웃
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var APIConfig = struct {
	WeatherstackBaseURL string
	MakcorpsBaseURL     string
	DuckDuckGoBaseURL   string
	YouTubeBaseURL      string
	HTTPTimeout         time.Duration
	UserAgent           string
}{
	WeatherstackBaseURL: "http://api.weatherstack.com",
	MakcorpsBaseURL:     "https://api.makcorps.com",
	DuckDuckGoBaseURL:   "https://html.duckduckgo.com/html/",
	YouTubeBaseURL:      "https://www.youtube.com",
	HTTPTimeout:         15 * time.Second,
	UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
}

var HotelConfig = struct {
	DisplayLimit    int
	Currency        string
	DefaultRooms    int
	DefaultAdults   int
	TopRatedRating  float64
	GreatRating     float64
	DateLayout      string
	PaginationStart int
}{
	DisplayLimit:    10,
	Currency:        "USD",
	DefaultRooms:    1,
	DefaultAdults:   2,
	TopRatedRating:  4.5,
	GreatRating:     4.0,
	DateLayout:      "2006-01-02",
	PaginationStart: 0,
}

var RetrievalConfig = struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	Question     string
	EmbedWorkers int
}{
	ChunkSize:    1000,
	ChunkOverlap: 200,
	TopK:         4,
	Question:     "Summarize this YouTube video.",
	EmbedWorkers: 4,
}

var SearchConfig = struct {
	MaxResults int
}{
	MaxResults: 5,
}

var StringLimits = struct {
	ChatReply      int
	HistoryPreview int
	LogPreview     int
	ErrorBody      int
}{
	ChatReply:      3500,
	HistoryPreview: 2000,
	LogPreview:     200,
	ErrorBody:      4096,
}
