package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kapu/ai-demo-hub/internal/constants"
)

type Config struct {
	Server      ServerConfig
	LLM         LLMConfig
	Gemini      GeminiConfig
	OpenAI      OpenAIConfig
	HuggingFace HuggingFaceConfig
	Weather     WeatherConfig
	Hotel       HotelConfig
	Search      SearchConfig
	YouTube     YouTubeConfig
	Retrieval   RetrievalConfig
	Report      ReportConfig
	Redis       RedisConfig
	Postgres    PostgresConfig
	Iris        IrisConfig
	Logging     LoggingConfig
	Bot         BotConfig
}

type ServerConfig struct {
	Addr           string
	GinMode        string
	RequestTimeout time.Duration
}

// LLMConfig selects which hosted model answers first and which one embeds text.
type LLMConfig struct {
	Primary           string
	EmbeddingProvider string
}

type GeminiConfig struct {
	APIKey         string
	Model          string
	EmbeddingModel string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type HuggingFaceConfig struct {
	Token          string
	Model          string
	EmbeddingModel string
}

type WeatherConfig struct {
	APIKey  string
	BaseURL string
}

type HotelConfig struct {
	APIKey        string
	MappingAPIKey string
	BaseURL       string
}

type SearchConfig struct {
	BaseURL    string
	MaxResults int
}

type YouTubeConfig struct {
	APIKey           string
	OAuthCredentials string
	OAuthToken       string
	Languages        []string
}

type RetrievalConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	ChromaURL    string
}

type ReportConfig struct {
	ParallelFeedback bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type PostgresConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type IrisConfig struct {
	Enabled bool
	BaseURL string
	WSURL   string
}

type LoggingConfig struct {
	Level string
	File  string
}

type BotConfig struct {
	Prefix string
}

const (
	ProviderGemini      = "gemini"
	ProviderOpenAI      = "openai"
	ProviderHuggingFace = "huggingface"
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			GinMode:        getEnv("GIN_MODE", "release"),
			RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,
		},
		LLM: LLMConfig{
			Primary:           strings.ToLower(getEnv("LLM_PRIMARY", ProviderGemini)),
			EmbeddingProvider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", ProviderGemini)),
		},
		Gemini: GeminiConfig{
			APIKey:         getEnv("GEMINI_API_KEY", ""),
			Model:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-5-mini"),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		HuggingFace: HuggingFaceConfig{
			Token:          getEnv("HUGGINGFACEHUB_API_TOKEN", ""),
			Model:          getEnv("HF_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
			EmbeddingModel: getEnv("HF_EMBEDDING_MODEL", "sentence-transformers/all-MiniLM-L6-v2"),
		},
		Weather: WeatherConfig{
			APIKey:  getEnv("WEATHER_API_KEY", "YOUR_WEATHERSTACK_KEY"),
			BaseURL: getEnv("WEATHER_BASE_URL", constants.APIConfig.WeatherstackBaseURL),
		},
		Hotel: HotelConfig{
			APIKey:        getEnv("HOTEL_API_KEY", "HOTEL_API_KEY"),
			MappingAPIKey: getEnv("MAPPING_API_KEY", "MAPPING_API_KEY"),
			BaseURL:       getEnv("HOTEL_BASE_URL", constants.APIConfig.MakcorpsBaseURL),
		},
		Search: SearchConfig{
			BaseURL:    getEnv("SEARCH_BASE_URL", constants.APIConfig.DuckDuckGoBaseURL),
			MaxResults: getEnvInt("SEARCH_MAX_RESULTS", constants.SearchConfig.MaxResults),
		},
		YouTube: YouTubeConfig{
			APIKey:           getEnv("YOUTUBE_API_KEY", ""),
			OAuthCredentials: getEnv("YOUTUBE_OAUTH_CREDENTIALS", ""),
			OAuthToken:       getEnv("YOUTUBE_OAUTH_TOKEN", ""),
			Languages:        parseCommaSeparated(getEnv("TRANSCRIPT_LANGUAGES", "en")),
		},
		Retrieval: RetrievalConfig{
			ChunkSize:    getEnvInt("CHUNK_SIZE", constants.RetrievalConfig.ChunkSize),
			ChunkOverlap: getEnvInt("CHUNK_OVERLAP", constants.RetrievalConfig.ChunkOverlap),
			TopK:         getEnvInt("RETRIEVAL_TOP_K", constants.RetrievalConfig.TopK),
			ChromaURL:    getEnv("CHROMA_URL", ""),
		},
		Report: ReportConfig{
			ParallelFeedback: getEnvBool("REPORT_PARALLEL_FEEDBACK", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			Enabled:  getEnvBool("HISTORY_ENABLED", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "demo"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "ai_demo_hub"),
		},
		Iris: IrisConfig{
			Enabled: getEnvBool("IRIS_ENABLED", false),
			BaseURL: getEnv("IRIS_BASE_URL", "http://localhost:3000"),
			WSURL:   getEnv("IRIS_WS_URL", "ws://localhost:3000/ws"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Bot: BotConfig{
			Prefix: getEnv("BOT_PREFIX", "!"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}

	switch c.LLM.Primary {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PRIMARY=gemini")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PRIMARY=openai")
		}
	case ProviderHuggingFace:
		if c.HuggingFace.Token == "" {
			return fmt.Errorf("HUGGINGFACEHUB_API_TOKEN is required when LLM_PRIMARY=huggingface")
		}
	default:
		return fmt.Errorf("unknown LLM_PRIMARY %q", c.LLM.Primary)
	}

	switch c.LLM.EmbeddingProvider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when EMBEDDING_PROVIDER=gemini")
		}
	case ProviderHuggingFace:
		if c.HuggingFace.Token == "" {
			return fmt.Errorf("HUGGINGFACEHUB_API_TOKEN is required when EMBEDDING_PROVIDER=huggingface")
		}
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.LLM.EmbeddingProvider)
	}

	if c.Retrieval.ChunkSize <= 0 || c.Retrieval.ChunkOverlap < 0 || c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive")
	}

	if c.Iris.Enabled {
		if c.Iris.BaseURL == "" {
			return fmt.Errorf("IRIS_BASE_URL is required")
		}
		if c.Iris.WSURL == "" {
			return fmt.Errorf("IRIS_WS_URL is required")
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
