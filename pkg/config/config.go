package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Cache     CacheConfig
	JWT       JWTConfig
	LLM       LLMConfig
	GigaChat  GigaChatConfig
	OpenAI    OpenAIConfig
	RAG       RAGConfig
	Providers ProvidersConfig
	Weather   WeatherConfig
	Advisory  AdvisoryConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level    string
	Encoding string // json | console
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig is optional: the engine keeps all state in memory and only
// uses Postgres to persist document embeddings between restarts.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type CacheConfig struct {
	Backend string // memory | redis
	LiveTTL time.Duration
}

// JWTConfig guards /api/v1 when SecretKey is set.
type JWTConfig struct {
	SecretKey string
}

type LLMConfig struct {
	Provider    string // gigachat | openai | none
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	Model              string
	InsecureSkipVerify bool
}

type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	ChatModel string
}

type RAGConfig struct {
	EmbeddingModel   string
	EmbeddingAPIKey  string
	EmbeddingBaseURL string
	EmbeddingTimeout time.Duration
	TopK             int
	DefaultLanguage  string
}

type ProvidersConfig struct {
	Timeout        time.Duration
	AgmarknetURL   string
	AgmarknetKey   string
	MandiBoardURL  string
	ENAMURL        string
	ENAMToken      string
	DisabledSource []string
}

type WeatherConfig struct {
	OpenMeteoURL   string
	GeocodingURL   string
	OpenWeatherURL string
	OpenWeatherKey string
}

type AdvisoryConfig struct {
	QuoteLimit   int
	PromptQuotes int
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same way
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	ragTopK, _ := strconv.Atoi(getEnv("RAG_TOP_K", "3"))
	embeddingTimeout, _ := strconv.Atoi(getEnv("RAG_EMBEDDING_TIMEOUT_SECONDS", "3"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_LIVE_TTL_MINUTES", "45"))
	llmTimeout, _ := strconv.Atoi(getEnv("LLM_TIMEOUT_SECONDS", "15"))
	maxTokens, _ := strconv.Atoi(getEnv("LLM_MAX_TOKENS", "400"))
	temperature, _ := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0.3"), 32)
	providerTimeout, _ := strconv.Atoi(getEnv("PROVIDER_TIMEOUT_SECONDS", "8"))
	quoteLimit, _ := strconv.Atoi(getEnv("ADVISORY_QUOTE_LIMIT", "10"))
	promptQuotes, _ := strconv.Atoi(getEnv("ADVISORY_PROMPT_QUOTES", "5"))

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Enabled:  getEnv("DB_ENABLED", "false") == "true",
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "agri_advisor"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			Prefix:   getEnv("REDIS_PREFIX", "agri"),
		},
		Cache: CacheConfig{
			Backend: getEnv("CACHE_BACKEND", "memory"),
			LiveTTL: clampTTL(time.Duration(cacheTTL) * time.Minute),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", ""),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "gigachat"),
			Timeout:     time.Duration(llmTimeout) * time.Second,
			MaxTokens:   maxTokens,
			Temperature: float32(temperature),
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			Model:              getEnv("GIGACHAT_MODEL", "GigaChat"),
			InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true",
		},
		OpenAI: OpenAIConfig{
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			BaseURL:   getEnv("OPENAI_BASE_URL", ""),
			ChatModel: getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		},
		RAG: RAGConfig{
			EmbeddingModel:   getEnv("RAG_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingAPIKey:  getEnv("RAG_EMBEDDING_API_KEY", getEnv("OPENAI_API_KEY", "")),
			EmbeddingBaseURL: getEnv("RAG_EMBEDDING_BASE_URL", getEnv("OPENAI_BASE_URL", "")),
			EmbeddingTimeout: time.Duration(embeddingTimeout) * time.Second,
			TopK:             ragTopK,
			DefaultLanguage:  getEnv("RAG_DEFAULT_LANGUAGE", "en"),
		},
		Providers: ProvidersConfig{
			Timeout:        time.Duration(providerTimeout) * time.Second,
			AgmarknetURL:   getEnv("AGMARKNET_URL", "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070"),
			AgmarknetKey:   getEnv("AGMARKNET_API_KEY", ""),
			MandiBoardURL:  getEnv("MANDI_BOARD_URL", ""),
			ENAMURL:        getEnv("ENAM_URL", ""),
			ENAMToken:      getEnv("ENAM_TOKEN", ""),
			DisabledSource: splitList(getEnv("PROVIDERS_DISABLED", "")),
		},
		Weather: WeatherConfig{
			OpenMeteoURL:   getEnv("OPEN_METEO_URL", "https://api.open-meteo.com/v1/forecast"),
			GeocodingURL:   getEnv("OPEN_METEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search"),
			OpenWeatherURL: getEnv("OPENWEATHER_URL", "https://api.openweathermap.org/data/2.5/weather"),
			OpenWeatherKey: getEnv("OPENWEATHER_API_KEY", ""),
		},
		Advisory: AdvisoryConfig{
			QuoteLimit:   quoteLimit,
			PromptQuotes: promptQuotes,
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
	}, nil
}

// clampTTL keeps live cache entries within the 30–60 minute window.
func clampTTL(ttl time.Duration) time.Duration {
	if ttl < 30*time.Minute {
		return 30 * time.Minute
	}
	if ttl > 60*time.Minute {
		return 60 * time.Minute
	}
	return ttl
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
