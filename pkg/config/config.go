package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wonny/newslens/internal/contracts"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Feed
	Feed FeedConfig

	// OpenAI
	OpenAI OpenAIConfig

	// Market data
	Market MarketConfig

	// Pipeline
	Pipeline PipelineConfig

	// Database (optional mirror)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// FeedConfig holds RSS feed source configuration
type FeedConfig struct {
	URL     string
	Timeout time.Duration
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey         string
	ExtractModel   string
	AnswerModel    string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// MarketConfig holds price-history provider configuration
type MarketConfig struct {
	BenchmarkSymbol string
	YahooBaseURL    string
	Timeout         time.Duration
	Workers         int
	RatePerSecond   float64
}

// PipelineConfig holds batch pipeline configuration
type PipelineConfig struct {
	DataDir        string
	CorpusFile     string
	EnrichedFile   string
	ExtractWorkers int
	Schedule       string // cron expression (with seconds)
}

// DatabaseConfig holds PostgreSQL configuration.
// URL이 비어있으면 미러링 비활성화.
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Feed: FeedConfig{
			URL:     getEnv("FEED_URL", "https://pythoninvest.com/rss-feed-612566707351.xml"),
			Timeout: getEnvAsDuration("FEED_TIMEOUT", "30s"),
		},

		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			ExtractModel:   getEnv("OPENAI_EXTRACT_MODEL", "gpt-4o-mini"),
			AnswerModel:    getEnv("OPENAI_ANSWER_MODEL", "gpt-4o"),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			Timeout:        getEnvAsDuration("OPENAI_TIMEOUT", "60s"),
			MaxRetries:     getEnvAsInt("OPENAI_MAX_RETRIES", 3),
			RetryDelay:     getEnvAsDuration("OPENAI_RETRY_DELAY", "5s"),
		},

		Market: MarketConfig{
			BenchmarkSymbol: getEnv("BENCHMARK_SYMBOL", "^GSPC"),
			YahooBaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			Timeout:         getEnvAsDuration("MARKET_TIMEOUT", "20s"),
			Workers:         getEnvAsInt("PRICE_WORKERS", 4),
			RatePerSecond:   getEnvAsFloat("PRICE_RATE_PER_SECOND", 2.0),
		},

		Pipeline: PipelineConfig{
			DataDir:        getEnv("DATA_DIR", "data"),
			CorpusFile:     getEnv("CORPUS_FILE", "news_feed_flattened.parquet"),
			EnrichedFile:   getEnv("ENRICHED_FILE", "news_feed_with_market_stats.parquet"),
			ExtractWorkers: getEnvAsInt("EXTRACT_WORKERS", 4),
			Schedule:       getEnv("PIPELINE_SCHEDULE", "0 0 6 * * *"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CorpusPath returns the path of the flattened corpus artifact
func (c *Config) CorpusPath() string {
	return filepath.Join(c.Pipeline.DataDir, c.Pipeline.CorpusFile)
}

// EnrichedPath returns the path of the enriched corpus artifact
func (c *Config) EnrichedPath() string {
	return filepath.Join(c.Pipeline.DataDir, c.Pipeline.EnrichedFile)
}

// MirrorEnabled reports whether the Postgres mirror is configured
func (c *Config) MirrorEnabled() bool {
	return c.Database.URL != ""
}

// validate checks if required configuration values are set.
// 작업 시작 전에 실패해야 하는 것들만 여기서 검사.
func (c *Config) validate() error {
	if c.OpenAI.APIKey == "" {
		return &contracts.ConfigurationError{Field: "OPENAI_API_KEY", Reason: "required"}
	}

	if c.Feed.URL == "" {
		return &contracts.ConfigurationError{Field: "FEED_URL", Reason: "required"}
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return &contracts.ConfigurationError{Field: "ENV", Reason: "must be one of: development, staging, production"}
	}

	if c.Pipeline.ExtractWorkers < 1 {
		return &contracts.ConfigurationError{Field: "EXTRACT_WORKERS", Reason: "must be >= 1"}
	}

	if c.Market.Workers < 1 {
		return &contracts.ConfigurationError{Field: "PRICE_WORKERS", Reason: "must be >= 1"}
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
