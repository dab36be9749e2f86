package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// NewsAPI settings
	NewsAPIKey      string
	NewsAPIPageSize int

	// Gemini settings
	GeminiAPIKey      string
	GeminiModel       string
	MaxGeminiRequests int // maximum Gemini requests per run (0 = unlimited)
	SummaryMaxInput   int // articles fed into one summary prompt

	// Telegram settings (optional notification channel)
	TelegramToken  string
	TelegramChatID string

	// Source settings
	FeedsConfigPath  string
	DefaultLanguage  string
	DefaultSortBy    string
	FetchConcurrency int // parallel source fetches per aggregation
	RequestTimeout   time.Duration

	// Notification settings
	NotifySeenTTL time.Duration // suppression window for repeated notifications

	// App settings
	Debug          bool
	MonitoringPort string
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		NewsAPIPageSize:   100,
		GeminiModel:       "gemini-2.5-flash",
		MaxGeminiRequests: 3,
		SummaryMaxInput:   20,
		FeedsConfigPath:   "configs/feeds.yaml",
		DefaultLanguage:   "en",
		DefaultSortBy:     "publishedAt",
		FetchConcurrency:  4,
		RequestTimeout:    10 * time.Second,
		NotifySeenTTL:     48 * time.Hour,
		MonitoringPort:    "8080",
	}

	// Load from environment
	cfg.NewsAPIKey = os.Getenv("NEWSAPI_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.DefaultLanguage = getEnvOrDefault("DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	cfg.DefaultSortBy = getEnvOrDefault("DEFAULT_SORT_BY", cfg.DefaultSortBy)
	cfg.MonitoringPort = getEnvOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	cfg.NewsAPIPageSize = getEnvIntOrDefault("NEWSAPI_PAGE_SIZE", cfg.NewsAPIPageSize)
	cfg.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", cfg.MaxGeminiRequests)
	cfg.SummaryMaxInput = getEnvIntOrDefault("SUMMARY_MAX_INPUT", cfg.SummaryMaxInput)
	cfg.FetchConcurrency = getEnvIntOrDefault("FETCH_CONCURRENCY", cfg.FetchConcurrency)

	if v := getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.RequestTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("NOTIFY_SEEN_TTL_HOURS", 0); v > 0 {
		cfg.NotifySeenTTL = time.Duration(v) * time.Hour
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks numeric sanity. Both API credentials are optional:
// a missing NewsAPI key just disables that source, and a missing Gemini
// key makes summaries unavailable instead of failing the search.
func (c *Config) Validate() error {
	if c.NewsAPIPageSize <= 0 || c.NewsAPIPageSize > 100 {
		return fmt.Errorf("NEWSAPI_PAGE_SIZE must be in 1..100, got %d", c.NewsAPIPageSize)
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", c.FetchConcurrency)
	}
	if c.SummaryMaxInput <= 0 {
		return fmt.Errorf("SUMMARY_MAX_INPUT must be positive, got %d", c.SummaryMaxInput)
	}
	return nil
}
