package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ErrMissingAPIKey is returned when data acquisition is requested without FRED credentials.
var ErrMissingAPIKey = errors.New("FRED_API_KEY environment variable not set")

// Config holds all application configuration
type Config struct {
	FREDAPIKey       string  `env:"FRED_API_KEY"`
	FREDBaseURL      string  `env:"FRED_BASE_URL" envDefault:"https://api.stlouisfed.org/fred"`
	YahooBaseURL     string  `env:"YAHOO_BASE_URL" envDefault:"https://query1.finance.yahoo.com"`
	BenchmarkSymbol  string  `env:"BENCHMARK_SYMBOL" envDefault:"SPY"`
	StartDate        string  `env:"START_DATE" envDefault:"1993-01-01"`
	DataDir          string  `env:"DATA_DIR" envDefault:"data"`
	OutputDir        string  `env:"OUTPUT_DIR" envDefault:"outputs"`
	StrategyFile     string  `env:"STRATEGY_FILE"`
	LogLevel         string  `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout   int     `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec   int     `env:"REQUESTS_PER_SEC" envDefault:"2"`
	FillLimit        int     `env:"FILL_LIMIT" envDefault:"5"`
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatIDs  []int64 `env:"TELEGRAM_CHAT_IDS"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.FREDAPIKey = os.Getenv("FRED_API_KEY")
	cfg.FREDBaseURL = getEnvWithDefault("FRED_BASE_URL", "https://api.stlouisfed.org/fred")
	cfg.YahooBaseURL = getEnvWithDefault("YAHOO_BASE_URL", "https://query1.finance.yahoo.com")
	cfg.BenchmarkSymbol = getEnvWithDefault("BENCHMARK_SYMBOL", "SPY")
	cfg.StartDate = getEnvWithDefault("START_DATE", "1993-01-01")
	cfg.DataDir = getEnvWithDefault("DATA_DIR", "data")
	cfg.OutputDir = getEnvWithDefault("OUTPUT_DIR", "outputs")
	cfg.StrategyFile = os.Getenv("STRATEGY_FILE")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 2)
	cfg.FillLimit = getEnvIntWithDefault("FILL_LIMIT", 5)
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatIDs = getEnvInt64List("TELEGRAM_CHAT_IDS")

	return &cfg, nil
}

// RequireFREDKey reports a configuration error when the FRED key is absent.
func (c *Config) RequireFREDKey() error {
	if strings.TrimSpace(c.FREDAPIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvInt64List(key string) []int64 {
	var out []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Warn().Str("key", key).Str("value", part).Msg("Ignoring malformed chat id")
			continue
		}
		out = append(out, id)
	}
	return out
}
