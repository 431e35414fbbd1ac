package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production
	API  APIConfig

	// Database (price persistence sink)
	Database DatabaseConfig

	// Redis (price history cache)
	Redis RedisConfig

	// Pipeline inputs/outputs and metric constants
	Pipeline PipelineConfig

	// External data providers
	Yahoo     YahooConfig
	Wikipedia WikipediaConfig
	Download  DownloadConfig

	// Upload
	UploadBatchSize int

	// Scheduler
	Schedule string

	// Logging
	LogLevel  string
	LogFormat string
}

// APIConfig holds HTTP server timeouts
type APIConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
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
	TTL      time.Duration
}

// PipelineConfig holds file locations and the metric constants for a run
type PipelineConfig struct {
	PriceCSV    string
	ESGCSV      string
	OutputJSON  string
	ProfileFile string // optional YAML profile, overrides the metric constants below

	RiskFreeRate float64
	TradingDays  int
	MinReturns   int
}

// YahooConfig holds the Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL string
}

// WikipediaConfig holds the S&P 500 constituents page location
type WikipediaConfig struct {
	SP500URL string
}

// DownloadConfig controls the bulk price download
type DownloadConfig struct {
	Range      string // Yahoo range, e.g. "5y"
	Workers    int
	RatePerSec float64
	OutputDir  string
}

// Load reads configuration from environment variables
// ⭐ SSOT: this is the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),
		API: APIConfig{
			ReadTimeout:     getEnvAsDuration("API_READ_TIMEOUT", "15s"),
			WriteTimeout:    getEnvAsDuration("API_WRITE_TIMEOUT", "15s"),
			IdleTimeout:     getEnvAsDuration("API_IDLE_TIMEOUT", "60s"),
			ShutdownTimeout: getEnvAsDuration("API_SHUTDOWN_TIMEOUT", "30s"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			TTL:      getEnvAsDuration("REDIS_TTL", "12h"),
		},

		Pipeline: PipelineConfig{
			PriceCSV:     getEnv("PRICE_CSV", "data/data_ba_test_final.csv"),
			ESGCSV:       getEnv("ESG_CSV", "data/synthetic_bloomberg.csv"),
			OutputJSON:   getEnv("OUTPUT_JSON", "dashboard/data/processed_data.json"),
			ProfileFile:  getEnv("PROFILE_FILE", ""),
			RiskFreeRate: getEnvAsFloat("RISK_FREE_RATE", 0.02),
			TradingDays:  getEnvAsInt("TRADING_DAYS", 252),
			MinReturns:   getEnvAsInt("MIN_RETURNS", 30),
		},

		Yahoo: YahooConfig{
			BaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
		},

		Wikipedia: WikipediaConfig{
			SP500URL: getEnv("WIKI_SP500_URL", "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"),
		},

		Download: DownloadConfig{
			Range:      getEnv("DOWNLOAD_RANGE", "5y"),
			Workers:    getEnvAsInt("DOWNLOAD_WORKERS", 8),
			RatePerSec: getEnvAsFloat("DOWNLOAD_RATE_PER_SEC", 5),
			OutputDir:  getEnv("DOWNLOAD_DIR", "data"),
		},

		UploadBatchSize: getEnvAsInt("UPLOAD_BATCH_SIZE", 50),
		Schedule:        getEnv("SCHEDULE", "0 30 22 * * 1-5"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks values every command depends on
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Pipeline.MinReturns < 2 {
		return fmt.Errorf("MIN_RETURNS must be at least 2, got %d", c.Pipeline.MinReturns)
	}

	if c.Pipeline.TradingDays <= 0 {
		return fmt.Errorf("TRADING_DAYS must be positive, got %d", c.Pipeline.TradingDays)
	}

	if c.API.ReadTimeout <= 0 || c.API.WriteTimeout <= 0 {
		return fmt.Errorf("API_READ_TIMEOUT and API_WRITE_TIMEOUT must be positive")
	}

	if c.Download.Workers <= 0 {
		return fmt.Errorf("DOWNLOAD_WORKERS must be positive, got %d", c.Download.Workers)
	}

	return nil
}

// RequireDatabase reports an error when no database URL is configured.
// Only the commands that talk to Postgres call it.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile loads the first .env found in envFilePaths
func loadEnvFile() {
	for _, path := range envFilePaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// envFilePaths lists .env candidates: working directory first, then next to the binary
func envFilePaths() []string {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	return paths
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
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
