// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir            string // Base directory for databases and charts (always absolute)
	StaticDir          string // Chart files served under /static/
	LogLevel           string
	Port               int
	DevMode            bool
	RiskFreeRate       float64
	TradingDaysPerYear int
	PricePeriod        string        // Lookback passed to the price provider
	PriceCacheTTL      time.Duration // 0 disables cache reads
	AnalysisTimeout    time.Duration // Bound on the price fetch of one run
	SnapshotSchedule   string        // Cron spec with seconds field
	Artifacts          *ArtifactConfig
}

// ArtifactConfig configures report publishing to S3-compatible storage.
// Publishing is disabled when Bucket is empty.
type ArtifactConfig struct {
	Bucket          string
	Prefix          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether a bucket is configured
func (a *ArtifactConfig) Enabled() bool {
	return a != nil && a.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(getEnv("RISKDESK_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:            absDataDir,
		StaticDir:          getEnv("STATIC_DIR", filepath.Join(absDataDir, "static")),
		Port:               getEnvAsInt("PORT", 8001),
		DevMode:            getEnvAsBool("DEV_MODE", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		RiskFreeRate:       getEnvAsFloat("RISK_FREE_RATE", 0.02),
		TradingDaysPerYear: getEnvAsInt("TRADING_DAYS_PER_YEAR", 252),
		PricePeriod:        getEnv("PRICE_PERIOD", "1y"),
		PriceCacheTTL:      getEnvAsDuration("PRICE_CACHE_TTL", 6*time.Hour),
		AnalysisTimeout:    getEnvAsDuration("ANALYSIS_TIMEOUT", 60*time.Second),
		SnapshotSchedule:   getEnv("SNAPSHOT_SCHEDULE", "0 30 22 * * MON-FRI"),
		Artifacts:          loadArtifactConfig(),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that numeric settings are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.TradingDaysPerYear <= 0 {
		return fmt.Errorf("TRADING_DAYS_PER_YEAR must be positive, got %d", c.TradingDaysPerYear)
	}
	if c.AnalysisTimeout <= 0 {
		return fmt.Errorf("ANALYSIS_TIMEOUT must be positive, got %s", c.AnalysisTimeout)
	}
	if c.PriceCacheTTL < 0 {
		return fmt.Errorf("PRICE_CACHE_TTL must not be negative, got %s", c.PriceCacheTTL)
	}
	if c.PricePeriod == "" {
		return fmt.Errorf("PRICE_PERIOD must not be empty")
	}
	return nil
}

// DatabasePath returns the file path of a named database in the data directory
func (c *Config) DatabasePath(name string) string {
	return filepath.Join(c.DataDir, name+".db")
}

func loadArtifactConfig() *ArtifactConfig {
	return &ArtifactConfig{
		Bucket:          getEnv("ARTIFACT_S3_BUCKET", ""),
		Prefix:          getEnv("ARTIFACT_S3_PREFIX", "riskdesk"),
		Endpoint:        getEnv("ARTIFACT_S3_ENDPOINT", ""),
		Region:          getEnv("ARTIFACT_S3_REGION", ""),
		AccessKeyID:     getEnv("ARTIFACT_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("ARTIFACT_S3_SECRET_ACCESS_KEY", ""),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
