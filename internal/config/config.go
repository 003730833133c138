package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath         string
	LogLevel             string
	Port                 int
	DevMode              bool
	PriceRefreshSchedule string
	SnapshotSchedule     string
	MaintenanceSchedule  string
	SnapshotRetainDays   int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnvAsInt("PORT", 8001),
		DevMode:      getEnvAsBool("DEV_MODE", false),
		DatabasePath: getEnv("DATABASE_PATH", "./data/portfolio.db"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		// 6-field cron expressions (with seconds): 30 min during the day,
		// snapshot shortly after US market close, maintenance nightly
		PriceRefreshSchedule: getEnv("PRICE_REFRESH_SCHEDULE", "0 */30 * * * *"),
		SnapshotSchedule:     getEnv("SNAPSHOT_SCHEDULE", "0 30 21 * * MON-FRI"),
		MaintenanceSchedule:  getEnv("MAINTENANCE_SCHEDULE", "0 0 3 * * *"),
		SnapshotRetainDays:   getEnvAsInt("SNAPSHOT_RETAIN_DAYS", 730),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if c.SnapshotRetainDays <= 0 {
		return fmt.Errorf("SNAPSHOT_RETAIN_DAYS must be positive")
	}
	return nil
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
