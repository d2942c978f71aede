package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	SEC      SECConfig
	Peer     PeerConfig
	Security SecurityConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// SECConfig holds SEC Thailand API configuration
type SECConfig struct {
	BaseURL         string
	FactsheetAPIKey string
	DailyInfoAPIKey string
}

// PeerConfig holds peer-ranking thresholds
type PeerConfig struct {
	// MinCountHard is the minimum eligible cohort size below which peer
	// ranks are reported as INSUFFICIENT_PEER_SET.
	MinCountHard int
	// ReclassifySchedule is the cron expression for the nightly
	// reclassification pass. Empty disables the job.
	ReclassifySchedule string
}

// SecurityConfig holds encryption configuration for settings stored at rest.
type SecurityConfig struct {
	// FernetKey is a base64-encoded 32-byte fernet key. Empty disables
	// encrypted setting storage.
	FernetKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	minCount, err := getEnvInt("PEER_MIN_COUNT_HARD", 5)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/fund_compare.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		SEC: SECConfig{
			BaseURL:         getEnv("SEC_API_BASE_URL", "https://api.sec.or.th"),
			FactsheetAPIKey: getEnv("SEC_FUND_FACTSHEET_API_KEY", ""),
			DailyInfoAPIKey: getEnv("SEC_FUND_DAILY_INFO_API_KEY", ""),
		},
		Peer: PeerConfig{
			MinCountHard:       minCount,
			ReclassifySchedule: getEnv("PEER_RECLASSIFY_SCHEDULE", "0 2 * * *"),
		},
		Security: SecurityConfig{
			FernetKey: getEnv("SETTINGS_FERNET_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return parsed, nil
}
