package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	AppEnv    string
	Debug     bool
	Version   string
	SentryDSN string

	TelegramAPIID   int
	TelegramAPIHash string
	SessionString   string
	ChannelUsername string

	GitHubToken  string
	GitHubRepo   string
	GitHubBranch string
	GitHubFolder string

	DayLimit int
	TimeZone string
}

// Load reads configuration from environment variables. A .env file is
// loaded when present (useful for development) but real environment
// variables always win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))

	apiIDStr := getEnv("TELEGRAM_API_ID", "")
	apiID, err := strconv.Atoi(apiIDStr)
	if err != nil && apiIDStr != "" {
		return nil, fmt.Errorf("invalid TELEGRAM_API_ID: %w", err)
	}

	dayLimit := 7
	if dayLimitStr := getEnv("DAY_LIMIT", ""); dayLimitStr != "" {
		dayLimit, err = strconv.Atoi(dayLimitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid DAY_LIMIT: %w", err)
		}
		if dayLimit <= 0 {
			return nil, fmt.Errorf("DAY_LIMIT must be positive, got %d", dayLimit)
		}
	}

	folder := getEnv("GITHUB_FOLDER", "assets/channel/")
	if folder != "" && !strings.HasSuffix(folder, "/") {
		folder += "/"
	}

	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Debug:           debug,
		Version:         getEnv("VERSION", "dev"),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		TelegramAPIID:   apiID,
		TelegramAPIHash: getEnv("TELEGRAM_API_HASH", ""),
		SessionString:   getEnv("TELEGRAM_SESSION_STRING", ""),
		ChannelUsername: getEnv("TELEGRAM_CHANNEL_USERNAME", ""),
		GitHubToken:     getEnv("GITHUB_TOKEN", ""),
		GitHubRepo:      getEnv("GITHUB_REPO", ""),
		GitHubBranch:    getEnv("GITHUB_BRANCH", "gh-pages"),
		GitHubFolder:    folder,
		DayLimit:        dayLimit,
		TimeZone:        getEnv("TIME_ZONE", "Asia/Shanghai"),
	}

	// Basic validation for essential variables
	if cfg.TelegramAPIID == 0 {
		return nil, fmt.Errorf("TELEGRAM_API_ID is required")
	}
	if cfg.TelegramAPIHash == "" {
		return nil, fmt.Errorf("TELEGRAM_API_HASH is required")
	}
	if cfg.SessionString == "" {
		return nil, fmt.Errorf("TELEGRAM_SESSION_STRING is required")
	}
	if cfg.ChannelUsername == "" {
		return nil, fmt.Errorf("TELEGRAM_CHANNEL_USERNAME is required")
	}
	if cfg.GitHubToken == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is required")
	}
	if cfg.GitHubRepo == "" {
		return nil, fmt.Errorf("GITHUB_REPO is required")
	}
	if cfg.SentryDSN == "" {
		log.Println("Warning: SENTRY_DSN is not set. Error tracking disabled.")
	}

	return cfg, nil
}

// Location resolves the configured display time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
