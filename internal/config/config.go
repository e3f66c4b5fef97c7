package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server
	Port string

	// Database
	DatabaseURL string
	RedisURL    string

	// Security
	StateSigningSecret string
	CORSOrigin         string

	// OAuth providers
	GoogleClientID       string
	GoogleClientSecret   string
	AppleClientID        string
	AppleClientSecret    string
	FacebookClientID     string
	FacebookClientSecret string
	TwitterClientID      string
	TwitterClientSecret  string
	LinkedInClientID     string
	LinkedInClientSecret string
	GitHubClientID       string
	GitHubClientSecret   string
	OAuthRedirectBase    string

	// Outbound vendor calls
	VendorTimeout time.Duration

	// Background jobs
	JobsEnabled bool
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		DatabaseURL: getEnv("DATABASE_URL", "shotlist_analytics.db"),
		RedisURL:    getEnv("REDIS_URL", ""),

		StateSigningSecret: getEnv("STATE_SIGNING_SECRET", "change-me-in-production"),
		CORSOrigin:         getEnv("CORS_ORIGIN", "*"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		AppleClientID:        getEnv("APPLE_CLIENT_ID", ""),
		AppleClientSecret:    getEnv("APPLE_CLIENT_SECRET", ""),
		FacebookClientID:     getEnv("FACEBOOK_CLIENT_ID", ""),
		FacebookClientSecret: getEnv("FACEBOOK_CLIENT_SECRET", ""),
		TwitterClientID:      getEnv("TWITTER_CLIENT_ID", ""),
		TwitterClientSecret:  getEnv("TWITTER_CLIENT_SECRET", ""),
		LinkedInClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
		LinkedInClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
		GitHubClientID:       getEnv("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret:   getEnv("GITHUB_CLIENT_SECRET", ""),
		OAuthRedirectBase:    getEnv("OAUTH_REDIRECT_BASE", "http://localhost:8000"),

		VendorTimeout: getEnvDuration("VENDOR_TIMEOUT", 10*time.Second),

		JobsEnabled: getEnvBool("JOBS_ENABLED", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
