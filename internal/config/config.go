package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSheetsWebAppURL is the Apps Script deployment that fronts the
// registration spreadsheet.
const DefaultSheetsWebAppURL = "https://script.google.com/macros/s/AKfycbyC3Cuwis99wI5T-XcHn33VR6O4YoQ1Pr-Q8Ae9bkrB2Z1SanSah_jUfNqo6vjxZLpv/exec"

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	PublicBaseURL      string
	LogLevel           string
	Timezone           string
	CORSAllowedOrigins []string
	OutboundTimeout    time.Duration

	// LINE Messaging API (notification forwarder)
	LineMessagingAPI       string
	LineChannelAccessToken string
	LineGroupID            string

	// Storage forwarder
	StorageBackend        string
	SheetsWebAppURL       string
	SheetsSpreadsheetID   string
	SheetsRange           string
	GoogleCredentialsJSON string

	// Optional email copy of each notification
	EmailProvider         string
	NotifyEmailRecipients []string
	SendGridAPIKey        string
	SendGridFromEmail     string
	SendGridFromName      string
	SESFromEmail          string
	SESFromName           string
	SESConfigurationSet   string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Rate limiting on the public submission routes
	RedisAddr          string
	RedisPassword      string
	RateLimitPerMinute int
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		PublicBaseURL:      getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Timezone:           getEnv("APP_TIMEZONE", "Asia/Bangkok"),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		OutboundTimeout:    getEnvAsDuration("OUTBOUND_TIMEOUT", 10*time.Second),

		LineMessagingAPI:       getEnv("LINE_MESSAGING_API", ""),
		LineChannelAccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
		LineGroupID:            getEnv("LINE_GROUP_ID", ""),

		StorageBackend:        strings.ToLower(strings.TrimSpace(getEnv("STORAGE_BACKEND", "webapp"))),
		SheetsWebAppURL:       getEnv("SHEETS_WEBAPP_URL", DefaultSheetsWebAppURL),
		SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsRange:           getEnv("SHEETS_RANGE", "Sheet1!A:J"),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),

		EmailProvider:         strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "sendgrid"))),
		NotifyEmailRecipients: getEnvAsList("NOTIFY_EMAIL_RECIPIENTS"),
		SendGridAPIKey:        getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:     getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:      getEnv("SENDGRID_FROM_NAME", "งานส่งเสริมสุขภาพแม่และเด็ก"),
		SESFromEmail:          getEnv("SES_FROM_EMAIL", ""),
		SESFromName:           getEnv("SES_FROM_NAME", "งานส่งเสริมสุขภาพแม่และเด็ก"),
		SESConfigurationSet:   getEnv("SES_CONFIGURATION_SET", ""),

		AWSRegion:           getEnv("AWS_REGION", "ap-southeast-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 20),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 5),
	}
}

// LineConfigured reports whether all three LINE settings are present.
func (c *Config) LineConfigured() bool {
	return strings.TrimSpace(c.LineMessagingAPI) != "" &&
		strings.TrimSpace(c.LineChannelAccessToken) != "" &&
		strings.TrimSpace(c.LineGroupID) != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
