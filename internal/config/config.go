package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Env      string
	HTTPAddr string
	BaseURL  string

	DBDSN     string
	JWTSecret string

	LogLevel string

	RateLimitRPM int

	NotifyWebhookURL string
	NotifyTimeoutMS  int
	NotifyQueueSize  int

	SessionDays int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Env = strings.TrimSpace(os.Getenv("CM_ENV"))
	if cfg.Env == "" {
		return nil, fmt.Errorf("CM_ENV is required")
	}
	if cfg.Env != "dev" && cfg.Env != "prod" {
		return nil, fmt.Errorf("CM_ENV must be one of: dev, prod (got: %s)", cfg.Env)
	}

	cfg.HTTPAddr = getEnvOrDefault("CM_HTTP_ADDR", ":8080")

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("CM_BASE_URL")), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("CM_BASE_URL is required")
	}

	cfg.DBDSN = strings.TrimSpace(os.Getenv("CM_DB_DSN"))
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("CM_DB_DSN is required")
	}

	cfg.JWTSecret = os.Getenv("CM_JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("CM_JWT_SECRET is required")
	}
	if cfg.Env == "prod" && len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("CM_JWT_SECRET must be at least 32 characters (currently %d)", len(cfg.JWTSecret))
	}

	cfg.LogLevel = getEnvOrDefault("CM_LOG_LEVEL", "info")
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("CM_LOG_LEVEL must be one of: debug, info, warn, error (got: %s)", cfg.LogLevel)
	}

	var err error
	cfg.RateLimitRPM, err = getEnvIntOrDefault("CM_RATE_LIMIT_RPM", 120)
	if err != nil {
		return nil, err
	}

	// The notification processor webhook is optional; without it invite
	// creation still works and notification jobs are dropped.
	cfg.NotifyWebhookURL = strings.TrimSpace(os.Getenv("CM_NOTIFY_WEBHOOK_URL"))

	cfg.NotifyTimeoutMS, err = getEnvIntOrDefault("CM_NOTIFY_TIMEOUT_MS", 2000)
	if err != nil {
		return nil, err
	}
	if cfg.NotifyTimeoutMS <= 0 || cfg.NotifyTimeoutMS > 30000 {
		return nil, fmt.Errorf("CM_NOTIFY_TIMEOUT_MS must be between 1 and 30000 (got: %d)", cfg.NotifyTimeoutMS)
	}

	cfg.NotifyQueueSize, err = getEnvIntOrDefault("CM_NOTIFY_QUEUE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	if cfg.NotifyQueueSize <= 0 {
		return nil, fmt.Errorf("CM_NOTIFY_QUEUE_SIZE must be positive (got: %d)", cfg.NotifyQueueSize)
	}

	cfg.SessionDays, err = getEnvIntOrDefault("CM_SESSION_DAYS", 7)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsDev returns true if running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

// RedactedValues returns a map of config values with secrets redacted.
func (c *Config) RedactedValues() map[string]string {
	return map[string]string{
		"CM_ENV":                c.Env,
		"CM_HTTP_ADDR":          c.HTTPAddr,
		"CM_BASE_URL":           c.BaseURL,
		"CM_DB_DSN":             redactDSN(c.DBDSN),
		"CM_JWT_SECRET":         "[REDACTED]",
		"CM_LOG_LEVEL":          c.LogLevel,
		"CM_RATE_LIMIT_RPM":     fmt.Sprintf("%d", c.RateLimitRPM),
		"CM_NOTIFY_WEBHOOK_URL": redactDSN(c.NotifyWebhookURL),
		"CM_NOTIFY_TIMEOUT_MS":  fmt.Sprintf("%d", c.NotifyTimeoutMS),
		"CM_NOTIFY_QUEUE_SIZE":  fmt.Sprintf("%d", c.NotifyQueueSize),
		"CM_SESSION_DAYS":       fmt.Sprintf("%d", c.SessionDays),
	}
}

func redactDSN(dsn string) string {
	if start := strings.Index(dsn, "://"); start != -1 {
		if end := strings.Index(dsn[start+3:], "@"); end != -1 {
			return dsn[:start+3] + "[REDACTED]" + dsn[start+3+end:]
		}
	}
	return dsn
}

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer (got: %q)", key, value)
	}
	return parsed, nil
}
