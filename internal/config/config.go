package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the console.
type Config struct {
	API        APIConfig
	Session    SessionConfig
	Attachment AttachmentConfig
	Logger     LoggerConfig
	Stub       StubConfig
}

// APIConfig points the client at the remote ticket backend.
type APIConfig struct {
	BaseURL               string
	AccessToken           string
	RequestTimeoutSeconds int
}

// SessionConfig controls the user context and refresh behavior.
type SessionConfig struct {
	UserID              string
	PollIntervalSeconds int
}

// AttachmentConfig overrides the default staging limits.
type AttachmentConfig struct {
	ComposerMaxBytes int64
	FormMaxBytes     int64
}

// LoggerConfig configures logging behavior. The TUI owns stdout, so the
// console writes structured logs to a file instead.
type LoggerConfig struct {
	Level string
	Path  string
}

// StubConfig configures the local development backend.
type StubConfig struct {
	Host string
	Port string
}

// Addr returns the stub server's listen address.
func (s StubConfig) Addr() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := getEnv("TICKET_API_BASE_URL", "https://backend-express-c423b4135ed6.herokuapp.com/api")
	userID := os.Getenv("TICKET_USER_ID")

	cfg := &Config{
		API: APIConfig{
			BaseURL:               baseURL,
			AccessToken:           os.Getenv("TICKET_ACCESS_TOKEN"),
			RequestTimeoutSeconds: getEnvAsInt("TICKET_REQUEST_TIMEOUT_SECONDS", 10),
		},
		Session: SessionConfig{
			UserID:              userID,
			PollIntervalSeconds: getEnvAsInt("TICKET_POLL_INTERVAL_SECONDS", 30),
		},
		Attachment: AttachmentConfig{
			ComposerMaxBytes: getEnvAsInt64("TICKET_COMPOSER_MAX_ATTACHMENT_BYTES", 5*1024*1024),
			FormMaxBytes:     getEnvAsInt64("TICKET_FORM_MAX_ATTACHMENT_BYTES", 10*1024*1024),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Path:  getEnv("LOG_PATH", "ticket-console.log"),
		},
		Stub: StubConfig{
			Host: getEnv("TICKET_STUB_HOST", "127.0.0.1"),
			Port: getEnv("TICKET_STUB_PORT", "8091"),
		},
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("TICKET_API_BASE_URL must not be empty")
	}

	return cfg, nil
}

// RequestTimeout returns the configured per-request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// PollInterval returns the detail-view refresh interval.
func (s SessionConfig) PollInterval() time.Duration {
	if s.PollIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsInt64(key string, fallback int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
