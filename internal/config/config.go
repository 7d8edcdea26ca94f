package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type (
	// Config holds configuration settings for the gateway
	Config struct {
		// API Server
		APIHost  string
		APIPort  int
		LogLevel string

		// Endpoint catalog
		EndpointsFile string

		// Prompt handlers
		PromptURL     string
		PromptAPIKey  string
		PromptTimeout time.Duration

		// Query handlers
		QueryTimeout time.Duration

		// Execution history. An empty RedisAddr selects the in-memory
		// store
		RedisAddr     string
		RedisPassword string
		RedisDB       int
		RedisPrefix   string
		HistoryLimit  int

		ShutdownTimeout time.Duration
	}
)

const (
	DefaultAPIHost = "0.0.0.0"
	DefaultAPIPort = 8080
	MaxTCPPort     = 65535

	DefaultEndpointsFile = "endpoints.yaml"
	DefaultPromptURL     = "https://api.openai.com/v1/chat/completions"

	DefaultPromptTimeout   = 60 * time.Second
	DefaultQueryTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	MaxHandlerTimeout      = 24 * time.Hour

	DefaultRedisDB     = 0
	DefaultRedisPrefix = "weave"

	DefaultHistoryLimit = 1000
	MaxHistoryLimit     = 1_000_000
)

var (
	ErrInvalidAPIPort       = errors.New("invalid API port")
	ErrNoEndpointsFile      = errors.New("endpoints file not configured")
	ErrNoPromptURL          = errors.New("prompt URL not configured")
	ErrInvalidPromptTimeout = errors.New("prompt timeout must be positive")
	ErrInvalidQueryTimeout  = errors.New("query timeout must be positive")
	ErrInvalidHistoryLimit  = errors.New("history limit must be positive")
)

// NewDefaultConfig creates a configuration with sensible defaults for the
// server, handlers, and history store
func NewDefaultConfig() *Config {
	return &Config{
		APIHost:         DefaultAPIHost,
		APIPort:         DefaultAPIPort,
		LogLevel:        "info",
		EndpointsFile:   DefaultEndpointsFile,
		PromptURL:       DefaultPromptURL,
		PromptTimeout:   DefaultPromptTimeout,
		QueryTimeout:    DefaultQueryTimeout,
		RedisDB:         DefaultRedisDB,
		RedisPrefix:     DefaultRedisPrefix,
		HistoryLimit:    DefaultHistoryLimit,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed.
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if file := os.Getenv("ENDPOINTS_FILE"); file != "" {
		c.EndpointsFile = file
	}
	if url := os.Getenv("PROMPT_API_URL"); url != "" {
		c.PromptURL = url
	}
	if key := os.Getenv("PROMPT_API_KEY"); key != "" {
		c.PromptAPIKey = key
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.RedisAddr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.RedisPassword = password
	}
	if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
		c.RedisPrefix = prefix
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt("REDIS_DB", &c.RedisDB, -1, 15); err != nil {
		return err
	}
	if err := loadEnvInt(
		"HISTORY_LIMIT", &c.HistoryLimit, 0, MaxHistoryLimit,
	); err != nil {
		return err
	}

	if err := loadEnvMillis("PROMPT_TIMEOUT", &c.PromptTimeout); err != nil {
		return err
	}
	if err := loadEnvMillis("QUERY_TIMEOUT", &c.QueryTimeout); err != nil {
		return err
	}
	return loadEnvMillis("SHUTDOWN_TIMEOUT", &c.ShutdownTimeout)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.EndpointsFile == "" {
		return ErrNoEndpointsFile
	}
	if c.PromptURL == "" {
		return ErrNoPromptURL
	}
	if c.PromptTimeout <= 0 {
		return ErrInvalidPromptTimeout
	}
	if c.QueryTimeout <= 0 {
		return ErrInvalidQueryTimeout
	}
	if c.HistoryLimit <= 0 {
		return ErrInvalidHistoryLimit
	}
	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range.
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}

// loadEnvMillis reads key as a millisecond count and sets *dst
func loadEnvMillis(key string, dst *time.Duration) error {
	var ms int64
	maxMs := int64(MaxHandlerTimeout / time.Millisecond)
	if err := loadEnvInt(key, &ms, 0, maxMs); err != nil {
		return err
	}
	if ms > 0 {
		*dst = time.Duration(ms) * time.Millisecond
	}
	return nil
}
