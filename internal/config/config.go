// Package config loads the neostore CLI configuration from an optional
// .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/AKRAMELGYAR/NeoStore-FrontEnd/pkg/query"
)

// Environment variable names.
const (
	EnvBaseURL     = "NEOSTORE_BASE_URL"
	EnvUserAgent   = "NEOSTORE_USER_AGENT"
	EnvTimeout     = "NEOSTORE_TIMEOUT"
	EnvRedisURL    = "NEOSTORE_REDIS_URL"
	EnvSessionFile = "NEOSTORE_SESSION_FILE"
	EnvPageSize    = "NEOSTORE_PAGE_SIZE"
	EnvMetricsAddr = "NEOSTORE_METRICS_ADDR"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogPretty   = "LOG_PRETTY"
)

// Defaults.
const (
	DefaultBaseURL   = "http://localhost:3000"
	DefaultUserAgent = "neostore-client/0.1.0"
	DefaultTimeout   = 30 * time.Second
	DefaultLogLevel  = "warn"
)

// Config is the resolved configuration.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// RedisURL selects the shared Redis cache; empty means in-memory.
	RedisURL string

	// SessionFile overrides the default session location.
	SessionFile string

	PageSize    int
	MetricsAddr string

	LogLevel  string
	LogPretty bool
}

// Load reads envFiles (default ".env"; missing files are ignored), then the
// environment. Variables already set in the environment win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		BaseURL:     strings.TrimRight(getEnv(EnvBaseURL, DefaultBaseURL), "/"),
		UserAgent:   getEnv(EnvUserAgent, DefaultUserAgent),
		RedisURL:    getEnv(EnvRedisURL, ""),
		SessionFile: getEnv(EnvSessionFile, ""),
		MetricsAddr: getEnv(EnvMetricsAddr, ""),
		LogLevel:    getEnv(EnvLogLevel, DefaultLogLevel),
	}

	var err error
	if cfg.Timeout, err = getDuration(EnvTimeout, DefaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.LogPretty, err = getBool(EnvLogPretty, false); err != nil {
		return Config{}, err
	}
	if cfg.PageSize, err = getInt(EnvPageSize, query.DefaultPageSize); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%s must not be empty", EnvBaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive (got %s)", EnvTimeout, c.Timeout)
	}
	if !query.ValidPageSize(c.PageSize) {
		return fmt.Errorf("%s must be one of %v (got %d)", EnvPageSize, query.PageSizes, c.PageSize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue, nil
	}
	// Bare numbers are seconds.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, defaultValue int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
