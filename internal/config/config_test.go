package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBaseURL, EnvUserAgent, EnvTimeout, EnvRedisURL, EnvSessionFile, EnvPageSize, EnvMetricsAddr, EnvLogLevel, EnvLogPretty} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, 12, cfg.PageSize)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.LogPretty)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "https://api.neostore.example/")
	t.Setenv(EnvTimeout, "5")
	t.Setenv(EnvPageSize, "36")
	t.Setenv(EnvLogPretty, "true")
	t.Setenv(EnvRedisURL, "redis://localhost:6379/1")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.neostore.example", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 36, cfg.PageSize)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvUserAgent, "from-env/1.0")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"NEOSTORE_BASE_URL=http://shop.local:4000\nNEOSTORE_USER_AGENT=from-file/1.0\nNEOSTORE_TIMEOUT=1m\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv(EnvBaseURL)
		os.Unsetenv(EnvTimeout)
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://shop.local:4000", cfg.BaseURL)
	assert.Equal(t, "from-env/1.0", cfg.UserAgent, "environment wins over the file")
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		EnvPageSize:  "13",
		EnvTimeout:   "soon",
		EnvLogPretty: "maybe",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
