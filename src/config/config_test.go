package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"LANGDETECT_API_ENDPOINT",
	"GITHUB_TOKEN",
	"LANGDETECT_REPO_URL",
	"GITHUB_API_URL",
	"LANGDETECT_FAILURE_POLICY",
	"POSTGRES_DSN",
	"LANGDETECT_LISTEN_ADDR",
	"LANGDETECT_MAX_AGENT_AGE",
	"REDPANDA_BROKERS",
}

// clearEnv blanks every variable the loader reads; empty values are ignored by the loader.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnv(t)

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, DefaultGitHubAPIURL, cfg.GitHubAPIURL)
		assert.Equal(t, time.Hour, cfg.MaxAgentAge)
		assert.Equal(t, "agent-phase", cfg.FailurePolicy)
		assert.False(t, cfg.Distributed(), "no brokers configured")
	})

	t.Run("overrides", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LANGDETECT_API_ENDPOINT", "https://hooks.example.com/lang")
		t.Setenv("GITHUB_TOKEN", "test-token-12345")
		t.Setenv("LANGDETECT_REPO_URL", "https://github.com/acme/widget")
		t.Setenv("LANGDETECT_MAX_AGENT_AGE", "30m")
		t.Setenv("LANGDETECT_FAILURE_POLICY", "strict")
		t.Setenv("REDPANDA_BROKERS", "broker1:9092, broker2:9092,")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "test-token-12345", cfg.Step.Token)
		assert.Equal(t, 30*time.Minute, cfg.MaxAgentAge)
		assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.RedpandaBrokers)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad duration", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("LANGDETECT_MAX_AGENT_AGE", "an hour")

		_, err := LoadFromEnv()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "langdetect.yaml")
	content := `step:
  api_endpoint: https://hooks.example.com/from-file
  token: file-token
  repo_url: https://github.com/acme/widget
max_agent_age: 45m
failure_policy: strict
redpanda_brokers:
  - localhost:19092
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("GITHUB_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/from-file", cfg.Step.APIEndpoint)
	assert.Equal(t, "env-token", cfg.Step.Token, "environment overrides the file")
	assert.Equal(t, 45*time.Minute, cfg.MaxAgentAge)
	assert.Equal(t, DefaultGitHubAPIURL, cfg.GitHubAPIURL, "unset keys keep their default")
	assert.True(t, cfg.Distributed())
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.FailurePolicy = "lenient"
	cfg.MaxAgentAge = 0

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	for _, want := range []string{"LANGDETECT_REPO_URL", "GITHUB_TOKEN", "LANGDETECT_API_ENDPOINT", "must be positive", "lenient"} {
		assert.Contains(t, err.Error(), want)
	}
}
