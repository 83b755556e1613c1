// Package config provides configuration management for the language detection build step.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"langdetect-agent/src/contracts"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DefaultGitHubAPIURL  = "https://api.github.com"
	DefaultMaxAgentAge   = time.Hour
	DefaultFailurePolicy = "agent-phase"
	DefaultListenAddr    = ":8080"
)

// Config holds the application configuration.
type Config struct {
	// Step is the build step configuration (webhook, token, repository).
	Step contracts.StepConfig `yaml:"step"`

	// GitHubAPIURL is the base URL of the GitHub REST API.
	GitHubAPIURL string `yaml:"github_api_url"`

	// MaxAgentAge is the connection age under which an agent counts as fresh.
	MaxAgentAge time.Duration `yaml:"max_agent_age"`

	// FailurePolicy selects which stage failures fail the step ("agent-phase" or "strict").
	FailurePolicy string `yaml:"failure_policy"`

	// RedpandaBrokers enables distributed mode when non-empty.
	RedpandaBrokers []string `yaml:"redpanda_brokers"`

	// PostgresDSN enables the Postgres run store and node registry when set.
	PostgresDSN string `yaml:"postgres_dsn"`

	// ListenAddr is the address of the HTTP API.
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns a configuration with every default applied and no step values.
func Default() *Config {
	return &Config{
		GitHubAPIURL:  DefaultGitHubAPIURL,
		MaxAgentAge:   DefaultMaxAgentAge,
		FailurePolicy: DefaultFailurePolicy,
		ListenAddr:    DefaultListenAddr,
	}
}

// LoadFromEnv loads configuration from environment variables.
// Missing step values are not an error here; see Validate.
func LoadFromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads an optional YAML file and then applies environment overrides.
// An empty path behaves like LoadFromEnv.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoadFromEnv loads configuration from environment variables and panics on error.
// This is useful for initialization in main() where configuration errors should be fatal.
func MustLoadFromEnv() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Step.APIEndpoint, "LANGDETECT_API_ENDPOINT")
	setString(&c.Step.Token, "GITHUB_TOKEN")
	setString(&c.Step.RepoURL, "LANGDETECT_REPO_URL")
	setString(&c.GitHubAPIURL, "GITHUB_API_URL")
	setString(&c.FailurePolicy, "LANGDETECT_FAILURE_POLICY")
	setString(&c.PostgresDSN, "POSTGRES_DSN")
	setString(&c.ListenAddr, "LANGDETECT_LISTEN_ADDR")

	if v := os.Getenv("LANGDETECT_MAX_AGENT_AGE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: LANGDETECT_MAX_AGENT_AGE: %v", ErrInvalidConfig, err)
		}
		c.MaxAgentAge = d
	}

	if v := os.Getenv("REDPANDA_BROKERS"); v != "" {
		c.RedpandaBrokers = splitList(v)
	}

	return nil
}

// Validate checks the values a step run cannot do without.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Step.RepoURL) == "" {
		problems = append(problems, "LANGDETECT_REPO_URL is required")
	}
	if strings.TrimSpace(c.Step.Token) == "" {
		problems = append(problems, "GITHUB_TOKEN is required")
	}
	if strings.TrimSpace(c.Step.APIEndpoint) == "" {
		problems = append(problems, "LANGDETECT_API_ENDPOINT is required")
	}
	if c.MaxAgentAge <= 0 {
		problems = append(problems, "LANGDETECT_MAX_AGENT_AGE must be positive")
	}
	switch c.FailurePolicy {
	case "agent-phase", "strict":
	default:
		problems = append(problems, fmt.Sprintf("unknown failure policy %q", c.FailurePolicy))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Distributed reports whether a broker is configured.
func (c *Config) Distributed() bool {
	return len(c.RedpandaBrokers) > 0
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
