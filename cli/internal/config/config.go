package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zhaobenny/costopt/internal/llm"
)

// API key environment variables per provider
const (
	GeminiKeyEnv = "GEMINI_API_KEY"
	ChatKeyEnv   = "HF_API_TOKEN"
)

// ErrMissingAPIKey is returned when the provider's key is not in the environment
var ErrMissingAPIKey = errors.New("API key not set")

// Config holds the CLI configuration
type Config struct {
	Provider          string        `yaml:"provider,omitempty"`
	Model             string        `yaml:"model,omitempty"`
	Endpoint          string        `yaml:"endpoint,omitempty"`
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	RequestsPerMinute int           `yaml:"requests_per_minute,omitempty"`
	Dir               string        `yaml:"dir,omitempty"`

	// APIKey is only ever read from the environment
	APIKey string `yaml:"-"`
}

// DefaultPath returns the path to the config file in the home directory
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".costopt.yaml"), nil
}

// Load loads the configuration from path. A missing file is an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save saves the configuration to path
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyDefaults fills empty fields
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = llm.ProviderGemini
	}
	if c.Timeout <= 0 {
		c.Timeout = llm.DefaultTimeout
	}
	if c.Dir == "" {
		c.Dir = "."
	}
}

// Validate checks field values
func (c *Config) Validate() error {
	switch c.Provider {
	case llm.ProviderGemini, llm.ProviderChat:
	default:
		return fmt.Errorf("provider must be %q or %q, got %q", llm.ProviderGemini, llm.ProviderChat, c.Provider)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute must not be negative, got %d", c.RequestsPerMinute)
	}
	return nil
}

// APIKeyEnv returns the environment variable holding the provider's key
func APIKeyEnv(provider string) string {
	if provider == llm.ProviderChat {
		return ChatKeyEnv
	}
	return GeminiKeyEnv
}

// LoadAPIKey reads the provider's API key from the environment
func (c *Config) LoadAPIKey() error {
	env := APIKeyEnv(c.Provider)
	key := os.Getenv(env)
	if key == "" {
		return fmt.Errorf("%w: set %s in the environment or a .env file", ErrMissingAPIKey, env)
	}
	c.APIKey = key
	return nil
}

// LLM returns the model client configuration
func (c *Config) LLM() llm.Config {
	return llm.Config{
		Provider:          c.Provider,
		Endpoint:          c.Endpoint,
		Model:             c.Model,
		APIKey:            c.APIKey,
		Timeout:           c.Timeout,
		RequestsPerMinute: c.RequestsPerMinute,
	}.WithDefaults()
}
