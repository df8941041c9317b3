// Package llm sends prompts to a hosted text-generation model and returns
// the reply text. Each call is a single request: there are no retries, and
// callers decide what to do with a failure.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Provider names accepted in Config.Provider
const (
	ProviderGemini = "gemini"
	ProviderChat   = "chat"
)

// Defaults used when the corresponding Config field is empty
const (
	DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel    = "gemma-3-1b-it"
	DefaultChatEndpoint   = "https://router.huggingface.co/v1/chat/completions"
	DefaultChatModel      = "meta-llama/Llama-3.1-8B-Instruct:cerebras"
	DefaultTimeout        = 30 * time.Second
)

// Client turns a prompt into raw model text
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config selects and configures a model client
type Config struct {
	Provider string
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration

	// RequestsPerMinute spaces out calls; zero means unlimited
	RequestsPerMinute int
}

// WithDefaults fills empty fields for the configured provider
func (c Config) WithDefaults() Config {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	switch c.Provider {
	case ProviderGemini:
		if c.Endpoint == "" {
			c.Endpoint = DefaultGeminiEndpoint
		}
		if c.Model == "" {
			c.Model = DefaultGeminiModel
		}
	case ProviderChat:
		if c.Endpoint == "" {
			c.Endpoint = DefaultChatEndpoint
		}
		if c.Model == "" {
			c.Model = DefaultChatModel
		}
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// New returns the client for cfg.Provider
func New(cfg Config, log zerolog.Logger) (Client, error) {
	cfg = cfg.WithDefaults()
	switch cfg.Provider {
	case ProviderGemini:
		return NewGemini(cfg, log), nil
	case ProviderChat:
		return NewChat(cfg, log), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q (want %q or %q)", cfg.Provider, ProviderGemini, ProviderChat)
	}
}
