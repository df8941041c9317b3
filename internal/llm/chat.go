package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

// Chat calls an OpenAI-compatible chat completions endpoint, such as the
// Hugging Face inference router
type Chat struct {
	transport
	endpoint string
	model    string
	apiKey   string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewChat creates a chat completions client. cfg should already have
// defaults applied.
func NewChat(cfg Config, log zerolog.Logger) *Chat {
	return &Chat{
		transport: newTransport(ProviderChat, cfg, log),
		endpoint:  cfg.Endpoint,
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
	}
}

// Generate sends prompt as a single user message and returns the first choice
func (c *Chat) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.apiKey)

	raw, err := c.postJSON(ctx, c.endpoint, header, reqBody)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &ResponseError{Provider: c.provider, RawResponse: string(raw), Cause: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ResponseError{Provider: c.provider, RawResponse: string(raw), Cause: errors.New("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}
