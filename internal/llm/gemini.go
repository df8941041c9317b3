package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// Gemini calls the Generative Language generateContent endpoint.
// The API key travels as the "key" query parameter.
type Gemini struct {
	transport
	endpoint string
	model    string
	apiKey   string
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGemini creates a Gemini client. cfg should already have defaults applied.
func NewGemini(cfg Config, log zerolog.Logger) *Gemini {
	return &Gemini{
		transport: newTransport(ProviderGemini, cfg, log),
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		model:     cfg.Model,
		apiKey:    cfg.APIKey,
	}
}

// Generate sends prompt as a single user turn and returns the text of the
// first candidate
func (c *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	endpoint := c.endpoint + "/models/" + url.PathEscape(c.model) + ":generateContent?" +
		url.Values{"key": {c.apiKey}}.Encode()

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	raw, err := c.postJSON(ctx, endpoint, nil, reqBody)
	if err != nil {
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &ResponseError{Provider: c.provider, RawResponse: string(raw), Cause: err}
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &ResponseError{Provider: c.provider, RawResponse: string(raw), Cause: errors.New("no candidate text")}
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String(), nil
}
