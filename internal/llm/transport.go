package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of a reply body is read
const maxResponseBytes = 8 << 20

// transport is the HTTP plumbing shared by the provider clients
type transport struct {
	provider   string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

func newTransport(provider string, cfg Config, log zerolog.Logger) transport {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return transport{
		provider: provider,
		timeout:  cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		log:     log.With().Str("provider", provider).Logger(),
	}
}

// postJSON sends body to endpoint and returns the raw 2xx response body
func (t *transport) postJSON(ctx context.Context, endpoint string, header http.Header, body any) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, &NetworkError{Provider: t.provider, Cause: err}
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	t.log.Debug().Int("prompt_bytes", len(data)).Msg("calling model")
	start := time.Now()

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, t.networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, t.networkError(err)
	}

	t.log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Int("response_bytes", len(raw)).
		Msg("model responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Provider:   t.provider,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
	}

	return raw, nil
}

// networkError classifies a transport failure. The *url.Error wrapper is
// dropped because its URL can carry the API key.
func (t *transport) networkError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	ne := &NetworkError{Provider: t.provider, Cause: err}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		ne.Timeout = t.timeout
	}
	return ne
}

// errorMessage pulls a readable message out of an error body. Both
// {"error": {"message": "..."}} and {"error": "..."} shapes are common.
func errorMessage(raw []byte) string {
	var body struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Error) > 0 {
		var obj struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body.Error, &obj); err == nil && obj.Message != "" {
			return obj.Message
		}
		var s string
		if err := json.Unmarshal(body.Error, &s); err == nil && s != "" {
			return s
		}
	}

	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}
