package llm

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func TestNewSelectsProvider(t *testing.T) {
	c, err := New(Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	g, ok := c.(*Gemini)
	if !ok {
		t.Fatalf("New() = %T, want *Gemini by default", c)
	}
	if g.model != DefaultGeminiModel || g.endpoint != DefaultGeminiEndpoint {
		t.Errorf("defaults not applied: endpoint=%q model=%q", g.endpoint, g.model)
	}
	if g.httpClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", g.httpClient.Timeout, DefaultTimeout)
	}

	c, err = New(Config{Provider: ProviderChat}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New(chat) error = %v", err)
	}
	ch, ok := c.(*Chat)
	if !ok {
		t.Fatalf("New(chat) = %T, want *Chat", c)
	}
	if ch.endpoint != DefaultChatEndpoint || ch.model != DefaultChatModel {
		t.Errorf("chat defaults not applied: endpoint=%q model=%q", ch.endpoint, ch.model)
	}

	if _, err := New(Config{Provider: "bedrock"}, zerolog.Nop()); err == nil {
		t.Error("New() should reject unknown providers")
	}
}

func TestRequestsPerMinuteLimit(t *testing.T) {
	tests := []struct {
		rpm  int
		want rate.Limit
	}{
		{0, rate.Inf},
		{60, rate.Every(time.Second)},
		{10, rate.Every(6 * time.Second)},
	}

	for _, tt := range tests {
		tr := newTransport(ProviderGemini, Config{RequestsPerMinute: tt.rpm, Timeout: time.Second}, zerolog.Nop())
		if got := tr.limiter.Limit(); got != tt.want {
			t.Errorf("rpm %d: Limit() = %v, want %v", tt.rpm, got, tt.want)
		}
	}
}
