package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jedisherpa/sphereai/internal/config"
)

// scriptedProvider fails a fixed number of times before succeeding.
type scriptedProvider struct {
	failures int
	err      error
	calls    int
}

func (p *scriptedProvider) Complete(ctx context.Context, req Request) (string, error) {
	p.calls++
	if p.calls <= p.failures {
		return "", p.err
	}
	return "ok", nil
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "test-model" }

func TestCompleteWithRetryRecovers(t *testing.T) {
	p := &scriptedProvider{failures: 1, err: &Error{Kind: KindTransient, Status: 500, Message: "upstream down"}}

	text, err := CompleteWithRetry(context.Background(), p, Request{}, 2, nil)
	if err != nil {
		t.Fatalf("CompleteWithRetry: %v", err)
	}
	if text != "ok" {
		t.Errorf("text = %q", text)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

func TestCompleteWithRetryExhaustsTransient(t *testing.T) {
	p := &scriptedProvider{failures: 99, err: &Error{Kind: KindTransient, Status: 503, Message: "unavailable"}}

	_, err := CompleteWithRetry(context.Background(), p, Request{}, 3, nil)
	if err == nil {
		t.Fatal("want an error after exhausting attempts")
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Errorf("underlying error should be preserved, got %v", err)
	}
}

func TestCompleteWithRetryAbandonsOnAuth(t *testing.T) {
	p := &scriptedProvider{failures: 99, err: &Error{Kind: KindAuth, Status: 401, Message: "invalid api key"}}

	_, err := CompleteWithRetry(context.Background(), p, Request{}, 5, nil)
	if err == nil {
		t.Fatal("want an error")
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1 (auth failures are not retried)", p.calls)
	}
}

func TestCompleteWithRetryDefaultAttempts(t *testing.T) {
	p := &scriptedProvider{failures: 99, err: &Error{Kind: KindTransient, Message: "boom"}}

	_, _ = CompleteWithRetry(context.Background(), p, Request{}, 0, nil)
	if p.calls != 2 {
		t.Errorf("calls = %d, want the default of 2", p.calls)
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"typed auth", &Error{Kind: KindAuth}, KindAuth},
		{"typed invalid", &Error{Kind: KindInvalid}, KindInvalid},
		{"wrapped typed", fmt.Errorf("step: %w", &Error{Kind: KindAuth}), KindAuth},
		{"phrase api key", errors.New("bad API key supplied"), KindAuth},
		{"phrase unauthorized", errors.New("401 Unauthorized"), KindAuth},
		{"phrase authentication", errors.New("authentication failed"), KindAuth},
		{"unknown defaults transient", errors.New("connection reset"), KindTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, KindAuth},
		{403, KindAuth},
		{429, KindTransient},
		{500, KindTransient},
		{503, KindTransient},
		{400, KindInvalid},
		{404, KindInvalid},
	}
	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Errorf("classifyStatus(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("New(nil) = %v, want ErrNotConfigured", err)
	}

	if _, err := New(&config.LLMConfig{Type: "openai_compatible", BaseURL: "http://x"}); err == nil {
		t.Error("missing model should be rejected")
	}

	if _, err := New(&config.LLMConfig{Type: "mystery", Model: "m", BaseURL: "http://x"}); err == nil {
		t.Error("unknown provider type should be rejected")
	}

	p, err := New(&config.LLMConfig{Type: "openai_compatible", Model: "llama3.2", BaseURL: "http://localhost:11434/v1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Model() != "llama3.2" {
		t.Errorf("Model() = %q", p.Model())
	}
}

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindAuth, Status: 401, Message: "invalid key"}
	if got := e.Error(); got != "API error 401: invalid key" {
		t.Errorf("Error() = %q", got)
	}
	plain := &Error{Kind: KindTransient, Message: "timeout"}
	if got := plain.Error(); got != "timeout" {
		t.Errorf("Error() = %q", got)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		p, ok := GetPreset(name)
		if !ok {
			t.Errorf("preset %q missing", name)
			continue
		}
		if p.Type == "" {
			t.Errorf("preset %q has no type", name)
		}
		if name != "custom" && p.BaseURL == "" {
			t.Errorf("preset %q has no base URL", name)
		}
	}
	if _, ok := GetPreset("nonsense"); ok {
		t.Error("unknown preset should not resolve")
	}
}
