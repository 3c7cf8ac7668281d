// Package llm is the gateway to the configured language-model backend. One
// Provider is selected at configuration time; callers never branch on the
// backend family. Failures carry a structured kind so retry policy does not
// depend on matching human-readable error text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jedisherpa/sphereai/internal/config"
)

// Message is one turn of a completion request.
type Message struct {
	Role    string
	Content string
}

// Request is a single completion call.
type Request struct {
	System      string
	Messages    []Message
	Model       string // optional override of the configured model
	Temperature float64
	MaxTokens   int
}

// Provider sends completion requests to one backend.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
	Model() string
}

// ErrorKind classifies a gateway failure for retry policy.
type ErrorKind int

const (
	// KindTransient covers timeouts, connection failures, rate limits, and
	// server errors. Worth retrying.
	KindTransient ErrorKind = iota
	// KindAuth covers credential problems. Retrying is pointless.
	KindAuth
	// KindInvalid covers malformed requests and unusable responses.
	KindInvalid
)

// Error is a classified gateway failure.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
	}
	return e.Message
}

// classifyStatus maps an HTTP status to an error kind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests || status >= 500:
		return KindTransient
	default:
		return KindInvalid
	}
}

// Kind extracts the error kind, falling back to phrase matching for errors
// that did not come through the typed path. Unknown errors default to
// transient so a flaky network never gets misread as a dead credential.
func Kind(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "api key") || strings.Contains(msg, "authentication") || strings.Contains(msg, "unauthorized") {
		return KindAuth
	}
	return KindTransient
}

// ErrNotConfigured is returned when no gateway has been set up.
var ErrNotConfigured = errors.New("no LLM configured. Run: sphere llm setup --provider <provider>")

// New selects the provider for the given configuration. The choice is made
// exactly once; everything downstream sees only the Provider interface.
func New(cfg *config.LLMConfig) (Provider, error) {
	if cfg == nil {
		return nil, ErrNotConfigured
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm config: model is required")
	}

	switch cfg.Type {
	case "anthropic":
		return newAnthropicProvider(cfg)
	case "openai", "openai_compatible", "":
		return newOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown provider type %q (valid: openai_compatible, anthropic)", cfg.Type)
	}
}

// CompleteWithRetry calls the provider up to maxAttempts times. Transient
// failures are retried; an authentication failure abandons the step
// immediately with the underlying message preserved.
func CompleteWithRetry(ctx context.Context, p Provider, req Request, maxAttempts int, logger *slog.Logger) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = 2
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := p.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if logger != nil {
			logger.Warn("llm call failed",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"error", err)
		}
		if Kind(err) == KindAuth {
			break
		}
	}
	return "", fmt.Errorf("llm call failed after %d attempts: %w", maxAttempts, lastErr)
}
