package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/jedisherpa/sphereai/internal/config"
)

// openaiProvider serves OpenAI itself plus every OpenAI-compatible backend
// (Ollama, LM Studio, Groq, OpenRouter, DeepSeek, custom endpoints).
type openaiProvider struct {
	client openai.Client
	name   string
	model  string
}

func newOpenAIProvider(cfg *config.LLMConfig) (*openaiProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm config: base_url is required")
	}

	opts := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.TimeoutDuration()),
	}
	if key := cfg.Key(); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}

	name := cfg.ProviderName
	if name == "" {
		name = cfg.Provider
	}
	return &openaiProvider{
		client: openai.NewClient(opts...),
		name:   name,
		model:  cfg.Model,
	}, nil
}

func (p *openaiProvider) Name() string  { return p.name }
func (p *openaiProvider) Model() string { return p.model }

func (p *openaiProvider) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(m.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: messages,
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindInvalid, Message: "empty response from " + p.name}
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return &Error{
			Kind:    classifyStatus(apierr.StatusCode),
			Status:  apierr.StatusCode,
			Message: apierr.Error(),
		}
	}
	// Transport-level failure (timeout, refused connection).
	return &Error{Kind: KindTransient, Message: err.Error()}
}
