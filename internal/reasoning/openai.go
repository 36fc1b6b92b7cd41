package reasoning

import (
	"context"
	"errors"
	"fmt"

	oa "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Defaults for OpenAIConfig.
const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 400
)

// OpenAIConfig configures OpenAIClient.
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string // optional, for compatible gateways
	Model     string
	MaxTokens int64
}

// OpenAIClient is a Client backed by the OpenAI chat completions API. It makes
// exactly one attempt per call; the deadline comes from the caller's context.
type OpenAIClient struct {
	cli       oa.Client
	model     string
	maxTokens int64
}

// NewOpenAIClient builds a client. Retries are disabled.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &OpenAIClient{
		cli:       oa.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

// Reason sends the request and classifies the outcome.
func (c *OpenAIClient) Reason(ctx context.Context, req Request) Result {
	resp, err := c.cli.Chat.Completions.New(ctx, oa.ChatCompletionNewParams{
		Model: oa.ChatModel(c.model),
		Messages: []oa.ChatCompletionMessageParamUnion{
			oa.SystemMessage(SystemPrompt),
			oa.UserMessage(req.Prompt()),
		},
		Temperature: oa.Float(0.2),
		MaxTokens:   oa.Int(c.maxTokens),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Timeout(err)
		}
		return TransportError(fmt.Errorf("openai chat completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return Malformed("", errors.New("no choices in response"))
	}
	return Parse(resp.Choices[0].Message.Content)
}
