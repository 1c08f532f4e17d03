// internal/llm/client.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"survey-analyst/internal/common/config"
	"survey-analyst/internal/common/logger"
	"survey-analyst/internal/common/metrics"
)

var (
	ErrLLMTimeout      = errors.New("LLM_TIMEOUT")
	ErrLLMFailed       = errors.New("LLM_FAILED")
	ErrEmptyCompletion = errors.New("LLM_EMPTY_COMPLETION")
)

// Client produces a single chat completion.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
	MaxRetries  int
}

// ConfigFromApp maps the llm section of the application config.
func ConfigFromApp(cfg config.LLMConfig) Config {
	return Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     config.GetDuration(cfg.Timeout),
		MaxRetries:  cfg.MaxRetries,
	}
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	client openai.Client
	cfg    Config
	logger logger.Logger
}

func NewOpenAIClient(cfg Config, log logger.Logger) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4o
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		logger: logger.Component(log, "llm"),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       c.cfg.Model,
		Temperature: openai.Float(c.cfg.Temperature),
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(c.cfg.MaxTokens)
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		metrics.LLMRequests.WithLabelValues("error").Inc()
		fields := map[string]interface{}{
			"model":      c.cfg.Model,
			"durationMs": time.Since(start).Milliseconds(),
			"error":      err,
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			fields["statusCode"] = apiErr.StatusCode
		}
		c.logger.Warn("LLM completion failed", fields)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ErrLLMTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrLLMFailed, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.LLMRequests.WithLabelValues("empty").Inc()
		return "", ErrEmptyCompletion
	}

	metrics.LLMRequests.WithLabelValues("ok").Inc()
	c.logger.Debug("LLM completion received", map[string]interface{}{
		"model":            c.cfg.Model,
		"durationMs":       time.Since(start).Milliseconds(),
		"completionTokens": resp.Usage.CompletionTokens,
	})
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
