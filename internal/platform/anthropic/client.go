package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goanthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/strokecovery/strokecovery-backend/internal/pkg/httpx"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
}

// defaultMaxTokens applies when the caller leaves Options.MaxTokens unset; the API requires a value.
const defaultMaxTokens = 1024

type client struct {
	log      *logger.Logger
	api      *goanthropic.Client
	cfg      Config
	observer llm.Observer
}

// NewClient returns a chat-only provider. Embeddings still come from OpenAI.
func NewClient(log *logger.Logger, cfg Config, observer llm.Observer) (llm.TextGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing ANTHROPIC_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	opts := []goanthropic.ClientOption{}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, goanthropic.WithBaseURL(base))
	}
	return &client{
		log:      log.With("client", "AnthropicClient"),
		api:      goanthropic.NewClient(cfg.APIKey, opts...),
		cfg:      cfg,
		observer: observer,
	}, nil
}

func (c *client) GenerateText(ctx context.Context, system, user string, opts llm.Options) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temp := opts.Temperature
	req := goanthropic.MessagesRequest{
		Model:       goanthropic.Model(c.cfg.Model),
		System:      system,
		Messages:    []goanthropic.Message{goanthropic.NewUserTextMessage(user)},
		MaxTokens:   maxTokens,
		Temperature: &temp,
	}

	start := time.Now()
	var out string
	err := httpx.Retry(ctx, c.cfg.MaxRetries, time.Second, func(ctx context.Context) error {
		resp, err := c.api.CreateMessages(ctx, req)
		if err != nil {
			return wrapErr(err)
		}
		var sb strings.Builder
		for _, block := range resp.Content {
			if block.Type == goanthropic.MessagesContentTypeText {
				sb.WriteString(block.GetText())
			}
		}
		out = sb.String()
		return nil
	}, func(attempt int, sleep time.Duration, err error) {
		c.log.Warn("Anthropic request retrying", "attempt", attempt, "sleep", sleep.String(), "error", err.Error())
	})
	if c.observer != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.observer.ObserveLLMRequest("anthropic", c.cfg.Model, "chat", outcome, time.Since(start))
	}
	return out, err
}

type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string       { return e.err.Error() }
func (e *statusError) Unwrap() error       { return e.err }
func (e *statusError) HTTPStatusCode() int { return e.status }

func wrapErr(err error) error {
	var reqErr *goanthropic.RequestError
	if errors.As(err, &reqErr) {
		return &statusError{status: reqErr.StatusCode, err: err}
	}
	var apiErr *goanthropic.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimitErr():
			return &statusError{status: 429, err: err}
		case apiErr.IsOverloadedErr(), apiErr.IsApiErr():
			return &statusError{status: 503, err: err}
		}
	}
	return err
}
