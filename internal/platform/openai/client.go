package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/strokecovery/strokecovery-backend/internal/pkg/httpx"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	// Dimensions is forwarded to models that support shortened embeddings; 0 keeps the model default.
	Dimensions int
	Timeout    time.Duration
	MaxRetries int
}

type Client interface {
	llm.TextGenerator
	llm.Embedder
}

type client struct {
	log      *logger.Logger
	api      *goopenai.Client
	cfg      Config
	observer llm.Observer
}

func NewClient(log *logger.Logger, cfg Config, observer llm.Observer) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(goopenai.SmallEmbedding3)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		apiCfg.BaseURL = base
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &client{
		log:      log.With("client", "OpenAIClient"),
		api:      goopenai.NewClientWithConfig(apiCfg),
		cfg:      cfg,
		observer: observer,
	}, nil
}

func (c *client) GenerateText(ctx context.Context, system, user string, opts llm.Options) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: c.cfg.ChatModel,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	var out string
	err := c.call(ctx, c.cfg.ChatModel, "chat", func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return wrapErr(err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("openai: no response choices")
		}
		out = resp.Choices[0].Message.Content
		return nil
	})
	return out, err
}

func (c *client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}
	clean := make([]string, len(inputs))
	for i, s := range inputs {
		s = strings.TrimSpace(s)
		if s == "" {
			s = " "
		}
		clean[i] = s
	}
	req := goopenai.EmbeddingRequest{
		Input:      clean,
		Model:      goopenai.EmbeddingModel(c.cfg.EmbeddingModel),
		Dimensions: c.cfg.Dimensions,
	}
	// ada-002 rejects the dimensions parameter.
	if c.cfg.EmbeddingModel == string(goopenai.AdaEmbeddingV2) {
		req.Dimensions = 0
	}

	out := make([][]float32, len(clean))
	err := c.call(ctx, c.cfg.EmbeddingModel, "embed", func(ctx context.Context) error {
		resp, err := c.api.CreateEmbeddings(ctx, req)
		if err != nil {
			return wrapErr(err)
		}
		for i, d := range resp.Data {
			idx := d.Index
			if idx < 0 || idx >= len(out) {
				idx = i
			}
			if idx < len(out) {
				out[idx] = d.Embedding
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i] == nil {
			return nil, fmt.Errorf("openai embeddings missing index %d of %d", i, len(out))
		}
	}
	return out, nil
}

func (c *client) call(ctx context.Context, model, op string, fn func(context.Context) error) error {
	start := time.Now()
	err := httpx.Retry(ctx, c.cfg.MaxRetries, time.Second, fn, func(attempt int, sleep time.Duration, err error) {
		c.log.Warn("OpenAI request retrying",
			"operation", op,
			"attempt", attempt,
			"max_retries", c.cfg.MaxRetries,
			"sleep", sleep.String(),
			"error", err.Error(),
		)
	})
	if c.observer != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.observer.ObserveLLMRequest("openai", model, op, outcome, time.Since(start))
	}
	return err
}

type statusError struct {
	status int
	err    error
}

func (e *statusError) Error() string       { return e.err.Error() }
func (e *statusError) Unwrap() error       { return e.err }
func (e *statusError) HTTPStatusCode() int { return e.status }

// wrapErr exposes the HTTP status of go-openai errors to httpx's retry policy.
func wrapErr(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &statusError{status: apiErr.HTTPStatusCode, err: err}
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return &statusError{status: reqErr.HTTPStatusCode, err: err}
	}
	return err
}
