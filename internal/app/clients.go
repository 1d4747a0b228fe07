package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/strokecovery/strokecovery-backend/internal/platform/anthropic"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
	"github.com/strokecovery/strokecovery-backend/internal/platform/openai"
	"github.com/strokecovery/strokecovery-backend/internal/platform/rediscache"
)

type Clients struct {
	Chat     llm.TextGenerator
	Embedder llm.Embedder
	Redis    rediscache.Cache
}

// NewLLM builds the chat provider selected by cfg.Provider. Embeddings always
// come from OpenAI; a nil embedder means semantic retrieval is unavailable.
func NewLLM(log *logger.Logger, cfg LLMConfig, observer llm.Observer) (llm.TextGenerator, llm.Embedder, error) {
	var embedder llm.Embedder
	var oa openai.Client
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		c, err := openai.NewClient(log, openai.Config{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			ChatModel:      cfg.ChatModel,
			EmbeddingModel: cfg.EmbeddingModel,
			Dimensions:     cfg.EmbeddingDimensions,
			Timeout:        cfg.Timeout,
			MaxRetries:     cfg.MaxRetries,
		}, observer)
		if err != nil {
			return nil, nil, fmt.Errorf("init openai client: %w", err)
		}
		oa = c
		embedder = c
	}

	switch cfg.Provider {
	case ProviderAnthropic:
		chat, err := anthropic.NewClient(log, anthropic.Config{
			APIKey:     cfg.AnthropicAPIKey,
			Model:      cfg.AnthropicModel,
			MaxRetries: cfg.MaxRetries,
		}, observer)
		if err != nil {
			return nil, embedder, fmt.Errorf("init anthropic client: %w", err)
		}
		return chat, embedder, nil
	case ProviderOpenAI, "":
		if oa == nil {
			return nil, nil, fmt.Errorf("missing OPENAI_API_KEY")
		}
		return oa, embedder, nil
	default:
		return nil, embedder, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}

// NewRedis returns nil when REDIS_URL is empty or unreachable; the API runs without the cache.
func NewRedis(ctx context.Context, log *logger.Logger, rawURL string) rediscache.Cache {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil
	}
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		log.Warn("Invalid REDIS_URL, running without cache", "error", err)
		return nil
	}
	cache, err := rediscache.New(ctx, log, rediscache.Config{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		Prefix:   "strokecovery",
	})
	if err != nil {
		log.Warn("Redis unavailable, running without cache", "error", err)
		return nil
	}
	return cache
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, observer llm.Observer) Clients {
	log.Info("Wiring clients...")

	chat, embedder, err := NewLLM(log, cfg.LLM, observer)
	if err != nil {
		// Bites fall back to the static set and medicine info stores empty rows.
		log.Warn("LLM provider unavailable", "provider", cfg.LLM.Provider, "error", err)
	}
	return Clients{
		Chat:     chat,
		Embedder: embedder,
		Redis:    NewRedis(ctx, log, cfg.RedisURL),
	}
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
