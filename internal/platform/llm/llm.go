package llm

import (
	"context"
	"strings"
	"time"
)

// TextGenerator is any chat-completion provider.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, user string, opts Options) (string, error)
}

// Embedder turns text into fixed-length vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

type Options struct {
	Temperature float32
	MaxTokens   int
}

// StripCodeFence removes a leading ``` (with an optional json tag) and a
// trailing ``` if present. Content may start on the fence line.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = s[len("```"):]
	if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Observer receives one call per provider request; the metrics registry implements it.
type Observer interface {
	ObserveLLMRequest(provider, model, operation, outcome string, d time.Duration)
}
