package bites

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

const (
	defaultStartCardID    = "c1"
	defaultSequenceLength = 8
)

// GenerationError marks a failed or unparseable model call. The orchestrator
// absorbs it into the fallback path.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("card generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Draft is the model's answer before validation and coloring.
type Draft struct {
	Cards              Cards
	StartCardID        string
	CardSequenceLength int
}

type CardGenerator interface {
	Generate(ctx context.Context, system, user string) (*Draft, error)
}

type generator struct {
	log  *logger.Logger
	llm  llm.TextGenerator
	opts llm.Options
}

// NewGenerator makes a single attempt per call; there is no retry at this layer.
func NewGenerator(log *logger.Logger, gen llm.TextGenerator, opts llm.Options) CardGenerator {
	if opts.Temperature == 0 {
		opts.Temperature = 0.3
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 3000
	}
	return &generator{log: log.With("component", "CardGenerator"), llm: gen, opts: opts}
}

func (g *generator) Generate(ctx context.Context, system, user string) (*Draft, error) {
	if g.llm == nil {
		return nil, &GenerationError{Stage: "call", Err: fmt.Errorf("no language model configured")}
	}
	raw, err := g.llm.GenerateText(ctx, system, user, g.opts)
	if err != nil {
		return nil, &GenerationError{Stage: "call", Err: err}
	}
	draft, err := ParseDraft(raw)
	if err != nil {
		return nil, &GenerationError{Stage: "parse", Err: err}
	}
	return draft, nil
}

// ParseDraft strips a markdown fence and decodes the model output.
func ParseDraft(raw string) (*Draft, error) {
	body := llm.StripCodeFence(raw)
	if body == "" {
		return nil, fmt.Errorf("empty response")
	}
	var out struct {
		Cards              Cards   `json:"cards"`
		StartCardID        *string `json:"start_card_id"`
		CardSequenceLength *int    `json:"card_sequence_length"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, err
	}
	d := &Draft{
		Cards:              out.Cards,
		StartCardID:        defaultStartCardID,
		CardSequenceLength: defaultSequenceLength,
	}
	if out.StartCardID != nil && strings.TrimSpace(*out.StartCardID) != "" {
		d.StartCardID = *out.StartCardID
	}
	if out.CardSequenceLength != nil {
		d.CardSequenceLength = *out.CardSequenceLength
	}
	return d, nil
}
