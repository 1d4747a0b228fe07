package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/strokecovery/strokecovery-backend/internal/domain/research"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/pointers"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

const (
	minSectionChars          = 100
	defaultSectionTokenLimit = 6000
)

var skippedSections = map[string]bool{
	"references":       true,
	"acknowledgments":  true,
	"acknowledgements": true,
	"preamble":         true,
}

const extractionSystemPrompt = `You are a medical research analyst specializing in stroke rehabilitation research.
Extract the key insights from one section of a scientific paper that would be valuable for stroke survivors and caregivers.

Focus on rehabilitation techniques and their effectiveness, recovery timelines and outcomes, treatment recommendations, risk factors and prevention, quality of life, and specific metrics.

For each insight return:
- claim: the main finding in 1-2 sentences
- evidence: supporting methodology or data, or null
- quantitative_result: specific numbers, percentages or p-values, or null
- stroke_types: any of "ischemic", "hemorrhagic", "tbi"; empty when the finding is general
- recovery_phase: "acute" (0-7 days), "subacute" (1 week to 6 months), "chronic" (6+ months) or null
- intervention: the treatment or therapy discussed, or null
- sample_size: number of participants, or null

Respond with JSON only, in exactly this shape:
{"insights": [{"claim": "...", "evidence": null, "quantitative_result": null, "stroke_types": [], "recovery_phase": null, "intervention": null, "sample_size": null}]}

If the section has no relevant findings return {"insights": []}. Extract factual findings only, not speculation or future work.`

// ExtractedInsight is one claim pulled from a section, before embedding.
type ExtractedInsight struct {
	Claim              string   `json:"claim" yaml:"claim"`
	Evidence           *string  `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	QuantitativeResult *string  `json:"quantitative_result,omitempty" yaml:"quantitative_result,omitempty"`
	StrokeTypes        []string `json:"stroke_types" yaml:"stroke_types"`
	RecoveryPhase      *string  `json:"recovery_phase,omitempty" yaml:"recovery_phase,omitempty"`
	Intervention       *string  `json:"intervention,omitempty" yaml:"intervention,omitempty"`
	SampleSize         *int     `json:"sample_size,omitempty" yaml:"sample_size,omitempty"`
}

type Extractor interface {
	ExtractSection(ctx context.Context, section ParsedSection) []ExtractedInsight
}

type extractor struct {
	log         *logger.Logger
	llm         llm.TextGenerator
	tokenBudget int
}

// NewExtractor calls the model once per section at temperature 0.1. Sections
// are truncated to tokenBudget tokens first; 0 uses the default budget.
func NewExtractor(log *logger.Logger, gen llm.TextGenerator, tokenBudget int) Extractor {
	if tokenBudget <= 0 {
		tokenBudget = defaultSectionTokenLimit
	}
	return &extractor{log: log.With("component", "InsightExtractor"), llm: gen, tokenBudget: tokenBudget}
}

// ShouldExtract reports whether a section is worth an LLM call.
func ShouldExtract(section ParsedSection) bool {
	if skippedSections[strings.ToLower(section.Name)] {
		return false
	}
	return len([]rune(section.Content)) >= minSectionChars
}

// ExtractSection never fails: provider and parse errors yield no insights.
func (e *extractor) ExtractSection(ctx context.Context, section ParsedSection) []ExtractedInsight {
	if !ShouldExtract(section) || e.llm == nil {
		return []ExtractedInsight{}
	}
	body := TruncateTokens(section.Content, e.tokenBudget)
	user := fmt.Sprintf("Extract insights from this %s section of a stroke research paper:\n\n---\n%s\n---\n\nReturn JSON with the extracted insights.",
		strings.ToUpper(section.Name), body)

	raw, err := e.llm.GenerateText(ctx, extractionSystemPrompt, user, llm.Options{Temperature: 0.1, MaxTokens: 2000})
	if err != nil {
		e.log.Warn("Insight extraction failed", "section", section.Name, "error", err)
		return []ExtractedInsight{}
	}
	out, err := ParseInsights(raw)
	if err != nil {
		e.log.Warn("Insight response unparseable", "section", section.Name, "error", err)
		return []ExtractedInsight{}
	}
	return out
}

type rawInsight struct {
	Claim              string          `json:"claim"`
	Evidence           *string         `json:"evidence"`
	QuantitativeResult *string         `json:"quantitative_result"`
	StrokeTypes        []string        `json:"stroke_types"`
	RecoveryPhase      *string         `json:"recovery_phase"`
	Intervention       *string         `json:"intervention"`
	SampleSize         json.RawMessage `json:"sample_size"`
}

type rawResponse struct {
	Insights []rawInsight `json:"insights"`
}

// ParseInsights strips a markdown fence, repairs malformed JSON when needed
// and drops insights without a claim.
func ParseInsights(raw string) ([]ExtractedInsight, error) {
	body := llm.StripCodeFence(raw)
	var resp rawResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(body)
		if rerr != nil {
			return nil, fmt.Errorf("repair insight json: %w", rerr)
		}
		if err := json.Unmarshal([]byte(repaired), &resp); err != nil {
			return nil, fmt.Errorf("decode insight json: %w", err)
		}
	}

	out := make([]ExtractedInsight, 0, len(resp.Insights))
	for _, r := range resp.Insights {
		claim := strings.TrimSpace(r.Claim)
		if claim == "" {
			continue
		}
		out = append(out, ExtractedInsight{
			Claim:              claim,
			Evidence:           cleanOptional(r.Evidence),
			QuantitativeResult: cleanOptional(r.QuantitativeResult),
			StrokeTypes:        normalizeStrokeTypes(r.StrokeTypes),
			RecoveryPhase:      normalizePhase(r.RecoveryPhase),
			Intervention:       cleanOptional(r.Intervention),
			SampleSize:         parseSampleSize(r.SampleSize),
		})
	}
	return out, nil
}

func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := pointers.NonEmpty(*s)
	if v != nil && (strings.EqualFold(*v, "null") || strings.EqualFold(*v, "none")) {
		return nil
	}
	return v
}

func normalizeStrokeTypes(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func normalizePhase(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*p))
	switch v {
	case research.PhaseAcute, research.PhaseSubacute, research.PhaseChronic:
		return pointers.Ptr(v)
	}
	return nil
}

// parseSampleSize accepts 150, 150.0, "150" or "n=150".
func parseSampleSize(raw json.RawMessage) *int {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f <= 0 {
			return nil
		}
		return pointers.Int(int(f))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return nil
	}
	return pointers.Int(n)
}
