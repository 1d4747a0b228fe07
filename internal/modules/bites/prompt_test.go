package bites

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

func TestPreferenceKey(t *testing.T) {
	assert.Equal(t, "do_you_walk?", PreferenceKey("Do You Walk?"))
	long := strings.Repeat("é", 60)
	assert.Equal(t, 50, len([]rune(PreferenceKey(long))))
}

func TestExtractPreferencesLastWriteWins(t *testing.T) {
	q := "Do you exercise?"
	answers := []*types.StrokeBiteAnswer{
		{QuestionText: &q, SelectedLabel: strp("Yes"), CreatedAt: time.Unix(100, 0)},
		{QuestionText: &q, SelectedLabel: strp("No"), CreatedAt: time.Unix(200, 0)},
		{QuestionText: nil, SelectedLabel: strp("ignored")},
		{QuestionText: strp("Sleep well?"), SelectedLabel: nil},
	}
	prefs := ExtractPreferences(answers)
	assert.Equal(t, map[string]string{"do_you_exercise?": "No"}, prefs)
	assert.Empty(t, ExtractPreferences(nil))
}

func TestBuildPrompts(t *testing.T) {
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	stroke := now.AddDate(0, 0, -40)
	profile := &types.PatientProfile{
		StrokeDate:       &stroke,
		StrokeType:       strp("ischemic"),
		CurrentTherapies: pq.StringArray{"PT", "Speech"},
	}
	in := insight("Mirror therapy improves arm function")
	in.Evidence = strp("RCT, n=120")

	system, user := BuildPrompts(profile, []*types.Insight{in}, map[string]string{"sleep": "8 hours"}, now)

	assert.Contains(t, system, "Generate exactly 8-10 cards")
	assert.Contains(t, system, `"start_card_id": "c1"`)
	assert.Contains(t, user, "- Stroke type: ischemic\n")
	assert.Contains(t, user, "- Recovery phase: subacute (40 days since stroke)\n")
	assert.Contains(t, user, "- Current therapies: PT, Speech\n")
	assert.Contains(t, user, "- Affected side: not specified\n")
	assert.Contains(t, user, `"sleep": "8 hours"`)
	assert.Contains(t, user, in.ID.String())
	assert.Contains(t, user, `"evidence": "RCT, n=120"`)
	assert.Contains(t, user, `"intervention": null`)
	assert.True(t, strings.HasSuffix(user, "Return ONLY valid JSON, no markdown formatting."))
}

func TestBuildPromptsEmptyProfile(t *testing.T) {
	_, user := BuildPrompts(&types.PatientProfile{}, nil, nil, time.Now())
	assert.Contains(t, user, "- Recovery phase: unknown (0 days since stroke)")
	assert.Contains(t, user, "- Current therapies: none")
	assert.Contains(t, user, "No previous answers")
	assert.Contains(t, user, "(reference by source_insight_id):\n[]\n")
}

func TestGeneratorParsesFencedJSON(t *testing.T) {
	fake := &fakeLLM{out: "```json\n" + sampleLLMCards + "\n```"}
	g := NewGenerator(logger.Nop(), fake, llm.Options{})

	d, err := g.Generate(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Len(t, d.Cards, 7)
	assert.InDelta(t, 0.3, fake.opts.Temperature, 1e-6)
	assert.Equal(t, 3000, fake.opts.MaxTokens)
}

func TestGeneratorParsesFenceShapes(t *testing.T) {
	compact := strings.Join(strings.Fields(sampleLLMCards), " ")
	cases := map[string]string{
		"fence on own line":     "```json\n" + sampleLLMCards + "\n```",
		"content on fence line": "```json " + sampleLLMCards + "\n```",
		"single line":           "```json" + compact + "```",
		"upper case tag":        "```JSON\n" + sampleLLMCards + "\n```",
		"bare fence":            "```\n" + sampleLLMCards + "\n```",
		"no fence":              sampleLLMCards,
		"unterminated fence":    "```json\n" + sampleLLMCards,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := ParseDraft(raw)
			require.NoError(t, err)
			assert.Len(t, d.Cards, 7)
			assert.Equal(t, "c1", d.StartCardID)
		})
	}
}

func TestGeneratorDefaults(t *testing.T) {
	d, err := ParseDraft(`{"cards":[{"id":"c1","type":"welcome","body":"hi"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "c1", d.StartCardID)
	assert.Equal(t, 8, d.CardSequenceLength)
}

func TestGeneratorErrors(t *testing.T) {
	cases := map[string]*fakeLLM{
		"call":       {err: errors.New("boom")},
		"parse":      {out: "not json"},
		"empty":      {out: "```\n```"},
		"missing id": {out: `{"cards":[{"type":"tip","body":"?"}]}`},
	}
	for name, fake := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewGenerator(logger.Nop(), fake, llm.Options{}).Generate(context.Background(), "s", "u")
			var genErr *GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, 1, fake.calls)
		})
	}

	_, err := NewGenerator(logger.Nop(), nil, llm.Options{}).Generate(context.Background(), "s", "u")
	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)
}

func TestSemanticQuery(t *testing.T) {
	assert.Equal(t, "PT OT ischemic stroke chronic phase recovery", SemanticQuery([]string{"PT", "OT"}, "ischemic", PhaseChronic))
	assert.Equal(t, "PT", SemanticQuery([]string{"PT"}, "", PhaseUnknown))
}

func TestExclusionIDsDropsInvalidAndDuplicates(t *testing.T) {
	id := uuid.New()
	got := exclusionIDs([]string{id.String(), "c-fact-1", " " + id.String() + " "})
	assert.Equal(t, []uuid.UUID{id}, got)
}
