package papers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

type fakeLLM struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
	opts  []llm.Options
	users []string
}

func (f *fakeLLM) GenerateText(_ context.Context, _ string, user string, opts llm.Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.opts = append(f.opts, opts)
	f.users = append(f.users, user)
	return f.reply, f.err
}

func longBody() string {
	return strings.Repeat("Task-specific training improved arm function in chronic stroke. ", 4)
}

func TestShouldExtract(t *testing.T) {
	cases := []struct {
		name    string
		section ParsedSection
		want    bool
	}{
		{"results", ParsedSection{Name: "results", Content: longBody()}, true},
		{"references", ParsedSection{Name: "references", Content: longBody()}, false},
		{"british spelling", ParsedSection{Name: "Acknowledgements", Content: longBody()}, false},
		{"preamble", ParsedSection{Name: "preamble", Content: longBody()}, false},
		{"too short", ParsedSection{Name: "results", Content: strings.Repeat("a", 99)}, false},
		{"exactly minimum", ParsedSection{Name: "results", Content: strings.Repeat("a", 100)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldExtract(tc.section))
		})
	}
}

func TestParseInsightsHandlesFenceAndDropsEmptyClaims(t *testing.T) {
	raw := "```json\n{\"insights\": [" +
		`{"claim": "Mirror therapy improves motor recovery.", "evidence": "RCT", "quantitative_result": null, "stroke_types": ["Ischemic", "ischemic"], "recovery_phase": "Subacute", "intervention": "mirror therapy", "sample_size": 48},` +
		`{"claim": "   ", "stroke_types": []}` +
		"]}\n```"

	out, err := ParseInsights(raw)
	require.NoError(t, err)
	require.Len(t, out, 1)
	in := out[0]
	assert.Equal(t, "Mirror therapy improves motor recovery.", in.Claim)
	require.NotNil(t, in.Evidence)
	assert.Equal(t, "RCT", *in.Evidence)
	assert.Nil(t, in.QuantitativeResult)
	assert.Equal(t, []string{"ischemic"}, in.StrokeTypes)
	require.NotNil(t, in.RecoveryPhase)
	assert.Equal(t, "subacute", *in.RecoveryPhase)
	require.NotNil(t, in.SampleSize)
	assert.Equal(t, 48, *in.SampleSize)
}

func TestParseInsightsRepairsMalformedJSON(t *testing.T) {
	raw := `{"insights": [{"claim": "Walking practice helps balance.", "stroke_types": [],}]`

	out, err := ParseInsights(raw)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Walking practice helps balance.", out[0].Claim)
}

func TestParseInsightsSampleSizeVariants(t *testing.T) {
	cases := map[string]*int{
		`150`:       intPtr(150),
		`150.0`:     intPtr(150),
		`"n=32"`:    intPtr(32),
		`"unknown"`: nil,
		`null`:      nil,
		`0`:         nil,
	}
	for raw, want := range cases {
		out, err := ParseInsights(`{"insights":[{"claim":"c","sample_size":` + raw + `}]}`)
		require.NoError(t, err, raw)
		require.Len(t, out, 1, raw)
		assert.Equal(t, want, out[0].SampleSize, raw)
	}
}

func TestParseInsightsDropsUnknownPhase(t *testing.T) {
	out, err := ParseInsights(`{"insights":[{"claim":"c","recovery_phase":"long-term"}]}`)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].RecoveryPhase)
}

func intPtr(n int) *int { return &n }

func TestExtractSectionUsesLowTemperature(t *testing.T) {
	gen := &fakeLLM{reply: `{"insights":[{"claim":"Daily practice helps."}]}`}
	ex := NewExtractor(logger.Nop(), gen, 0)

	out := ex.ExtractSection(context.Background(), ParsedSection{Name: "results", Content: longBody()})
	require.Len(t, out, 1)
	require.Equal(t, 1, gen.calls)
	assert.InDelta(t, 0.1, gen.opts[0].Temperature, 0.0001)
	assert.Equal(t, 2000, gen.opts[0].MaxTokens)
	assert.Contains(t, gen.users[0], "RESULTS section")
}

func TestExtractSectionSkipsWithoutCallingModel(t *testing.T) {
	gen := &fakeLLM{reply: `{"insights":[{"claim":"x"}]}`}
	ex := NewExtractor(logger.Nop(), gen, 0)

	out := ex.ExtractSection(context.Background(), ParsedSection{Name: "references", Content: longBody()})
	assert.Empty(t, out)
	assert.Equal(t, 0, gen.calls)
}

func TestExtractSectionFailureYieldsNothing(t *testing.T) {
	for name, gen := range map[string]*fakeLLM{
		"provider error": {err: errors.New("boom")},
		"garbage":        {reply: "I could not find anything"},
	} {
		t.Run(name, func(t *testing.T) {
			ex := NewExtractor(logger.Nop(), gen, 0)
			out := ex.ExtractSection(context.Background(), ParsedSection{Name: "results", Content: longBody()})
			assert.NotNil(t, out)
			assert.Empty(t, out)
		})
	}
}

func TestTruncateTokens(t *testing.T) {
	short := "stroke recovery"
	assert.Equal(t, short, TruncateTokens(short, 100))
	assert.Equal(t, short, TruncateTokens(short, 0))

	long := strings.Repeat("rehabilitation ", 500)
	cut := TruncateTokens(long, 50)
	assert.Less(t, len(cut), len(long))
	assert.True(t, strings.HasPrefix(long, cut))
}

func TestEmbedText(t *testing.T) {
	ev, res := "RCT of 40 patients", "p<0.05"
	in := ExtractedInsight{Claim: "Claim.", Evidence: &ev, QuantitativeResult: &res}
	assert.Equal(t, "Claim. Evidence: RCT of 40 patients Results: p<0.05", EmbedText(in))
	assert.Equal(t, "Only claim", EmbedText(ExtractedInsight{Claim: "Only claim"}))
}
