package bites

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/pkg/pointers"
)

const systemPrompt = `You are a stroke recovery companion creating daily "Stroke Bites" - short, swipeable cards for a stroke survivor. You must output valid JSON only.

RULES:
1. Generate exactly 8-10 cards in a flat list
2. MUST include: 1 welcome card, 2-3 research fact cards (if insights provided), AT LEAST 1 Q&A card with 2 options, and conditional responses for each Q&A branch
3. Q&A cards are REQUIRED - each Q&A card has type="qa" with a "question" field and "options" array (no "body" field)
4. Each Q&A option must have next_card_id pointing to a conditional_response card
5. Both Q&A branches must rejoin the main sequence
6. Card IDs use format "c1", "c2", "c3", "c4a", "c4b", etc.
7. The last card in the main path has next_card_id: null
8. Research facts must be based ONLY on the provided insights - do not invent medical claims
9. Use warm, encouraging, plain language. The reader may have cognitive difficulties.
10. Each card body should be 1-3 short sentences max.
11. Do NOT include "background_color" field - colors will be assigned automatically based on card type

OUTPUT FORMAT:
{
  "cards": [...],
  "start_card_id": "c1",
  "card_sequence_length": 8
}`

const userPromptTail = `IMPORTANT: Generate 8-10 cards with AT LEAST 1 Q&A question that helps personalize future content.
The Q&A questions should ask about the patient's daily habits, therapy experience,
or recovery goals - things not already known from their profile.

Example Q&A card structure:
{
  "id": "c3",
  "type": "qa",
  "title": null,
  "body": "",
  "emoji": "🤔",
  "question": "Do you exercise regularly each week?",
  "options": [
    {"key": "a", "label": "Yes, 3+ times a week", "next_card_id": "c4a"},
    {"key": "b", "label": "No, not regularly", "next_card_id": "c4b"}
  ],
  "next_card_id": null,
  "source_insight_id": null
}

Return ONLY valid JSON, no markdown formatting.`

type promptInsight struct {
	ID           string  `json:"id"`
	Claim        string  `json:"claim"`
	Evidence     *string `json:"evidence"`
	Intervention *string `json:"intervention"`
}

// BuildPrompts renders the system and user prompts. It has no side effects.
func BuildPrompts(profile *types.PatientProfile, insights []*types.Insight, prefs map[string]string, now time.Time) (string, string) {
	phase := ClassifyPhase(profile.StrokeDate, now)
	days := DaysSinceStroke(profile.StrokeDate, now)

	var b strings.Builder
	b.WriteString("Generate today's Stroke Bites for this patient:\n")
	fmt.Fprintf(&b, "- Stroke type: %s\n", orDefault(profile.StrokeType, "not specified"))
	fmt.Fprintf(&b, "- Recovery phase: %s (%d days since stroke)\n", phase, days)
	therapies := "none"
	if len(profile.CurrentTherapies) > 0 {
		therapies = strings.Join(profile.CurrentTherapies, ", ")
	}
	fmt.Fprintf(&b, "- Current therapies: %s\n", therapies)
	fmt.Fprintf(&b, "- Affected side: %s\n", orDefault(profile.AffectedSide, "not specified"))

	b.WriteString("\nPrevious Q&A preferences (use to personalize):\n")
	if len(prefs) == 0 {
		b.WriteString("No previous answers")
	} else {
		b.WriteString(indentJSON(prefs))
	}
	b.WriteString("\n\nResearch insights to use (reference by source_insight_id):\n")
	rendered := make([]promptInsight, 0, len(insights))
	for _, in := range insights {
		rendered = append(rendered, promptInsight{
			ID:           in.ID.String(),
			Claim:        in.Claim,
			Evidence:     in.Evidence,
			Intervention: in.Intervention,
		})
	}
	b.WriteString(indentJSON(rendered))
	b.WriteString("\n\n")
	b.WriteString(userPromptTail)

	return systemPrompt, b.String()
}

func orDefault(s *string, def string) string {
	if strings.TrimSpace(pointers.Deref(s)) == "" {
		return def
	}
	return *s
}

func indentJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "[]"
	}
	return strings.TrimRight(buf.String(), "\n")
}
