package bites

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLLMCards = `{
  "cards": [
    {"id": "c1", "type": "welcome", "title": null, "body": "Hi", "emoji": "👋", "next_card_id": "c2", "source_insight_id": null},
    {"id": "c2", "type": "qa", "title": null, "body": "", "emoji": "🤔", "question": "Do you walk daily?",
     "options": [
       {"key": "a", "label": "Yes", "next_card_id": "c3a"},
       {"key": "b", "label": "No", "next_card_id": "c3b"}
     ], "next_card_id": null},
    {"id": "c3a", "type": "conditional_response", "body": "Great", "next_card_id": "c4"},
    {"id": "c3b", "type": "conditional_response", "body": "Try a short walk", "next_card_id": "c4"},
    {"id": "c4", "type": "research_fact", "title": "Fact", "body": "Walking helps.", "source_insight_id": "abc", "next_card_id": "c5"},
    {"id": "c5", "type": "tip", "body": "Drink water", "next_card_id": "c6"},
    {"id": "c6", "type": "motivation", "body": "Keep going", "next_card_id": null}
  ],
  "start_card_id": "c1",
  "card_sequence_length": 6
}`

func TestCardsDecodeIntoVariants(t *testing.T) {
	d, err := ParseDraft(sampleLLMCards)
	require.NoError(t, err)
	require.Len(t, d.Cards, 7)

	_, ok := d.Cards[0].(*WelcomeCard)
	assert.True(t, ok, "c1 should be a WelcomeCard")

	q, ok := d.Cards[1].(*QuestionCard)
	require.True(t, ok, "c2 should be a QuestionCard")
	assert.Equal(t, "Do you walk daily?", q.Question)
	assert.Equal(t, []string{"c3a", "c3b"}, q.References())

	fact, ok := d.Cards[4].(*FactCard)
	require.True(t, ok)
	require.NotNil(t, fact.SourceInsightID)
	assert.Equal(t, "abc", *fact.SourceInsightID)

	assert.Nil(t, d.Cards[6].References())
	assert.Equal(t, "c1", d.StartCardID)
	assert.Equal(t, 6, d.CardSequenceLength)
}

func TestCardWireShape(t *testing.T) {
	next := "c2"
	c := &TipCard{Linear{CardBase: CardBase{ID: "c1", Body: "b", BackgroundColor: "#06B6D4"}, NextCardID: &next}}
	raw, err := json.Marshal(Cards{c})
	require.NoError(t, err)

	var m []map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	require.Len(t, m, 1)
	assert.Equal(t, "tip", m[0]["type"])
	assert.Equal(t, "c2", m[0]["next_card_id"])
	assert.Contains(t, m[0], "options")
	assert.Nil(t, m[0]["options"])
	assert.Nil(t, m[0]["question"])

	var back Cards
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Len(t, back, 1)
	assert.Equal(t, c, back[0])
}

func TestQuestionCardEncodesEmptyOptionsAsArray(t *testing.T) {
	raw, err := json.Marshal(Cards{&QuestionCard{CardBase: CardBase{ID: "q"}, Question: "?"}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"options":[]`)
	assert.Contains(t, string(raw), `"next_card_id":null`)
}

func TestUnknownCardTypeKeptAsLinear(t *testing.T) {
	var cs Cards
	require.NoError(t, json.Unmarshal([]byte(`[{"id":"x","type":"poll","body":"?","next_card_id":"y"}]`), &cs))
	require.Len(t, cs, 1)
	other, ok := cs[0].(*OtherCard)
	require.True(t, ok)
	assert.Equal(t, CardType("poll"), other.Type())
	assert.Equal(t, []string{"y"}, other.References())

	AssignColors(cs)
	assert.Equal(t, ColorFor(TypeWelcome), other.BackgroundColor)

	raw, err := json.Marshal(cs)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"poll"`)
}

func TestCardWithoutIDOrTypeRejected(t *testing.T) {
	var cs Cards
	assert.Error(t, json.Unmarshal([]byte(`[{"type":"tip","body":"no id"}]`), &cs))
	assert.Error(t, json.Unmarshal([]byte(`[{"id":"x","body":"no type"}]`), &cs))
}

func TestSourceInsightIDsInCardOrder(t *testing.T) {
	d, err := ParseDraft(sampleLLMCards)
	require.NoError(t, err)
	set := GeneratedSet{Cards: d.Cards}
	assert.Equal(t, []string{"abc"}, set.SourceInsightIDs())

	raw, err := json.Marshal(set)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, storedInsightIDs(raw))
	assert.Nil(t, storedInsightIDs([]byte("not json")))
}

func TestGeneratedSetRoundTrip(t *testing.T) {
	set := FallbackSet()
	raw, err := json.Marshal(set)
	require.NoError(t, err)

	var back GeneratedSet
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, set, &back)
	assert.Empty(t, back.SourceInsightIDs())
}
