package bites

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func linear(id string, next *string) *MotivationCard {
	return &MotivationCard{Linear{CardBase: CardBase{ID: id, Body: id}, NextCardID: next}}
}

func TestValidateGraph(t *testing.T) {
	question := &QuestionCard{
		CardBase: CardBase{ID: "q"},
		Question: "?",
		Options: []Option{
			{Key: "a", Label: "A", NextCardID: "ra"},
			{Key: "b", Label: "B", NextCardID: "rb"},
		},
	}
	cases := []struct {
		name  string
		cards Cards
		start string
		want  bool
	}{
		{"linear chain", Cards{linear("a", strp("b")), linear("b", nil)}, "a", true},
		{"missing start", Cards{linear("a", nil)}, "zz", false},
		{"empty set", Cards{}, "c1", false},
		{"dangling next", Cards{linear("a", strp("nope"))}, "a", false},
		{"dangling option", Cards{question, linear("ra", nil)}, "q", false},
		{"branches resolve", Cards{question, linear("ra", nil), linear("rb", nil)}, "q", true},
		// Cycles are a known gap and pass.
		{"cycle", Cards{linear("a", strp("b")), linear("b", strp("a"))}, "a", true},
		{"empty next ignored", Cards{linear("a", strp(""))}, "a", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidateGraph(tc.cards, tc.start))
		})
	}
}

func TestFallbackSet(t *testing.T) {
	set := FallbackSet()
	assert.True(t, ValidateGraph(set.Cards, set.StartCardID))
	assert.Len(t, set.Cards, 8)
	assert.Equal(t, "f1", set.StartCardID)
	assert.Equal(t, 8, set.TotalCards)
	assert.Equal(t, 8, set.CardSequenceLength)
	for _, c := range set.Cards {
		assert.NotEmpty(t, c.Base().BackgroundColor, c.Base().ID)
		_, isQ := c.(*QuestionCard)
		assert.False(t, isQ)
	}
	assert.Nil(t, set.Cards[7].References())
	assert.Nil(t, set.Cards[0].Base().Title)
	assert.Equal(t, "#059669", set.Cards[1].Base().BackgroundColor)

	set.Cards[0].Base().Body = "mutated"
	assert.Equal(t, "Welcome! Here are today's recovery insights.", FallbackSet().Cards[0].Base().Body)
}

func TestColors(t *testing.T) {
	assert.Equal(t, "#8B5CF6", ColorFor(TypeQuestion))
	assert.Equal(t, "#0D9488", ColorFor(CardType("mystery")))

	cards := AssignColors(Cards{
		&FactCard{Linear{CardBase: CardBase{ID: "a", BackgroundColor: "#000000"}}},
		&QuestionCard{CardBase: CardBase{ID: "b"}},
	})
	assert.Equal(t, "#3B82F6", cards[0].Base().BackgroundColor)
	assert.Equal(t, "#8B5CF6", cards[1].Base().BackgroundColor)
}

func TestClassifyPhase(t *testing.T) {
	now := time.Date(2024, 9, 1, 15, 0, 0, 0, time.UTC)
	ago := func(days int) *time.Time {
		d := now.AddDate(0, 0, -days)
		return &d
	}
	cases := []struct {
		name string
		date *time.Time
		want Phase
	}{
		{"unknown", nil, PhaseUnknown},
		{"today", ago(0), PhaseAcute},
		{"seven days", ago(7), PhaseAcute},
		{"eight days", ago(8), PhaseSubacute},
		{"180 days", ago(180), PhaseSubacute},
		{"181 days", ago(181), PhaseChronic},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyPhase(tc.date, now))
		})
	}
	assert.Equal(t, 0, DaysSinceStroke(nil, now))
	assert.Equal(t, 30, DaysSinceStroke(ago(30), now))
}
