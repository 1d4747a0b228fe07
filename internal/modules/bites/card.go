package bites

import (
	"encoding/json"
	"fmt"
	"strings"
)

type CardType string

const (
	TypeWelcome             CardType = "welcome"
	TypeResearchFact        CardType = "research_fact"
	TypeMotivation          CardType = "motivation"
	TypeQuestion            CardType = "qa"
	TypeConditionalResponse CardType = "conditional_response"
	TypeTip                 CardType = "tip"
)

// CardBase holds the fields every card variant shares.
type CardBase struct {
	ID              string
	Title           *string
	Body            string
	Emoji           *string
	BackgroundColor string
	SourceInsightID *string
}

// Card is one node of a daily card graph. The concrete variants are
// WelcomeCard, FactCard, MotivationCard, QuestionCard,
// ConditionalResponseCard and TipCard.
type Card interface {
	Type() CardType
	Base() *CardBase
	// References lists every forward card id this card points at.
	References() []string
	card()
}

// Linear is embedded by every variant that advances to a single next card.
type Linear struct {
	CardBase
	NextCardID *string
}

func (l *Linear) Base() *CardBase { return &l.CardBase }
func (l *Linear) card()           {}
func (l *Linear) linear() *Linear { return l }

func (l *Linear) References() []string {
	if l.NextCardID == nil || *l.NextCardID == "" {
		return nil
	}
	return []string{*l.NextCardID}
}

type WelcomeCard struct{ Linear }
type FactCard struct{ Linear }
type MotivationCard struct{ Linear }
type ConditionalResponseCard struct{ Linear }
type TipCard struct{ Linear }

func (*WelcomeCard) Type() CardType             { return TypeWelcome }
func (*FactCard) Type() CardType                { return TypeResearchFact }
func (*MotivationCard) Type() CardType          { return TypeMotivation }
func (*ConditionalResponseCard) Type() CardType { return TypeConditionalResponse }
func (*TipCard) Type() CardType                 { return TypeTip }

// OtherCard keeps a card whose type the app does not know. It advances like
// a linear card and takes the welcome color.
type OtherCard struct {
	Linear
	Kind CardType
}

func (o *OtherCard) Type() CardType { return o.Kind }

type Option struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	NextCardID string `json:"next_card_id"`
}

// QuestionCard branches through its options instead of a next card.
type QuestionCard struct {
	CardBase
	Question string
	Options  []Option
}

func (q *QuestionCard) Type() CardType  { return TypeQuestion }
func (q *QuestionCard) Base() *CardBase { return &q.CardBase }
func (q *QuestionCard) card()           {}

func (q *QuestionCard) References() []string {
	out := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o.NextCardID != "" {
			out = append(out, o.NextCardID)
		}
	}
	return out
}

// wireCard is the flat JSON shape shared by the API, the LLM and the stored document.
type wireCard struct {
	ID              string   `json:"id"`
	Type            CardType `json:"type"`
	Title           *string  `json:"title"`
	Body            string   `json:"body"`
	Emoji           *string  `json:"emoji"`
	BackgroundColor string   `json:"background_color"`
	SourceInsightID *string  `json:"source_insight_id"`
	Question        *string  `json:"question"`
	Options         []Option `json:"options"`
	NextCardID      *string  `json:"next_card_id"`
}

func toWire(c Card) wireCard {
	b := c.Base()
	w := wireCard{
		ID:              b.ID,
		Type:            c.Type(),
		Title:           b.Title,
		Body:            b.Body,
		Emoji:           b.Emoji,
		BackgroundColor: b.BackgroundColor,
		SourceInsightID: b.SourceInsightID,
	}
	switch v := c.(type) {
	case *QuestionCard:
		q := v.Question
		w.Question = &q
		w.Options = v.Options
		if w.Options == nil {
			w.Options = []Option{}
		}
	case interface{ linear() *Linear }:
		w.NextCardID = v.linear().NextCardID
	}
	return w
}

func fromWire(w wireCard) (Card, error) {
	if strings.TrimSpace(w.ID) == "" {
		return nil, fmt.Errorf("card without id")
	}
	if strings.TrimSpace(string(w.Type)) == "" {
		return nil, fmt.Errorf("card %q: missing type", w.ID)
	}
	base := CardBase{
		ID:              w.ID,
		Title:           w.Title,
		Body:            w.Body,
		Emoji:           w.Emoji,
		BackgroundColor: w.BackgroundColor,
		SourceInsightID: w.SourceInsightID,
	}
	lin := Linear{CardBase: base, NextCardID: w.NextCardID}
	switch w.Type {
	case TypeWelcome:
		return &WelcomeCard{lin}, nil
	case TypeResearchFact:
		return &FactCard{lin}, nil
	case TypeMotivation:
		return &MotivationCard{lin}, nil
	case TypeConditionalResponse:
		return &ConditionalResponseCard{lin}, nil
	case TypeTip:
		return &TipCard{lin}, nil
	case TypeQuestion:
		q := ""
		if w.Question != nil {
			q = *w.Question
		}
		return &QuestionCard{CardBase: base, Question: q, Options: w.Options}, nil
	}
	return &OtherCard{Linear: lin, Kind: w.Type}, nil
}

// Cards encodes as a JSON array of tagged cards.
type Cards []Card

func (cs Cards) MarshalJSON() ([]byte, error) {
	out := make([]wireCard, len(cs))
	for i, c := range cs {
		out[i] = toWire(c)
	}
	return json.Marshal(out)
}

func (cs *Cards) UnmarshalJSON(data []byte) error {
	var raw []wireCard
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Cards, 0, len(raw))
	for _, w := range raw {
		c, err := fromWire(w)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*cs = out
	return nil
}

// GeneratedSet is one day's card graph plus its traversal metadata. It is
// also the document stored in stroke_bites.cards_json.
type GeneratedSet struct {
	Cards              Cards  `json:"cards"`
	StartCardID        string `json:"start_card_id"`
	TotalCards         int    `json:"total_cards"`
	CardSequenceLength int    `json:"card_sequence_length"`
}

// SourceInsightIDs returns the non-empty source insight ids in card order.
func (s *GeneratedSet) SourceInsightIDs() []string {
	var out []string
	for _, c := range s.Cards {
		if id := c.Base().SourceInsightID; id != nil && *id != "" {
			out = append(out, *id)
		}
	}
	return out
}
