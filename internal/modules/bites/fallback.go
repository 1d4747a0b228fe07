package bites

type fallbackCard struct {
	id, typ, title, body, emoji, color string
}

var fallbackCards = []fallbackCard{
	{"f1", "welcome", "", "Welcome! Here are today's recovery insights.", "👋", "#0D9488"},
	{"f2", "motivation", "Recovery is a Journey", "Every small step forward is progress. Be patient with yourself.", "🌱", "#059669"},
	{"f3", "tip", "Stay Consistent", "Regular therapy sessions help your brain form new connections. Consistency matters more than intensity.", "🧠", "#2563EB"},
	{"f4", "motivation", "You're Not Alone", "Millions of stroke survivors are on this journey with you. Recovery takes time, and that's okay.", "💙", "#7C3AED"},
	{"f5", "tip", "Rest Matters", "Your brain heals during sleep. Aim for 7-9 hours each night to support your recovery.", "😴", "#EC4899"},
	{"f6", "motivation", "Celebrate Small Wins", "Did you do your therapy today? Take your meds? That's worth celebrating!", "🎉", "#EA580C"},
	{"f7", "tip", "Stay Hydrated", "Drinking enough water helps your body and brain function better. Keep a water bottle nearby.", "💧", "#2563EB"},
	{"f8", "motivation", "Keep Going", "You're doing great. Come back tomorrow for more insights!", "✨", "#0D9488"},
}

// FallbackSet returns a fresh copy of the static linear set. Its colors are
// fixed and are not taken from the palette.
func FallbackSet() *GeneratedSet {
	cards := make(Cards, 0, len(fallbackCards))
	for i, fc := range fallbackCards {
		lin := Linear{CardBase: CardBase{ID: fc.id, Body: fc.body, BackgroundColor: fc.color}}
		if fc.title != "" {
			title := fc.title
			lin.Title = &title
		}
		emoji := fc.emoji
		lin.Emoji = &emoji
		if i+1 < len(fallbackCards) {
			next := fallbackCards[i+1].id
			lin.NextCardID = &next
		}
		switch CardType(fc.typ) {
		case TypeWelcome:
			cards = append(cards, &WelcomeCard{lin})
		case TypeTip:
			cards = append(cards, &TipCard{lin})
		default:
			cards = append(cards, &MotivationCard{lin})
		}
	}
	return &GeneratedSet{
		Cards:              cards,
		StartCardID:        fallbackCards[0].id,
		TotalCards:         len(cards),
		CardSequenceLength: len(cards),
	}
}
