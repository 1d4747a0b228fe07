package bites

var palette = map[CardType]string{
	TypeWelcome:             "#0D9488",
	TypeResearchFact:        "#3B82F6",
	TypeMotivation:          "#10B981",
	TypeQuestion:            "#8B5CF6",
	TypeConditionalResponse: "#F59E0B",
	TypeTip:                 "#06B6D4",
}

// ColorFor returns the palette color, or the welcome color for a type outside it (OtherCard).
func ColorFor(t CardType) string {
	if c, ok := palette[t]; ok {
		return c
	}
	return palette[TypeWelcome]
}

// AssignColors overwrites every card's background color in place.
func AssignColors(cards Cards) Cards {
	for _, c := range cards {
		c.Base().BackgroundColor = ColorFor(c.Type())
	}
	return cards
}
