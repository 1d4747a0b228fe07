package bites

// ValidateGraph reports whether startID and every forward reference resolve
// to a card in the set. Cycles and unreachable cards are not checked.
func ValidateGraph(cards Cards, startID string) bool {
	ids := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		ids[c.Base().ID] = struct{}{}
	}
	if _, ok := ids[startID]; !ok {
		return false
	}
	for _, c := range cards {
		for _, ref := range c.References() {
			if _, ok := ids[ref]; !ok {
				return false
			}
		}
	}
	return true
}
