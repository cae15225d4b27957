package board

// Views is the sorted projection of a state handed to the UI.
type Views struct {
	Lists []List `json:"lists" yaml:"lists"`
	Cards []Card `json:"cards" yaml:"cards"`
}

// SortedLists returns every list ordered by key. Lists with equal keys keep
// their creation order.
func SortedLists(s State) []List {
	return sortLists(listValues(s.Lists))
}

// SortedCards returns every card ordered by key. Cards with equal keys keep
// their creation order.
func SortedCards(s State) []Card {
	return sortCards(cardValues(s.Cards))
}

// CardsInList returns the cards of parent in display order.
func CardsInList(s State, parent string) []Card {
	out := make([]Card, 0)
	for _, c := range SortedCards(s) {
		if c.Parent == parent {
			out = append(out, c)
		}
	}
	return out
}

// ViewsOf builds fresh views of s.
func ViewsOf(s State) Views {
	return Views{Lists: SortedLists(s), Cards: SortedCards(s)}
}
