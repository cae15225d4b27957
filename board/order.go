package board

import (
	"cmp"
	"math"
	"slices"
)

// OrderBase is the gap left between consecutive order keys when an entity is
// appended, and the key given to the first entity of an empty group.
const OrderBase = 1e8

// AppendOrder returns a key greater than every key in orders.
func AppendOrder(orders []float64) float64 {
	if len(orders) == 0 {
		return OrderBase
	}
	return slices.Max(orders) + OrderBase
}

// InsertBetween returns a key for an entity placed between the keys a and b.
// A nil a means "before the first entity", a nil b "after the last one".
// The midpoint is truncated toward a, so once the gap drops below 2 the
// result collides with a; see Between.
func InsertBetween(a, b *float64) float64 {
	switch {
	case a == nil && b == nil:
		return OrderBase
	case a == nil:
		return math.Floor(*b / 2)
	case b == nil:
		return *a + OrderBase
	default:
		return *a + math.Floor(math.Abs(*b-*a)/2)
	}
}

// Between reports whether key sorts strictly inside the bounds a and b, with
// nil bounds treated as open.
func Between(a, b *float64, key float64) bool {
	if a != nil && key <= *a {
		return false
	}
	if b != nil && key >= *b {
		return false
	}
	return true
}

// FindSiblings locates self among the cards sharing its parent and returns
// the keys of its immediate neighbours. ok is false when self is not in
// cards.
func FindSiblings(cards map[string]Card, self Card) (prev, next *float64, ok bool) {
	group := siblingsOf(cards, self.Parent)
	i := slices.IndexFunc(group, func(c Card) bool { return c.ID == self.ID })
	if i < 0 {
		return nil, nil, false
	}
	if i > 0 {
		p := group[i-1].Order
		prev = &p
	}
	if i < len(group)-1 {
		n := group[i+1].Order
		next = &n
	}
	return prev, next, true
}

// siblingsOf returns the cards of parent in display order.
func siblingsOf(cards map[string]Card, parent string) []Card {
	group := make([]Card, 0)
	for _, c := range cards {
		if c.Parent == parent {
			group = append(group, c)
		}
	}
	sortCards(group)
	return group
}

func cardOrders(cards map[string]Card, parent string) []float64 {
	orders := make([]float64, 0)
	for _, c := range cards {
		if c.Parent == parent {
			orders = append(orders, c.Order)
		}
	}
	return orders
}

func listOrders(lists map[string]List) []float64 {
	orders := make([]float64, 0, len(lists))
	for _, l := range lists {
		orders = append(orders, l.Order)
	}
	return orders
}

// rebalanceCards renumbers the cards of parent to OrderBase, 2*OrderBase, ...
// keeping their current display order. It writes into cards and returns the
// ids it changed.
func rebalanceCards(cards map[string]Card, parent string, f Factory) []string {
	var changed []string
	for i, c := range siblingsOf(cards, parent) {
		key := float64(i+1) * OrderBase
		if c.Order == key {
			continue
		}
		c.Order = key
		f.Touch(&c.Record)
		cards[c.ID] = c
		changed = append(changed, c.ID)
	}
	return changed
}

// rebalanceLists is rebalanceCards for the lists of the board.
func rebalanceLists(lists map[string]List, f Factory) []string {
	var changed []string
	for i, l := range sortLists(listValues(lists)) {
		key := float64(i+1) * OrderBase
		if l.Order == key {
			continue
		}
		l.Order = key
		f.Touch(&l.Record)
		lists[l.ID] = l
		changed = append(changed, l.ID)
	}
	return changed
}

// encounter orders records by creation time then id. Map iteration has no
// order of its own, so this stands in for insertion order ahead of the
// stable sort by key.
func encounter(a, b Record) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func sortCards(cards []Card) []Card {
	slices.SortFunc(cards, func(a, b Card) int { return encounter(a.Record, b.Record) })
	slices.SortStableFunc(cards, func(a, b Card) int { return cmp.Compare(a.Order, b.Order) })
	return cards
}

func sortLists(lists []List) []List {
	slices.SortFunc(lists, func(a, b List) int { return encounter(a.Record, b.Record) })
	slices.SortStableFunc(lists, func(a, b List) int { return cmp.Compare(a.Order, b.Order) })
	return lists
}

func listValues(lists map[string]List) []List {
	out := make([]List, 0, len(lists))
	for _, l := range lists {
		out = append(out, l)
	}
	return out
}

func cardValues(cards map[string]Card) []Card {
	out := make([]Card, 0, len(cards))
	for _, c := range cards {
		out = append(out, c)
	}
	return out
}
