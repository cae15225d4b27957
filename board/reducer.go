package board

import (
	"fmt"
	"maps"
)

// Reduce applies action to state and returns the next state. It never
// modifies state: on success the result shares no map with it, and on error
// state is returned as it was.
func Reduce(state State, action Action, f Factory) (State, error) {
	if action == nil {
		return state, &ValidationError{Field: "type", Message: "required"}
	}
	if err := action.Validate(); err != nil {
		return state, err
	}

	next := state.Clone()
	var err error

	switch a := action.(type) {
	case AddList:
		addList(next, a, f)
	case RemoveList:
		err = removeList(next, a)
	case UpdateList:
		err = updateList(next, a, f)
	case AddCard:
		addCard(next, a, f)
	case RemoveCard:
		err = removeCard(next, a)
	case UpdateCard:
		err = updateCard(next, a, f)
	case MoveCard:
		err = moveCard(next, a, f)
	case Rebalance:
		if a.Parent == "" {
			rebalanceLists(next.Lists, f)
		} else {
			rebalanceCards(next.Cards, a.Parent, f)
		}
	default:
		err = &ValidationError{Field: "type", Message: fmt.Sprintf("unsupported action %T", action)}
	}

	if err != nil {
		return state, err
	}
	return next, nil
}

func addList(s State, a AddList, f Factory) {
	l := List{
		Record:    f.CreateRecord(),
		Title:     a.Init.Title,
		Collapsed: a.Init.Collapsed,
		Order:     AppendOrder(listOrders(s.Lists)),
	}
	s.Lists[l.ID] = l
}

func removeList(s State, a RemoveList) error {
	if _, ok := s.Lists[a.ID]; !ok {
		return &NotFoundError{Kind: "list", ID: a.ID}
	}
	delete(s.Lists, a.ID)
	maps.DeleteFunc(s.Cards, func(_ string, c Card) bool { return c.Parent == a.ID })
	return nil
}

func updateList(s State, a UpdateList, f Factory) error {
	l, ok := s.Lists[a.ID]
	if !ok {
		return &NotFoundError{Kind: "list", ID: a.ID}
	}
	if a.Value.Title != nil {
		l.Title = *a.Value.Title
	}
	if a.Value.Collapsed != nil {
		l.Collapsed = *a.Value.Collapsed
	}
	f.Touch(&l.Record)
	s.Lists[a.ID] = l
	return nil
}

func addCard(s State, a AddCard, f Factory) {
	c := Card{
		Record: f.CreateRecord(),
		Parent: a.Init.Parent,
		Title:  a.Init.Title,
		Notes:  a.Init.Notes,
		Color:  a.Init.Color,
		URL:    a.Init.URL,
		Pinned: a.Init.Pinned,
		Order:  AppendOrder(cardOrders(s.Cards, a.Init.Parent)),
	}
	s.Cards[c.ID] = c
}

func removeCard(s State, a RemoveCard) error {
	if _, ok := s.Cards[a.ID]; !ok {
		return &NotFoundError{Kind: "card", ID: a.ID}
	}
	delete(s.Cards, a.ID)
	return nil
}

func updateCard(s State, a UpdateCard, f Factory) error {
	c, ok := s.Cards[a.ID]
	if !ok {
		return &NotFoundError{Kind: "card", ID: a.ID}
	}
	p := a.Value
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.URL != nil {
		c.URL = *p.URL
	}
	if p.Pinned != nil {
		c.Pinned = *p.Pinned
	}
	f.Touch(&c.Record)
	s.Cards[a.ID] = c
	return nil
}

// moveCard reparents the card and, when a reference sibling is known, gives
// it a key next to that sibling. Only the moved card changes unless the gap
// around the sibling is exhausted, in which case the target group is
// rebalanced first. A sibling outside the target parent is ignored like an
// unknown one, so keys are only ever computed within the card's new group.
func moveCard(s State, a MoveCard, f Factory) error {
	card, ok := s.Cards[a.ID]
	if !ok {
		return &NotFoundError{Kind: "card", ID: a.ID}
	}
	card.Parent = a.Opts.Parent
	f.Touch(&card.Record)
	s.Cards[card.ID] = card

	sibling, hasSibling := s.Cards[a.Opts.Sibling]
	if hasSibling && sibling.Parent != card.Parent {
		hasSibling = false
	}
	switch {
	case a.Opts.Sibling != "" && hasSibling:
		key, ok := keyNextTo(s.Cards, sibling, a.Opts.Direction)
		if !ok {
			rebalanceCards(s.Cards, sibling.Parent, f)
			key, _ = keyNextTo(s.Cards, s.Cards[sibling.ID], a.Opts.Direction)
		}
		card = s.Cards[card.ID]
		card.Order = key
		s.Cards[card.ID] = card
	case a.Opts.Append:
		delete(s.Cards, card.ID)
		card.Order = AppendOrder(cardOrders(s.Cards, card.Parent))
		s.Cards[card.ID] = card
	}
	return nil
}

// keyNextTo computes the key just before or after sibling. ok is false when
// the computed key does not fall strictly between its neighbours.
func keyNextTo(cards map[string]Card, sibling Card, dir Direction) (float64, bool) {
	prev, next, _ := FindSiblings(cards, sibling)
	order := sibling.Order

	if dir == Before {
		key := InsertBetween(prev, &order)
		return key, Between(prev, &order, key)
	}
	key := InsertBetween(&order, next)
	return key, Between(&order, next, key)
}
