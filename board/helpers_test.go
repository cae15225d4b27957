package board

import (
	"fmt"
	"time"
)

var testEpoch = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

// testFactory hands out sequential ids and a clock that starts an hour after
// testEpoch and advances one millisecond per reading.
func testFactory() Factory {
	ids, ticks := 0, 0
	return Factory{
		NewID: func() string {
			ids++
			return fmt.Sprintf("%016d", ids)
		},
		Now: func() time.Time {
			ticks++
			return testEpoch.Add(time.Hour + time.Duration(ticks)*time.Millisecond)
		},
	}
}

func mustReduce(s State, a Action, f Factory) State {
	next, err := Reduce(s, a, f)
	if err != nil {
		panic(err)
	}
	return next
}

func ptr[T any](v T) *T { return &v }

func cardIDs(cards []Card) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.ID
	}
	return ids
}

func listIDs(lists []List) []string {
	ids := make([]string, len(lists))
	for i, l := range lists {
		ids[i] = l.ID
	}
	return ids
}

// card builds a card directly, bypassing the reducer.
func card(id, parent string, order float64, created int) Card {
	at := testEpoch.Add(time.Duration(created) * time.Second)
	return Card{
		Record: Record{ID: id, CreatedAt: at, UpdatedAt: at},
		Parent: parent,
		Title:  id,
		Order:  order,
	}
}

func list(id string, order float64, created int) List {
	at := testEpoch.Add(time.Duration(created) * time.Second)
	return List{
		Record: Record{ID: id, CreatedAt: at, UpdatedAt: at},
		Title:  id,
		Order:  order,
	}
}

func stateOf(lists []List, cards []Card) State {
	s := NewState()
	for _, l := range lists {
		s.Lists[l.ID] = l
	}
	for _, c := range cards {
		s.Cards[c.ID] = c
	}
	return s
}
