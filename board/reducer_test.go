package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddListToEmptyBoard(t *testing.T) {
	s := mustReduce(NewState(), AddList{Init: ListInit{Title: "Todo"}}, testFactory())

	require.Len(t, s.Lists, 1)
	for _, l := range s.Lists {
		assert.Equal(t, "Todo", l.Title)
		assert.Equal(t, 1e8, l.Order)
		assert.Len(t, l.ID, IDWidth)
		assert.Equal(t, l.CreatedAt, l.UpdatedAt)
	}
}

func TestAddListAppends(t *testing.T) {
	f := testFactory()
	s := NewState()
	for _, title := range []string{"Todo", "Doing", "Done"} {
		s = mustReduce(s, AddList{Init: ListInit{Title: title}}, f)
	}

	lists := SortedLists(s)
	require.Len(t, lists, 3)
	assert.Equal(t, "Todo", lists[0].Title)
	assert.Equal(t, "Done", lists[2].Title)
	assert.Equal(t, 3e8, lists[2].Order)
}

func TestAddCardAppendsWithinParent(t *testing.T) {
	s := stateOf(
		[]List{list("A", 1e8, 1), list("B", 2e8, 2)},
		[]Card{card("a1", "A", 1e8, 1), card("a2", "A", 2e8, 2), card("b1", "B", 9e8, 3)},
	)

	next := mustReduce(s, AddCard{Init: CardInit{Parent: "A", Title: "new", Color: ColorGreen, Pinned: true}}, testFactory())

	inA := CardsInList(next, "A")
	require.Len(t, inA, 3)
	added := inA[2]
	assert.Equal(t, "new", added.Title)
	assert.Equal(t, 3e8, added.Order)
	assert.Equal(t, ColorGreen, added.Color)
	assert.True(t, added.Pinned)
}

func TestAddCardToEmptyList(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{card("b1", "B", 9e8, 1)})

	next := mustReduce(s, AddCard{Init: CardInit{Parent: "A", Title: "first"}}, testFactory())

	inA := CardsInList(next, "A")
	require.Len(t, inA, 1)
	assert.Equal(t, 1e8, inA[0].Order)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{card("a1", "A", 1e8, 1)})
	before := s.Clone()

	actions := []Action{
		AddList{Init: ListInit{Title: "B"}},
		RemoveList{ID: "A"},
		UpdateList{ID: "A", Value: ListPatch{Title: ptr("renamed")}},
		AddCard{Init: CardInit{Parent: "A", Title: "x"}},
		RemoveCard{ID: "a1"},
		UpdateCard{ID: "a1", Value: CardPatch{Notes: ptr("n")}},
		MoveCard{ID: "a1", Opts: MoveOpts{Parent: "B"}},
		Rebalance{Parent: "A"},
	}
	for _, a := range actions {
		next, err := Reduce(s, a, testFactory())
		require.NoError(t, err, a.Type())
		assert.Equal(t, before, s, a.Type())

		next.Lists["injected"] = list("injected", 1, 1)
		next.Cards["injected"] = card("injected", "A", 1, 1)
		assert.Equal(t, before, s, "result of %s aliases the input", a.Type())
	}
}

func TestUnknownIDLeavesStateUnchanged(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{card("a1", "A", 1e8, 1)})

	actions := []Action{
		UpdateCard{ID: "missing", Value: CardPatch{Title: ptr("x")}},
		UpdateList{ID: "missing", Value: ListPatch{Title: ptr("x")}},
		RemoveCard{ID: "missing"},
		RemoveList{ID: "missing"},
		MoveCard{ID: "missing", Opts: MoveOpts{Parent: "A"}},
	}
	for _, a := range actions {
		next, err := Reduce(s, a, testFactory())
		require.ErrorIs(t, err, ErrNotFound, a.Type())
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "missing", nf.ID)
		assert.Equal(t, s, next, a.Type())
	}
}

func TestInvalidPayloadIsRejected(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{card("a1", "A", 1e8, 1)})

	actions := []Action{
		AddList{Init: ListInit{Title: "  "}},
		AddCard{Init: CardInit{Parent: "A"}},
		AddCard{Init: CardInit{Title: "x"}},
		AddCard{Init: CardInit{Parent: "A", Title: "x", Color: "pink"}},
		UpdateCard{ID: "a1", Value: CardPatch{Color: ptr(Color("pink"))}},
		UpdateList{ID: "A", Value: ListPatch{Title: ptr("")}},
		MoveCard{ID: "a1", Opts: MoveOpts{Parent: "A", Direction: "sideways"}},
		nil,
	}
	for _, a := range actions {
		next, err := Reduce(s, a, testFactory())
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, s, next)
	}
}

func TestRemoveListCascades(t *testing.T) {
	s := stateOf(
		[]List{list("A", 1e8, 1), list("B", 2e8, 2)},
		[]Card{
			card("a1", "A", 1e8, 1),
			card("a2", "A", 2e8, 2),
			card("a3", "A", 3e8, 3),
			card("b1", "B", 1e8, 4),
			card("orphan", "gone", 1e8, 5),
		},
	)

	next := mustReduce(s, RemoveList{ID: "A"}, testFactory())

	assert.NotContains(t, next.Lists, "A")
	for _, id := range []string{"a1", "a2", "a3"} {
		assert.NotContains(t, next.Cards, id)
	}
	for _, c := range next.Cards {
		assert.NotEqual(t, "A", c.Parent)
	}
	assert.Equal(t, s.Cards["b1"], next.Cards["b1"])
	assert.Equal(t, s.Cards["orphan"], next.Cards["orphan"])
	assert.Len(t, next.Cards, 2)
}

func TestRemoveCardDoesNotCascade(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{card("a1", "A", 1e8, 1), card("a2", "A", 2e8, 2)})

	next := mustReduce(s, RemoveCard{ID: "a1"}, testFactory())

	assert.Contains(t, next.Lists, "A")
	assert.Equal(t, []string{"a2"}, cardIDs(SortedCards(next)))
}

func TestUpdateListPatchesFields(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, nil)

	next := mustReduce(s, UpdateList{ID: "A", Value: ListPatch{Collapsed: ptr(true)}}, testFactory())

	l := next.Lists["A"]
	assert.True(t, l.Collapsed)
	assert.Equal(t, "A", l.Title)
	assert.Equal(t, 1e8, l.Order)
	assert.Equal(t, s.Lists["A"].CreatedAt, l.CreatedAt)
	assert.True(t, l.UpdatedAt.After(s.Lists["A"].UpdatedAt))
}

func TestUpdateCardPatchesAndClears(t *testing.T) {
	c := card("a1", "A", 1e8, 1)
	c.Notes = "old notes"
	c.URL = "https://example.com"
	c.Color = ColorRed
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{c})

	next := mustReduce(s, UpdateCard{ID: "a1", Value: CardPatch{
		Title: ptr("renamed"),
		URL:   ptr(""),
		Color: ptr(Color("")),
	}}, testFactory())

	got := next.Cards["a1"]
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "old notes", got.Notes)
	assert.Empty(t, got.URL)
	assert.Empty(t, got.Color)
	assert.Equal(t, "A", got.Parent)
	assert.Equal(t, 1e8, got.Order)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, c.CreatedAt, got.CreatedAt)
	assert.True(t, got.UpdatedAt.After(c.UpdatedAt))
}

func TestMoveCardBeforeFirstSibling(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{card("card1", "A", 1e8, 1), card("card2", "A", 2e8, 2)})

	next := mustReduce(s, MoveCard{ID: "card2", Opts: MoveOpts{Parent: "A", Sibling: "card1", Direction: Before}}, testFactory())

	assert.Equal(t, 5e7, next.Cards["card2"].Order)
	assert.Equal(t, 1e8, next.Cards["card1"].Order)
	assert.Equal(t, []string{"card2", "card1"}, cardIDs(CardsInList(next, "A")))
}

func TestMoveCardAfterSibling(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{
		card("c1", "A", 1e8, 1),
		card("c2", "A", 2e8, 2),
		card("c3", "A", 3e8, 3),
	})

	next := mustReduce(s, MoveCard{ID: "c3", Opts: MoveOpts{Parent: "A", Sibling: "c1", Direction: After}}, testFactory())

	assert.Equal(t, 1.5e8, next.Cards["c3"].Order)
	assert.Equal(t, []string{"c1", "c3", "c2"}, cardIDs(CardsInList(next, "A")))
	assert.Equal(t, s.Cards["c1"], next.Cards["c1"])
	assert.Equal(t, s.Cards["c2"], next.Cards["c2"])
}

func TestMoveCardAfterLastSibling(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{card("c1", "A", 1e8, 1), card("c2", "A", 2e8, 2)})

	next := mustReduce(s, MoveCard{ID: "c1", Opts: MoveOpts{Parent: "A", Sibling: "c2", Direction: After}}, testFactory())

	assert.Equal(t, 3e8, next.Cards["c1"].Order)
	assert.Equal(t, []string{"c2", "c1"}, cardIDs(CardsInList(next, "A")))
}

func TestMoveCardAcrossLists(t *testing.T) {
	s := stateOf(
		[]List{list("A", 1e8, 1), list("B", 2e8, 2)},
		[]Card{card("a1", "A", 1e8, 1), card("b1", "B", 1e8, 2), card("b2", "B", 2e8, 3)},
	)

	next := mustReduce(s, MoveCard{ID: "a1", Opts: MoveOpts{Parent: "B", Sibling: "b2", Direction: Before}}, testFactory())

	moved := next.Cards["a1"]
	assert.Equal(t, "B", moved.Parent)
	assert.Equal(t, 1.5e8, moved.Order)
	assert.Empty(t, CardsInList(next, "A"))
	assert.Equal(t, []string{"b1", "a1", "b2"}, cardIDs(CardsInList(next, "B")))
}

func TestMoveCardWithoutSiblingKeepsOrder(t *testing.T) {
	s := stateOf(
		[]List{list("A", 1e8, 1), list("B", 2e8, 2)},
		[]Card{card("a1", "A", 7e8, 1)},
	)

	next := mustReduce(s, MoveCard{ID: "a1", Opts: MoveOpts{Parent: "B", Direction: After}}, testFactory())
	assert.Equal(t, "B", next.Cards["a1"].Parent)
	assert.Equal(t, 7e8, next.Cards["a1"].Order)

	next = mustReduce(s, MoveCard{ID: "a1", Opts: MoveOpts{Parent: "B", Sibling: "ghost", Direction: Before}}, testFactory())
	assert.Equal(t, "B", next.Cards["a1"].Parent)
	assert.Equal(t, 7e8, next.Cards["a1"].Order)
}

func TestMoveCardIgnoresSiblingInOtherList(t *testing.T) {
	s := stateOf(
		[]List{list("A", 1e8, 1), list("B", 2e8, 2)},
		[]Card{
			card("a1", "A", 1e8, 1),
			card("a2", "A", 1e8+1, 2),
			card("b1", "B", 4e8, 3),
		},
	)

	next := mustReduce(s, MoveCard{ID: "b1", Opts: MoveOpts{Parent: "B", Sibling: "a1", Direction: After}}, testFactory())

	assert.Equal(t, "B", next.Cards["b1"].Parent)
	assert.Equal(t, 4e8, next.Cards["b1"].Order)
	// The exhausted gap in A is left alone.
	assert.Equal(t, 1e8, next.Cards["a1"].Order)
	assert.Equal(t, 1e8+1, next.Cards["a2"].Order)

	next = mustReduce(s, MoveCard{ID: "b1", Opts: MoveOpts{Parent: "B", Sibling: "a1", Direction: After, Append: true}}, testFactory())
	assert.Equal(t, 1e8, next.Cards["b1"].Order)
}

func TestMoveCardAppend(t *testing.T) {
	s := stateOf(
		[]List{list("A", 1e8, 1), list("B", 2e8, 2)},
		[]Card{card("a1", "A", 9e8, 1), card("b1", "B", 1e8, 2), card("b2", "B", 2e8, 3)},
	)

	next := mustReduce(s, MoveCard{ID: "a1", Opts: MoveOpts{Parent: "B", Append: true}}, testFactory())

	assert.Equal(t, 3e8, next.Cards["a1"].Order)
	assert.Equal(t, []string{"b1", "b2", "a1"}, cardIDs(CardsInList(next, "B")))
}

func TestMoveCardRebalancesExhaustedGap(t *testing.T) {
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{
		card("c1", "A", 1e8, 1),
		card("c2", "A", 1e8+1, 2),
		card("c3", "A", 5e8, 3),
	})

	next := mustReduce(s, MoveCard{ID: "c3", Opts: MoveOpts{Parent: "A", Sibling: "c1", Direction: After}}, testFactory())

	assert.Equal(t, []string{"c1", "c3", "c2"}, cardIDs(CardsInList(next, "A")))
	assert.Equal(t, 1e8, next.Cards["c1"].Order)
	assert.Equal(t, 1.5e8, next.Cards["c3"].Order)
	assert.Equal(t, 2e8, next.Cards["c2"].Order)
}

func TestRepeatedInsertionsSurvivePrecisionExhaustion(t *testing.T) {
	f := testFactory()
	s := stateOf([]List{list("A", 1e8, 1)}, []Card{card("first", "A", 1e8, 1), card("last", "A", 2e8, 2)})

	// Every new card goes straight after "first", halving the same gap each
	// time until it runs out.
	want := []string{"last"}
	for i := 0; i < 60; i++ {
		s = mustReduce(s, AddCard{Init: CardInit{Parent: "A", Title: "n"}}, f)
		newest := CardsInList(s, "A")
		id := newest[len(newest)-1].ID
		s = mustReduce(s, MoveCard{ID: id, Opts: MoveOpts{Parent: "A", Sibling: "first", Direction: After}}, f)
		want = append([]string{id}, want...)
	}
	want = append([]string{"first"}, want...)

	got := CardsInList(s, "A")
	assert.Equal(t, want, cardIDs(got))
	for i := 1; i < len(got); i++ {
		require.Less(t, got[i-1].Order, got[i].Order)
	}
}

func TestRebalanceLists(t *testing.T) {
	s := stateOf([]List{list("A", 3, 1), list("B", 3, 2), list("C", 1, 3)}, nil)

	next := mustReduce(s, Rebalance{}, testFactory())

	lists := SortedLists(next)
	assert.Equal(t, []string{"C", "A", "B"}, listIDs(lists))
	assert.Equal(t, []float64{1e8, 2e8, 3e8}, []float64{lists[0].Order, lists[1].Order, lists[2].Order})
}
