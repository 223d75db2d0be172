package game

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompetitivenessAndCallPrice(t *testing.T) {
	e := newTestEngine(t)
	c := &Company{Chips: ChipSet{Research: 3}}
	if got := e.CalculateCompetitiveness(c, true); got != 8 {
		t.Fatalf("got=%d want=8", got)
	}
	if got := e.CalculateCompetitiveness(c, false); got != 6 {
		t.Fatalf("got=%d want=6", got)
	}
	if got := CalculateCallPrice(30, 8); got != 22 {
		t.Fatalf("got=%d want=22", got)
	}
}

func TestCallPriceFallsWithResearch(t *testing.T) {
	e := newTestEngine(t)
	prev := int64(1 << 62)
	for research := 0; research <= 5; research++ {
		a := newCompany("A")
		a.Chips.Research = research
		state := newActionState(newCompany("P"), a)
		bid := e.CreateBid(state, 1, 30, 1)
		if bid.CallPrice >= prev {
			t.Fatalf("research=%d call=%d not below %d", research, bid.CallPrice, prev)
		}
		if bid.DisplayPrice != 30 {
			t.Fatalf("display price changed: %d", bid.DisplayPrice)
		}
		prev = bid.CallPrice
	}
}

func TestSortBidsTieBreakOnResearch(t *testing.T) {
	a := newCompany("A")
	a.Chips.Research = 1
	b := newCompany("B")
	b.Chips.Research = 2
	parent := newCompany("Parent")
	state := newActionState(parent, a, b)

	bids := []Bid{{Company: 1, CallPrice: 20}, {Company: 2, CallPrice: 20}}
	reversed := []Bid{bids[1], bids[0]}
	for _, in := range [][]Bid{bids, reversed} {
		if w := DetermineWinner(state, in); w == nil || w.Company != 2 {
			t.Fatalf("winner=%+v want company 2", w)
		}
	}
}

func TestSortBidsTieBreakOnParent(t *testing.T) {
	state := newActionState(newCompany("A"), newCompany("B"), newCompany("C"))
	state.CurrentPlayerIndex = 2

	bids := []Bid{{Company: 0, CallPrice: 20}, {Company: 2, CallPrice: 20}, {Company: 1, CallPrice: 20}}
	if w := DetermineWinner(state, bids); w == nil || w.Company != 2 {
		t.Fatalf("winner=%+v want parent 2", w)
	}
	sorted := SortBidsWithParent(state, bids, 1)
	if sorted[0].Company != 1 {
		t.Fatalf("explicit parent: got=%d want=1", sorted[0].Company)
	}
}

func TestSortBidsIsIdempotent(t *testing.T) {
	companies := []*Company{newCompany("A"), newCompany("B"), newCompany("C"), newCompany("D")}
	companies[1].Chips.Research = 2
	companies[3].Chips.Research = 2
	state := newActionState(companies...)
	state.CurrentPlayerIndex = 3

	bids := []Bid{
		{Company: 0, CallPrice: 25},
		{Company: 1, CallPrice: 18},
		{Company: 2, CallPrice: 18},
		{Company: 3, CallPrice: 18},
	}
	once := SortBids(state, bids)
	twice := SortBids(state, once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("sort not idempotent (-once +twice):\n%s", diff)
	}
	order := []int{}
	for _, b := range once {
		order = append(order, b.Company)
	}
	if diff := cmp.Diff([]int{3, 1, 2, 0}, order); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if bids[0].Company != 0 {
		t.Fatalf("input slice was reordered")
	}
}

func TestDetermineWinnerEmpty(t *testing.T) {
	if w := DetermineWinner(newActionState(), nil); w != nil {
		t.Fatalf("expected no winner, got %+v", w)
	}
}

func TestBidDisplayInfo(t *testing.T) {
	c := newCompany("Acme")
	c.Chips.Research = 1
	got := BidDisplayInfo(Bid{Company: 0, DisplayPrice: 30, CallPrice: 26, Quantity: 2, IsParent: true}, c, true)
	if got.Label != "Acme bids 30 (call 26, x2) [parent] WIN" {
		t.Fatalf("label=%q", got.Label)
	}
	if got.ResearchChips != 1 || !got.IsWinner {
		t.Fatalf("unexpected display %+v", got)
	}
}
