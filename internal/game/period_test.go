package game

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewGameValidatesCompanies(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.NewGame([]string{"Solo"}); !errors.Is(err, ErrInvalidCompanyCount) {
		t.Fatalf("got=%v want=%v", err, ErrInvalidCompanyCount)
	}
	if _, err := e.NewGame([]string{"A", ""}); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	state, err := e.NewGame([]string{"A", "B"})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if state.CurrentPeriod != FirstPeriod || state.Phase != PhasePeriodStart || len(state.Deck) != 75 {
		t.Fatalf("state period=%d phase=%s deck=%d", state.CurrentPeriod, state.Phase, len(state.Deck))
	}
}

func TestStartPeriodPaysPendingAndInterest(t *testing.T) {
	e := newTestEngine(t)
	state, _ := e.NewGame([]string{"A", "B", "C"})
	a := state.Companies[0]
	a.PendingTax = 5
	a.PendingDividend = 2
	a.Loans.Long = 100
	a.Flags = Flags{NoSales: true, SkipTurns: 1, SpecialLoss: 4}
	state.CurrentPeriod = 3

	reports, err := e.StartPeriod(state)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if reports[0].Payment != 17 || a.Cash != 283 {
		t.Fatalf("payment=%d cash=%d", reports[0].Payment, a.Cash)
	}
	if a.PendingTax != 0 || a.PendingDividend != 0 {
		t.Fatalf("pending not cleared")
	}
	if a.Flags != (Flags{SkipTurns: 1}) {
		t.Fatalf("flags=%+v", a.Flags)
	}
	if state.CurrentPlayerIndex != 1 || state.Phase != PhaseAction {
		t.Fatalf("parent=%d phase=%s", state.CurrentPlayerIndex, state.Phase)
	}
	if _, err := e.StartPeriod(state); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("restart: got=%v want=%v", err, ErrWrongPhase)
	}
}

func TestClosePeriodSettlesCompany(t *testing.T) {
	e := newTestEngine(t)
	state, _ := e.NewGame([]string{"A", "B"})
	if _, err := e.StartPeriod(state); err != nil {
		t.Fatalf("start: %v", err)
	}

	reports, err := e.ClosePeriod(state)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	r := reports[0]
	if r.Profit.F != 98 || r.Profit.G != -98 {
		t.Fatalf("f=%d g=%d", r.Profit.F, r.Profit.G)
	}
	if r.EndPayment != 88 || r.Cash != 212 {
		t.Fatalf("end payment=%d cash=%d", r.EndPayment, r.Cash)
	}
	a := state.Companies[0]
	if a.Equity != 202 || a.PendingTax != 0 {
		t.Fatalf("equity=%d pending tax=%d", a.Equity, a.PendingTax)
	}
	if state.CurrentPeriod != 3 || state.Phase != PhasePeriodStart {
		t.Fatalf("period=%d phase=%s", state.CurrentPeriod, state.Phase)
	}
}

func TestClosePeriodBreakthroughTaxIsPaidNextPeriod(t *testing.T) {
	e := newTestEngine(t)
	state, _ := e.NewGame([]string{"A", "B"})
	if _, err := e.StartPeriod(state); err != nil {
		t.Fatalf("start: %v", err)
	}
	a := state.Companies[0]
	a.SalesTotal = 198

	reports, err := e.ClosePeriod(state)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if reports[0].Tax != (TaxResult{Tax: 50, Dividend: 20, NewEquity: 350, ExceededThreshold: true}) {
		t.Fatalf("tax=%+v", reports[0].Tax)
	}
	if !a.HasExceededEquityThreshold || a.PendingTax != 50 || a.PendingDividend != 20 {
		t.Fatalf("company=%+v", a)
	}

	cash := a.Cash
	if _, err := e.StartPeriod(state); err != nil {
		t.Fatalf("start: %v", err)
	}
	if a.Cash != cash-70 {
		t.Fatalf("cash got=%d want=%d", a.Cash, cash-70)
	}
}

func TestChipCarryoverIsBounded(t *testing.T) {
	e := newTestEngine(t)
	state, _ := e.NewGame([]string{"A", "B"})
	if _, err := e.StartPeriod(state); err != nil {
		t.Fatalf("start: %v", err)
	}
	a := state.Companies[0]
	a.Chips = ChipSet{Research: 6, Education: 2, Insurance: 1}

	if _, err := e.ClosePeriod(state); err != nil {
		t.Fatalf("close: %v", err)
	}
	want := ChipSet{Research: 3, Education: 1}
	if a.CarriedOverChips != want || a.Chips != want {
		t.Fatalf("carried=%+v chips=%+v want=%+v", a.CarriedOverChips, a.Chips, want)
	}

	if _, err := e.StartPeriod(state); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := e.ApplyAction(state, 0, ActionRequest{Kind: ActionReserveChip, Chip: ChipAdvertising, Quantity: 2}); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := e.ClosePeriod(state); err != nil {
		t.Fatalf("close: %v", err)
	}
	want = ChipSet{Advertising: 2}
	if a.CarriedOverChips != want || a.NextPeriodChips != (ChipSet{}) {
		t.Fatalf("carried=%+v next=%+v want=%+v", a.CarriedOverChips, a.NextPeriodChips, want)
	}
	for _, kind := range StrategicChips {
		if a.CarriedOverChips.Get(kind) > DefaultRules().Chips.CarryoverCap {
			t.Fatalf("%s over cap", kind)
		}
	}
}

func TestTakeTurnSkipsAndRotates(t *testing.T) {
	e := newTestEngine(t)
	state, _ := e.NewGame([]string{"A", "B", "C"})
	if _, err := e.StartPeriod(state); err != nil {
		t.Fatalf("start: %v", err)
	}
	state.Companies[0].Flags.SkipTurns = 1
	// Only plain decision cards so the draw cannot change turn order.
	state.Deck = []Card{{ID: "D02", Type: CardDecision}, {ID: "D01", Type: CardDecision}}

	first, err := e.TakeTurn(state)
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if first.Company != 1 || len(first.Skipped) != 1 || first.Skipped[0] != 0 {
		t.Fatalf("first=%+v", first)
	}
	if first.Draw.Card == nil || first.Draw.Card.ID != "D01" || len(first.Actions) == 0 {
		t.Fatalf("draw=%+v actions=%d", first.Draw, len(first.Actions))
	}

	state.TurnDirection = -1
	second, err := e.TakeTurn(state)
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if second.Company != 0 {
		t.Fatalf("reversed turn got=%d want=0", second.Company)
	}
}

func TestTakeTurnWhenEveryCompanySkips(t *testing.T) {
	e := newTestEngine(t)
	state, _ := e.NewGame([]string{"A", "B"})
	if _, err := e.StartPeriod(state); err != nil {
		t.Fatalf("start: %v", err)
	}
	state.CurrentPlayerIndex = 0
	state.Companies[0].Flags.SkipTurns = 2
	state.Companies[1].Flags.SkipTurns = 2
	state.Deck = []Card{{ID: "D01", Type: CardDecision}}

	out, err := e.TakeTurn(state)
	if err != nil {
		t.Fatalf("turn: %v", err)
	}
	if diff := cmp.Diff([]int{0, 1, 0, 1}, out.Skipped); diff != "" {
		t.Fatalf("skipped (-want +got):\n%s", diff)
	}
	if out.Company != 0 {
		t.Fatalf("company got=%d want=0", out.Company)
	}
	for i, c := range state.Companies {
		if c.Flags.SkipTurns != 0 {
			t.Fatalf("company %d skip got=%d want=0", i, c.Flags.SkipTurns)
		}
	}
}

func TestGameFinishesAfterLastPeriod(t *testing.T) {
	e := newTestEngine(t)
	state, _ := e.NewGame([]string{"A", "B"})
	for p := FirstPeriod; p <= LastPeriod; p++ {
		if _, err := e.StartPeriod(state); err != nil {
			t.Fatalf("start %d: %v", p, err)
		}
		if _, err := e.ClosePeriod(state); err != nil {
			t.Fatalf("close %d: %v", p, err)
		}
	}
	if state.Phase != PhaseFinished || state.CurrentPeriod != LastPeriod {
		t.Fatalf("phase=%s period=%d", state.Phase, state.CurrentPeriod)
	}
	if _, err := e.StartPeriod(state); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("got=%v want=%v", err, ErrGameFinished)
	}
	if _, err := e.TakeTurn(state); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("got=%v want=%v", err, ErrGameFinished)
	}
}
