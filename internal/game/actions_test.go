package game

import (
	"errors"
	"testing"
)

func hasAction(actions []Action, kind ActionKind) bool {
	for _, a := range actions {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func TestProductionCapacityNeedsWorkers(t *testing.T) {
	e := newTestEngine(t)
	c := newCompany("Acme")
	c.Machines = []Machine{{Type: MachineLarge}, {Type: MachineSmall, Attachments: 1}}

	if got := e.ProductionCapacity(c); got != 4 {
		t.Fatalf("one worker: got=%d want=4", got)
	}
	c.Personnel.Workers = 2
	if got := e.ProductionCapacity(c); got != 6 {
		t.Fatalf("two workers: got=%d want=6", got)
	}
}

func TestProductionFlow(t *testing.T) {
	e := newTestEngine(t)
	c := newCompany("Acme")
	state := newActionState(c)

	steps := []ActionRequest{
		{Kind: ActionBuyMaterials, Quantity: 3, UnitPrice: 12},
		{Kind: ActionInputProduction},
		{Kind: ActionCompleteProduction},
	}
	for _, req := range steps {
		if _, err := e.ApplyAction(state, 0, req); err != nil {
			t.Fatalf("%s: %v", req.Kind, err)
		}
	}
	if c.Inventory != (Inventory{Materials: 2, Products: 1}) {
		t.Fatalf("inventory=%+v", c.Inventory)
	}
	if c.MaterialCostTotal != 36 || c.ProductionCostTotal != 2 {
		t.Fatalf("material=%d production=%d", c.MaterialCostTotal, c.ProductionCostTotal)
	}
	if c.Cash != 300-36-2 {
		t.Fatalf("cash got=%d want=%d", c.Cash, 300-36-2)
	}
}

func TestApplyActionErrors(t *testing.T) {
	e := newTestEngine(t)
	c := newCompany("Acme")
	c.Cash = 50
	state := newActionState(c)

	tests := []struct {
		name string
		req  ActionRequest
		want error
	}{
		{name: "large machine unaffordable", req: ActionRequest{Kind: ActionBuyMachine, Machine: MachineLarge}, want: ErrInsufficientFunds},
		{name: "nothing to produce", req: ActionRequest{Kind: ActionInputProduction}, want: ErrActionNotAvailable},
		{name: "reserve in first period", req: ActionRequest{Kind: ActionReserveChip, Chip: ChipResearch}, want: ErrActionNotAvailable},
		{name: "unknown chip", req: ActionRequest{Kind: ActionBuyChip, Chip: "gold"}, want: ErrActionNotAvailable},
		{name: "sell outside auction", req: ActionRequest{Kind: ActionSell}, want: ErrActionNotAvailable},
		{name: "loan without amount", req: ActionRequest{Kind: ActionTakeLoan}, want: ErrActionNotAvailable},
	}
	for _, tc := range tests {
		if _, err := e.ApplyAction(state, 0, tc.req); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got=%v want=%v", tc.name, err, tc.want)
		}
	}
	if c.Cash != 50 {
		t.Fatalf("failed actions changed cash: %d", c.Cash)
	}

	if _, err := e.ApplyAction(state, 5, ActionRequest{Kind: ActionPass}); !errors.Is(err, ErrCompanyNotFound) {
		t.Fatalf("got=%v want=%v", err, ErrCompanyNotFound)
	}
	state.Phase = PhasePeriodStart
	if _, err := e.ApplyAction(state, 0, ActionRequest{Kind: ActionPass}); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("got=%v want=%v", err, ErrWrongPhase)
	}
}

func TestChipPurchasePricing(t *testing.T) {
	e := newTestEngine(t)
	c := newCompany("Acme")
	state := newActionState(c)

	res, err := e.ApplyAction(state, 0, ActionRequest{Kind: ActionBuyChip, Chip: ChipResearch, Quantity: 2})
	if err != nil || res.Cost != 40 {
		t.Fatalf("period 2: cost=%d err=%v", res.Cost, err)
	}

	state.CurrentPeriod = 3
	res, err = e.ApplyAction(state, 0, ActionRequest{Kind: ActionBuyChip, Chip: ChipAdvertising})
	if err != nil || res.Cost != 40 {
		t.Fatalf("express: cost=%d err=%v", res.Cost, err)
	}

	res, err = e.ApplyAction(state, 0, ActionRequest{Kind: ActionReserveChip, Chip: ChipEducation, Quantity: 5})
	if err != nil || res.Quantity != 3 || res.Cost != 60 {
		t.Fatalf("reserve: qty=%d cost=%d err=%v", res.Quantity, res.Cost, err)
	}
	if _, err := e.ApplyAction(state, 0, ActionRequest{Kind: ActionReserveChip, Chip: ChipEducation}); !errors.Is(err, ErrActionNotAvailable) {
		t.Fatalf("reserve past cap: got=%v", err)
	}
}

func TestHireTracksMaxPersonnel(t *testing.T) {
	e := newTestEngine(t)
	c := newCompany("Acme")
	c.MaxPersonnel = 2
	state := newActionState(c)

	if _, err := e.ApplyAction(state, 0, ActionRequest{Kind: ActionHireWorker, Quantity: 2}); err != nil {
		t.Fatalf("hire: %v", err)
	}
	ApplyRiskCardEffect(riskCard(WorkerRetires{Count: 1}), c, state)
	if c.MaxPersonnel != 4 {
		t.Fatalf("max personnel got=%d want=4", c.MaxPersonnel)
	}
}

func TestAvailableDecisionActions(t *testing.T) {
	e := newTestEngine(t)
	c := newCompany("Acme")
	c.Inventory = Inventory{Materials: 2, Products: 1}
	state := newActionState(c)

	got := e.AvailableDecisionActions(c, state)
	for _, kind := range []ActionKind{ActionBuyMaterials, ActionInputProduction, ActionSell, ActionBuyAttachment, ActionPass} {
		if !hasAction(got, kind) {
			t.Fatalf("missing %s in %+v", kind, got)
		}
	}
	if hasAction(got, ActionReserveChip) || hasAction(got, ActionCompleteProduction) {
		t.Fatalf("unexpected actions %+v", got)
	}

	c.Flags.NoProduction = true
	c.Flags.NoSales = true
	got = e.AvailableDecisionActions(c, state)
	if hasAction(got, ActionInputProduction) || hasAction(got, ActionSell) {
		t.Fatalf("stopped company still offered production or sales: %+v", got)
	}
}

func TestBuyBenefit(t *testing.T) {
	e := newTestEngine(t)
	c := newCompany("Acme")
	state := newActionState(c)

	req := ActionRequest{
		Kind:     ActionBuyBenefit,
		Quantity: 9,
		CardID:   "D01",
		Benefit:  &Benefit{Kind: BenefitMaterials, MaxQty: 5, PricePerUnit: 10},
	}
	res, err := e.ApplyAction(state, 0, req)
	if err != nil {
		t.Fatalf("buy benefit: %v", err)
	}
	if res.Quantity != 5 || c.Inventory.Materials != 5 || c.MaterialCostTotal != 50 {
		t.Fatalf("qty=%d materials=%d cost=%d", res.Quantity, c.Inventory.Materials, c.MaterialCostTotal)
	}
}
