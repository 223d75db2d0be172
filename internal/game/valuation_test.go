package game

import "testing"

func TestValuation(t *testing.T) {
	e := newTestEngine(t)
	got := e.Valuation(Inventory{Materials: 2, WIP: 3, Products: 4})
	if want := int64(2*13 + 3*14 + 4*15); got != want {
		t.Fatalf("got=%d want=%d", got, want)
	}
}

func TestCalculateVQ(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name string
		c    Company
		want int64
	}{
		{
			name: "inventory drawdown only",
			c: Company{
				PeriodStartInventory: Inventory{Materials: 10},
			},
			want: 130,
		},
		{
			name: "purchases and production",
			c: Company{
				MaterialCostTotal:    60,
				ProductionCostTotal:  4,
				PeriodStartInventory: Inventory{},
				Inventory:            Inventory{Materials: 2, Products: 2},
			},
			want: 60 + 4 - (2*13 + 2*15),
		},
	}
	for _, tc := range tests {
		if got := e.CalculateVQ(&tc.c); got != tc.want {
			t.Fatalf("%s: got=%d want=%d", tc.name, got, tc.want)
		}
	}
}

func TestCalculateVQCountsCardLossOnce(t *testing.T) {
	e := newTestEngine(t)
	c := newCompany("Acme")
	c.Inventory = Inventory{Materials: 4}
	c.PeriodStartInventory = c.Inventory
	state := newActionState(c)
	state.CurrentPeriod = 3

	fire, _ := RiskCardByID("R03")
	ApplyRiskCardEffect(fire, c, state)

	if got, want := e.CalculateVQ(c), int64(4*13); got != want {
		t.Fatalf("got=%d want=%d", got, want)
	}
}
