package db

import (
	"testing"

	"mgsim/internal/game"

	"github.com/google/go-cmp/cmp"
)

func TestCloseEntries(t *testing.T) {
	reports := []game.CloseReport{
		{Company: "Acme", Period: 3, Profit: game.ProfitReport{G: 42}},
		{Company: "Globex", Period: 3, Profit: game.ProfitReport{G: -10}},
	}
	got := closeEntries(reports)
	if len(got) != 2 {
		t.Fatalf("entries got=%d want=2", len(got))
	}
	if got[0].Kind != "period_close" || got[0].Company != "Acme" || got[0].Amount != 42 || got[0].Period != 3 {
		t.Fatalf("entry=%+v", got[0])
	}
	if got[1].Amount != -10 {
		t.Fatalf("amount got=%d want=-10", got[1].Amount)
	}
}

func TestCloseEntriesJournalEmergencyLoan(t *testing.T) {
	reports := []game.CloseReport{
		{Company: "Acme", Period: 2, Cash: 32, EmergencyLoan: 100},
		{Company: "Globex", Period: 2, Cash: 80},
	}
	got := closeEntries(reports)
	kinds := []string{}
	for _, e := range got {
		kinds = append(kinds, e.Kind+":"+e.Company)
	}
	want := []string{"period_close:Acme", "emergency_loan:Acme", "period_close:Globex"}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}
	if got[1].Amount != 100 || got[1].Period != 2 {
		t.Fatalf("loan entry=%+v", got[1])
	}
}

func TestAuctionEntries(t *testing.T) {
	if got := auctionEntries(2, game.AuctionResult{}); len(got) != 0 {
		t.Fatalf("unsold auction journaled: %+v", got)
	}

	winner := game.Bid{Company: 1, DisplayPrice: 30, Quantity: 2}
	res := game.AuctionResult{
		Market:  game.Market{Name: "north"},
		Winner:  &winner,
		Ranking: []game.Bid{winner},
		Display: []game.BidDisplay{{Company: "Globex", IsWinner: true}},
		Revenue: 60,
	}
	got := auctionEntries(4, res)
	if len(got) != 1 || got[0].Company != "Globex" || got[0].Amount != 60 || got[0].Period != 4 {
		t.Fatalf("entries=%+v", got)
	}
}
