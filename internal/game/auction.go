package game

import (
	"fmt"
)

type Market struct {
	Name     string `json:"name"`
	MaxPrice int64  `json:"max_price"`
	Demand   int    `json:"demand"`
}

type RejectedBid struct {
	Bid    Bid    `json:"bid"`
	Reason string `json:"reason"`
}

type AuctionResult struct {
	Market   Market        `json:"market"`
	Winner   *Bid          `json:"winner"`
	Ranking  []Bid         `json:"ranking"`
	Display  []BidDisplay  `json:"display"`
	Rejected []RejectedBid `json:"rejected"`
	Revenue  int64         `json:"revenue"`
}

// RunAuction resolves one sale event from the complete set of bids. Bids that
// cannot be honoured are rejected before ranking; the winner books its display
// price on the sold quantity.
func (e *Engine) RunAuction(state *GameState, market Market, bids []Bid) (AuctionResult, error) {
	out := AuctionResult{Market: market, Ranking: []Bid{}, Rejected: []RejectedBid{}}
	if state == nil {
		return out, ErrGameNotFound
	}
	if state.Phase != PhaseAction {
		return out, fmt.Errorf("auction: %w", ErrWrongPhase)
	}

	seen := map[int]bool{}
	eligible := make([]Bid, 0, len(bids))
	for _, bid := range bids {
		reason := ""
		c := state.company(bid.Company)
		switch {
		case c == nil:
			reason = "unknown company"
		case seen[bid.Company]:
			reason = "duplicate bid"
		case c.Flags.NoSales:
			reason = "sales stopped"
		case bid.DisplayPrice <= 0:
			reason = "price must be > 0"
		case market.MaxPrice > 0 && bid.DisplayPrice > market.MaxPrice:
			reason = fmt.Sprintf("above market ceiling %d", market.MaxPrice)
		}
		if reason == "" {
			qty := min(bid.Quantity, c.Inventory.Products, e.remainingSalesCapacity(c))
			if market.Demand > 0 {
				qty = min(qty, market.Demand)
			}
			if qty <= 0 {
				reason = "nothing to sell"
			}
			bid.Quantity = qty
		}
		if reason != "" {
			out.Rejected = append(out.Rejected, RejectedBid{Bid: bid, Reason: reason})
			continue
		}
		seen[bid.Company] = true
		eligible = append(eligible, bid)
	}

	out.Ranking = SortBids(state, eligible)
	if len(out.Ranking) == 0 {
		e.log.Debug("auction closed without sale", "market", market.Name, "rejected", len(out.Rejected))
		return out, nil
	}

	winner := out.Ranking[0]
	out.Winner = &winner
	for i, bid := range out.Ranking {
		out.Display = append(out.Display, BidDisplayInfo(bid, state.company(bid.Company), i == 0))
	}

	c := state.company(winner.Company)
	out.Revenue = winner.DisplayPrice * int64(winner.Quantity)
	c.Inventory.Products -= winner.Quantity
	c.UnitsSold += winner.Quantity
	c.SalesTotal += out.Revenue
	c.Cash += out.Revenue

	e.log.Info("auction settled",
		"market", market.Name,
		"winner", c.Name,
		"display_price", winner.DisplayPrice,
		"call_price", winner.CallPrice,
		"quantity", winner.Quantity,
		"bidders", len(out.Ranking),
	)
	return out, nil
}
