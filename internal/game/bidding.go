package game

import (
	"cmp"
	"fmt"
	"slices"
)

type BidDisplay struct {
	Company         string `json:"company"`
	DisplayPrice    int64  `json:"display_price"`
	CallPrice       int64  `json:"call_price"`
	Quantity        int    `json:"quantity"`
	Competitiveness int    `json:"competitiveness"`
	ResearchChips   int    `json:"research_chips"`
	IsParent        bool   `json:"is_parent"`
	IsWinner        bool   `json:"is_winner"`
	Label           string `json:"label"`
}

func (e *Engine) CalculateCompetitiveness(c *Company, isParent bool) int {
	score := 0
	if c != nil {
		score = c.Chips.Research * e.rules.Bidding.ResearchBonus
	}
	if isParent {
		score += e.rules.Bidding.ParentBonus
	}
	return score
}

// CalculateCallPrice returns the ranking key of a bid. Lower wins.
func CalculateCallPrice(displayPrice int64, competitiveness int) int64 {
	return displayPrice - int64(competitiveness)
}

func (e *Engine) CreateBid(state *GameState, companyIndex int, displayPrice int64, quantity int) Bid {
	isParent := state != nil && companyIndex == state.CurrentPlayerIndex
	competitiveness := e.CalculateCompetitiveness(state.company(companyIndex), isParent)
	return Bid{
		Company:         companyIndex,
		CallPrice:       CalculateCallPrice(displayPrice, competitiveness),
		DisplayPrice:    displayPrice,
		Quantity:        quantity,
		Competitiveness: competitiveness,
		IsParent:        isParent,
	}
}

// SortBids orders bids with the current player as parent.
func SortBids(state *GameState, bids []Bid) []Bid {
	parent := -1
	if state != nil {
		parent = state.CurrentPlayerIndex
	}
	return SortBidsWithParent(state, bids, parent)
}

// SortBidsWithParent returns a sorted copy of bids: lowest call price first,
// then more research chips, then the parent company. Remaining ties keep their
// input order.
func SortBidsWithParent(state *GameState, bids []Bid, parent int) []Bid {
	out := slices.Clone(bids)
	slices.SortStableFunc(out, func(a, b Bid) int {
		if c := cmp.Compare(a.CallPrice, b.CallPrice); c != 0 {
			return c
		}
		if c := cmp.Compare(researchChips(state, b.Company), researchChips(state, a.Company)); c != 0 {
			return c
		}
		aParent, bParent := a.Company == parent, b.Company == parent
		switch {
		case aParent && !bParent:
			return -1
		case bParent && !aParent:
			return 1
		}
		return 0
	})
	return out
}

// DetermineWinner returns nil when nobody bid, which means no sale took place.
func DetermineWinner(state *GameState, bids []Bid) *Bid {
	if len(bids) == 0 {
		return nil
	}
	winner := SortBids(state, bids)[0]
	return &winner
}

func BidDisplayInfo(bid Bid, c *Company, isWinner bool) BidDisplay {
	out := BidDisplay{
		DisplayPrice:    bid.DisplayPrice,
		CallPrice:       bid.CallPrice,
		Quantity:        bid.Quantity,
		Competitiveness: bid.Competitiveness,
		IsParent:        bid.IsParent,
		IsWinner:        isWinner,
	}
	if c != nil {
		out.Company = c.Name
		out.ResearchChips = c.Chips.Research
	}
	out.Label = fmt.Sprintf("%s bids %d (call %d, x%d)", out.Company, bid.DisplayPrice, bid.CallPrice, bid.Quantity)
	if bid.IsParent {
		out.Label += " [parent]"
	}
	if isWinner {
		out.Label += " WIN"
	}
	return out
}

func researchChips(state *GameState, idx int) int {
	if c := state.company(idx); c != nil {
		return c.Chips.Research
	}
	return 0
}
