package game

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type AppliedEffect struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
	Amount int64  `json:"amount,omitempty"`
}

type RiskResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Effects []AppliedEffect `json:"effects"`
}

// ApplyRiskCardEffect applies every effect a risk card declares to the company
// and the shared state. Losses are capped at what the company holds and an
// insurance chip turns each lost unit into a cash payout.
func ApplyRiskCardEffect(card Card, c *Company, state *GameState) RiskResult {
	if card.Type != CardRisk {
		return RiskResult{Message: fmt.Sprintf("%s is not a risk card", card.ID)}
	}
	if c == nil || state == nil {
		return RiskResult{Message: "no target company"}
	}

	effects := slices.Clone(card.Effects)
	slices.SortStableFunc(effects, func(a, b Effect) int {
		return cmp.Compare(a.Kind(), b.Kind())
	})

	out := RiskResult{Success: true, Effects: []AppliedEffect{}}
	if len(effects) > 0 && effects[0].Kind() == EffectPeriod2Exempt && state.CurrentPeriod == FirstPeriod {
		out.Effects = append(out.Effects, AppliedEffect{Kind: EffectPeriod2Exempt.String(), Detail: "no effect in period 2"})
		out.Message = fmt.Sprintf("%s: exempt in period %d", card.Name, state.CurrentPeriod)
		return out
	}

	for _, eff := range effects {
		if applied, ok := applyEffect(eff, c, state); ok {
			out.Effects = append(out.Effects, applied)
		}
	}

	details := make([]string, 0, len(out.Effects))
	for _, a := range out.Effects {
		details = append(details, a.Detail)
	}
	out.Message = fmt.Sprintf("%s: %s", card.Name, strings.Join(details, "; "))
	return out
}

func applyEffect(eff Effect, c *Company, state *GameState) (AppliedEffect, bool) {
	out := AppliedEffect{Kind: eff.Kind().String()}
	switch v := eff.(type) {
	case Period2Exempt:
		return out, false
	case AdditionalFixedCost:
		c.Flags.AdditionalFixedCost += v.Amount
		out.Amount = v.Amount
		out.Detail = fmt.Sprintf("additional fixed cost %d", v.Amount)
	case CashLoss:
		c.Cash -= v.Amount
		c.Flags.SpecialLoss += v.Amount
		out.Amount = v.Amount
		out.Detail = fmt.Sprintf("special loss %d", v.Amount)
	case ReturnChip:
		returned := returnChips(c, v.Chip, atLeastOne(v.Count))
		out.Amount = int64(returned)
		out.Detail = fmt.Sprintf("returned %d %s chip(s)", returned, v.Chip)
	case WorkerRetires:
		n := min(atLeastOne(v.Count), c.Personnel.Workers)
		c.Personnel.Workers -= n
		c.Personnel.RetiredWorkers += n
		out.Amount = int64(n)
		out.Detail = fmt.Sprintf("%d worker(s) retired", n)
	case SalesmanRetires:
		n := min(atLeastOne(v.Count), c.Personnel.Salesmen)
		c.Personnel.Salesmen -= n
		c.Personnel.RetiredSalesmen += n
		out.Amount = int64(n)
		out.Detail = fmt.Sprintf("%d salesman(s) retired", n)
	case LoseWIP:
		lost := min(clampNonNegative(v.Qty), c.Inventory.WIP)
		c.Inventory.WIP -= lost
		out.Amount = int64(lost)
		out.Detail = fmt.Sprintf("lost %d wip", lost) + insurancePayout(c, lost, v.InsuranceValue)
	case LoseProducts:
		lost := min(clampNonNegative(v.Qty), c.Inventory.Products)
		c.Inventory.Products -= lost
		out.Amount = int64(lost)
		out.Detail = fmt.Sprintf("lost %d products", lost) + insurancePayout(c, lost, v.InsuranceValue)
	case LoseMaterials:
		lost := c.Inventory.Materials
		c.Inventory.Materials = 0
		out.Amount = int64(lost)
		out.Detail = fmt.Sprintf("lost all %d materials", lost) + insurancePayout(c, lost, v.InsuranceValue)
	case SkipTurns:
		n := atLeastOne(v.Turns)
		c.Flags.SkipTurns += n
		out.Amount = int64(n)
		out.Detail = fmt.Sprintf("skips %d turn(s)", n)
	case NoProduction:
		c.Flags.NoProduction = true
		out.Detail = "production stopped this period"
	case NoSales:
		c.Flags.NoSales = true
		out.Detail = "sales stopped this period"
	case ExtraLaborCost:
		c.Flags.ExtraLaborCost += v.Amount
		out.Amount = v.Amount
		out.Detail = fmt.Sprintf("extra labor cost %d", v.Amount)
	case WageHike:
		if v.Multiplier > state.WageMultiplier {
			state.WageMultiplier = v.Multiplier
		}
		out.Detail = fmt.Sprintf("wage multiplier now %.2f", state.WageMultiplier)
	case ReverseTurn:
		if state.TurnDirection >= 0 {
			state.TurnDirection = -1
		} else {
			state.TurnDirection = 1
		}
		out.Detail = "turn order reversed"
	default:
		return out, false
	}
	return out, true
}

// returnChips takes chips from the current period first, then from reservations.
func returnChips(c *Company, kind ChipKind, n int) int {
	returned := 0
	for ; returned < n; returned++ {
		switch {
		case c.Chips.Get(kind) > 0:
			c.Chips.Add(kind, -1)
		case c.NextPeriodChips.Get(kind) > 0:
			c.NextPeriodChips.Add(kind, -1)
		default:
			return returned
		}
	}
	return returned
}

func insurancePayout(c *Company, lost int, value int64) string {
	if c.Chips.Insurance <= 0 || value <= 0 || lost <= 0 {
		return ""
	}
	payout := int64(lost) * value
	c.Cash += payout
	return fmt.Sprintf(", insurance paid %d", payout)
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
