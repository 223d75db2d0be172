package game

type FixedCostBreakdown struct {
	Salary       int64 `json:"salary"`
	Interest     int64 `json:"interest"`
	Chips        int64 `json:"chips"`
	Depreciation int64 `json:"depreciation"`
	Additional   int64 `json:"additional"`
	ExtraLabor   int64 `json:"extra_labor"`
	Total        int64 `json:"total"`
}

// UnitWage is the per-head wage of the period. From the second played period
// on it is escalated by the game's wage multiplier.
func (e *Engine) UnitWage(period int, state *GameState) int64 {
	base := e.rules.baseWage(period)
	if period > FirstPeriod && state != nil && state.WageMultiplier > 1 {
		return roundMoney(float64(base) * state.WageMultiplier)
	}
	return base
}

func (e *Engine) CalculateSalaryCost(c *Company, period int, state *GameState) int64 {
	if c == nil {
		return 0
	}
	unit := float64(e.UnitWage(period, state))
	half := float64(roundMoney(unit / 2))
	p := c.Personnel
	workers := float64(p.Workers) + 0.5*float64(p.RetiredWorkers)
	salesmen := float64(p.Salesmen) + 0.5*float64(p.RetiredSalesmen)
	total := float64(len(c.Machines))*unit + workers*unit + salesmen*unit + float64(c.MaxPersonnel)*half
	return roundMoney(total)
}

func (e *Engine) CalculateInterest(c *Company) int64 {
	if c == nil {
		return 0
	}
	return roundMoney(float64(c.Loans.Long)*e.rules.Interest.Long) +
		roundMoney(float64(c.Loans.Short)*e.rules.Interest.Short)
}

// CalculateChipCost charges computer and insurance chips every period. Strategic
// chips bought in the first period cost the normal rate; later periods charge
// carried chips and reservations at the normal rate and anything bought on top
// of the carried stock at the express rate.
func (e *Engine) CalculateChipCost(c *Company, period int) int64 {
	if c == nil {
		return 0
	}
	r := e.rules.Chips
	total := int64(c.Chips.Computer)*r.Computer + int64(c.Chips.Insurance)*r.Insurance
	for _, kind := range StrategicChips {
		held := c.Chips.Get(kind)
		carried := c.CarriedOverChips.Get(kind)
		urgent := int64(clampNonNegative(held - carried))
		if period <= FirstPeriod {
			total += urgent * r.Normal
			continue
		}
		total += int64(carried)*r.Normal + urgent*r.Express + int64(c.NextPeriodChips.Get(kind))*r.Normal
	}
	return total
}

func (e *Engine) CalculateDepreciation(c *Company, period int) int64 {
	if c == nil {
		return 0
	}
	d := e.rules.Depreciation
	var total int64
	for _, m := range c.Machines {
		switch m.Type {
		case MachineLarge:
			total += d.Large.For(period)
		default:
			total += d.Small.For(period)
		}
		if m.Attachments > 0 {
			total += d.Attachment.For(period)
		}
	}
	return total
}

func (e *Engine) FixedCostBreakdown(c *Company, period int, state *GameState) FixedCostBreakdown {
	if c == nil {
		return FixedCostBreakdown{}
	}
	out := FixedCostBreakdown{
		Salary:       e.CalculateSalaryCost(c, period, state),
		Interest:     e.CalculateInterest(c),
		Chips:        e.CalculateChipCost(c, period),
		Depreciation: e.CalculateDepreciation(c, period),
		Additional:   c.Flags.AdditionalFixedCost,
		ExtraLabor:   c.Flags.ExtraLaborCost,
	}
	out.Total = out.Salary + out.Interest + out.Chips + out.Depreciation + out.Additional + out.ExtraLabor
	return out
}

func (e *Engine) CalculateFixedCost(c *Company, period int, state *GameState) int64 {
	return e.FixedCostBreakdown(c, period, state).Total
}
