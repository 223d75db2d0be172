package game

type ProfitReport struct {
	PQ          int64 `json:"pq"`
	VQ          int64 `json:"vq"`
	MQ          int64 `json:"mq"`
	F           int64 `json:"f"`
	G           int64 `json:"g"`
	SpecialLoss int64 `json:"special_loss"`
}

type TaxResult struct {
	Tax               int64 `json:"tax"`
	Dividend          int64 `json:"dividend"`
	NewEquity         int64 `json:"new_equity"`
	ExceededThreshold bool  `json:"exceeded_threshold"`
}

func (e *Engine) CalculateProfit(c *Company, period int, state *GameState) ProfitReport {
	if c == nil {
		return ProfitReport{}
	}
	out := ProfitReport{
		PQ:          c.SalesTotal,
		VQ:          e.CalculateVQ(c),
		F:           e.CalculateFixedCost(c, period, state),
		SpecialLoss: c.Flags.SpecialLoss,
	}
	out.MQ = out.PQ - out.VQ
	out.G = out.MQ - out.F - out.SpecialLoss
	return out
}

// CalculateTaxAndDividend settles a period's profit against equity.
//
// The first close that lifts equity over the threshold taxes the excess over
// the threshold at the breakthrough rates. Once the threshold has been crossed,
// later closes are taxed on that period's profit only, and only when it is
// positive. Equity at or below the threshold is never taxed.
func (e *Engine) CalculateTaxAndDividend(previousEquity, profit int64, hasExceeded bool) TaxResult {
	t := e.rules.Tax
	newEquity := previousEquity + profit
	out := TaxResult{NewEquity: newEquity, ExceededThreshold: hasExceeded}
	if newEquity <= t.EquityThreshold {
		return out
	}

	switch {
	case !hasExceeded:
		excess := float64(newEquity - t.EquityThreshold)
		out.Tax = roundMoney(excess * t.BreakthroughTax)
		out.Dividend = roundMoney(excess * t.BreakthroughDividend)
		out.ExceededThreshold = true
	case profit > 0:
		out.Tax = roundMoney(float64(profit) * t.SteadyTax)
		out.Dividend = roundMoney(float64(profit) * t.SteadyDividend)
	}
	out.NewEquity = newEquity - out.Tax
	return out
}
