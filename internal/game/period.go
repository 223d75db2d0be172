package game

import (
	"fmt"
)

type PeriodStartReport struct {
	Index    int    `json:"index"`
	Company  string `json:"company"`
	Tax      int64  `json:"tax"`
	Dividend int64  `json:"dividend"`
	Interest int64  `json:"interest"`
	Payment  int64  `json:"payment"`
	Cash     int64  `json:"cash"`
}

type TurnResult struct {
	Company int            `json:"company"`
	Skipped []int          `json:"skipped,omitempty"`
	Draw    DrawResult     `json:"draw"`
	Risk    *RiskResult    `json:"risk,omitempty"`
	Benefit *BenefitEffect `json:"benefit,omitempty"`
	Actions []Action       `json:"actions,omitempty"`
}

type CloseReport struct {
	Index          int                `json:"index"`
	Company        string             `json:"company"`
	Period         int                `json:"period"`
	Profit         ProfitReport       `json:"profit"`
	Fixed          FixedCostBreakdown `json:"fixed"`
	PreviousEquity int64              `json:"previous_equity"`
	Tax            TaxResult          `json:"tax"`
	EndPayment     int64              `json:"end_payment"`
	Repayment      Loans              `json:"repayment"`
	Cash           int64              `json:"cash"`
	CarriedChips   ChipSet            `json:"carried_chips"`
	EmergencyLoan  int64              `json:"emergency_loan,omitempty"`
}

// NewGame seats the companies with the starting position and a fresh deck.
func (e *Engine) NewGame(names []string) (*GameState, error) {
	if len(names) < MinCompanies || len(names) > MaxCompanies {
		return nil, fmt.Errorf("%d companies: %w", len(names), ErrInvalidCompanyCount)
	}
	st := e.rules.Start
	state := &GameState{
		CurrentPeriod:  FirstPeriod,
		UsedRiskCards:  map[string]bool{},
		TurnDirection:  1,
		WageMultiplier: 1,
		Phase:          PhasePeriodStart,
	}
	for _, name := range names {
		if err := validateCompanyName(name); err != nil {
			return nil, err
		}
		c := &Company{
			Name:      name,
			Cash:      st.Cash,
			Equity:    st.Equity,
			Personnel: Personnel{Workers: st.Workers, Salesmen: st.Salesmen},
		}
		for i := 0; i < st.SmallMachines; i++ {
			c.Machines = append(c.Machines, Machine{Type: MachineSmall})
		}
		state.Companies = append(state.Companies, c)
	}
	state.Deck = e.InitializeDeck()
	return state, nil
}

func (e *Engine) CalculatePeriodStartPayment(c *Company) int64 {
	if c == nil {
		return 0
	}
	return c.PendingTax + c.PendingDividend + e.CalculateInterest(c)
}

// MinimumRepayment is the principal that must be repaid at period end.
func (e *Engine) MinimumRepayment(c *Company) Loans {
	if c == nil {
		return Loans{}
	}
	return Loans{
		Long:  roundMoney(float64(c.Loans.Long) * e.rules.Repayment.Long),
		Short: roundMoney(float64(c.Loans.Short) * e.rules.Repayment.Short),
	}
}

func (e *Engine) CalculatePeriodEndPayment(c *Company, period int, state *GameState) int64 {
	if c == nil {
		return 0
	}
	r := e.MinimumRepayment(c)
	return e.CalculateSalaryCost(c, period, state) + r.Long + r.Short
}

// StartPeriod settles last period's tax, dividend and this period's interest,
// then opens the action phase.
func (e *Engine) StartPeriod(state *GameState) ([]PeriodStartReport, error) {
	if state.Phase == PhaseFinished {
		return nil, ErrGameFinished
	}
	if state.Phase != PhasePeriodStart {
		return nil, fmt.Errorf("start period: %w", ErrWrongPhase)
	}
	out := make([]PeriodStartReport, 0, len(state.Companies))
	for i, c := range state.Companies {
		interest := e.CalculateInterest(c)
		payment := e.CalculatePeriodStartPayment(c)
		out = append(out, PeriodStartReport{
			Index:    i,
			Company:  c.Name,
			Tax:      c.PendingTax,
			Dividend: c.PendingDividend,
			Interest: interest,
			Payment:  payment,
			Cash:     c.Cash - payment,
		})
		c.Cash -= payment
		c.PendingTax = 0
		c.PendingDividend = 0

		c.PeriodStartInventory = c.Inventory
		c.SalesTotal = 0
		c.MaterialCostTotal = 0
		c.ProductionCostTotal = 0
		c.UnitsSold = 0
		c.Personnel.RetiredWorkers = 0
		c.Personnel.RetiredSalesmen = 0
		c.MaxPersonnel = c.Personnel.Active()
		c.Flags = Flags{SkipTurns: c.Flags.SkipTurns}
	}
	if n := len(state.Companies); n > 0 {
		state.CurrentPlayerIndex = (state.CurrentPeriod - FirstPeriod) % n
	}
	state.TurnCount = 0
	state.Phase = PhaseAction
	e.log.Info("period started", "period", state.CurrentPeriod, "parent", state.CurrentPlayerIndex)
	return out, nil
}

// TakeTurn draws one card for the next company in turn order. Companies
// holding skipped turns burn one and are passed over. The drawing company
// stays current until the next turn so that its actions and auctions treat it
// as parent.
func (e *Engine) TakeTurn(state *GameState) (TurnResult, error) {
	var out TurnResult
	if state.Phase == PhaseFinished {
		return out, ErrGameFinished
	}
	if state.Phase != PhaseAction {
		return out, fmt.Errorf("take turn: %w", ErrWrongPhase)
	}
	n := len(state.Companies)
	if n == 0 {
		return out, ErrCompanyNotFound
	}
	if state.TurnCount > 0 {
		e.advanceTurn(state)
	}
	// Each pass burns one skip, so the loop ends even when every company owes some.
	for {
		c := state.Companies[state.CurrentPlayerIndex]
		if c.Flags.SkipTurns <= 0 {
			break
		}
		c.Flags.SkipTurns--
		out.Skipped = append(out.Skipped, state.CurrentPlayerIndex)
		e.advanceTurn(state)
	}
	state.TurnCount++

	idx := state.CurrentPlayerIndex
	c := state.Companies[idx]
	out.Company = idx
	out.Draw = e.DrawCard(state)

	switch {
	case out.Draw.Type == CardRisk && out.Draw.Card != nil:
		res := ApplyRiskCardEffect(*out.Draw.Card, c, state)
		out.Risk = &res
		e.log.Info("risk card applied", "company", c.Name, "card", out.Draw.Card.ID, "message", res.Message)
	default:
		if out.Draw.Card != nil && out.Draw.Card.Benefit != nil {
			eff := CalculateBenefitEffect(*out.Draw.Card, c)
			out.Benefit = &eff
		}
		out.Actions = e.AvailableDecisionActions(c, state)
	}
	return out, nil
}

func (e *Engine) advanceTurn(state *GameState) {
	n := len(state.Companies)
	dir := state.TurnDirection
	if dir == 0 {
		dir = 1
	}
	state.CurrentPlayerIndex = ((state.CurrentPlayerIndex+dir)%n + n) % n
}

// ClosePeriod runs the financial close for every company, settles end-of-period
// payments and rolls chips into the next period.
func (e *Engine) ClosePeriod(state *GameState) ([]CloseReport, error) {
	if state.Phase == PhaseFinished {
		return nil, ErrGameFinished
	}
	if state.Phase != PhaseAction {
		return nil, fmt.Errorf("close period: %w", ErrWrongPhase)
	}
	period := state.CurrentPeriod
	out := make([]CloseReport, 0, len(state.Companies))
	for i, c := range state.Companies {
		report := CloseReport{
			Index:          i,
			Company:        c.Name,
			Period:         period,
			Profit:         e.CalculateProfit(c, period, state),
			Fixed:          e.FixedCostBreakdown(c, period, state),
			PreviousEquity: c.Equity,
		}
		report.Tax = e.CalculateTaxAndDividend(c.Equity, report.Profit.G, c.HasExceededEquityThreshold)
		report.Repayment = e.MinimumRepayment(c)
		report.EndPayment = e.CalculatePeriodEndPayment(c, period, state)

		c.Cash -= report.EndPayment
		c.Loans.Long -= report.Repayment.Long
		c.Loans.Short -= report.Repayment.Short
		c.Equity = report.Tax.NewEquity
		c.HasExceededEquityThreshold = report.Tax.ExceededThreshold
		c.PendingTax = report.Tax.Tax
		c.PendingDividend = report.Tax.Dividend

		e.carryOverChips(c, period)
		report.CarriedChips = c.CarriedOverChips
		report.Cash = c.Cash
		out = append(out, report)

		e.log.Info("period closed",
			"company", c.Name,
			"period", period,
			"pq", report.Profit.PQ,
			"vq", report.Profit.VQ,
			"f", report.Profit.F,
			"g", report.Profit.G,
			"tax", report.Tax.Tax,
			"equity", c.Equity,
		)
	}

	if period >= LastPeriod {
		state.Phase = PhaseFinished
	} else {
		state.CurrentPeriod++
		state.Phase = PhasePeriodStart
	}
	return out, nil
}

// carryOverChips moves strategic chips across the period boundary. After the
// first period, everything above the base return rolls over up to the cap.
// Later periods consume current chips and keep only reservations.
func (e *Engine) carryOverChips(c *Company, period int) {
	r := e.rules.Chips
	for _, kind := range StrategicChips {
		next := c.NextPeriodChips.Get(kind)
		if period <= FirstPeriod {
			next += clampNonNegative(c.Chips.Get(kind) - r.Period2Return)
		}
		next = min(next, r.CarryoverCap)
		c.CarriedOverChips.Set(kind, next)
		c.Chips.Set(kind, next)
		c.NextPeriodChips.Set(kind, 0)
	}
	c.Chips.Insurance = 0
}
