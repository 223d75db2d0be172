package game

type Inventory struct {
	Materials int `json:"materials"`
	WIP       int `json:"wip"`
	Products  int `json:"products"`
}

type Personnel struct {
	Workers         int `json:"workers"`
	Salesmen        int `json:"salesmen"`
	RetiredWorkers  int `json:"retired_workers"`
	RetiredSalesmen int `json:"retired_salesmen"`
}

func (p Personnel) Active() int {
	return p.Workers + p.Salesmen
}

type Machine struct {
	Type        MachineType `json:"type"`
	Attachments int         `json:"attachments"`
}

type ChipSet struct {
	Research    int `json:"research"`
	Education   int `json:"education"`
	Advertising int `json:"advertising"`
	Computer    int `json:"computer"`
	Insurance   int `json:"insurance"`
}

func (c ChipSet) Get(kind ChipKind) int {
	switch kind {
	case ChipResearch:
		return c.Research
	case ChipEducation:
		return c.Education
	case ChipAdvertising:
		return c.Advertising
	case ChipComputer:
		return c.Computer
	case ChipInsurance:
		return c.Insurance
	}
	return 0
}

// Set stores n for kind, clamped at zero.
func (c *ChipSet) Set(kind ChipKind, n int) {
	n = clampNonNegative(n)
	switch kind {
	case ChipResearch:
		c.Research = n
	case ChipEducation:
		c.Education = n
	case ChipAdvertising:
		c.Advertising = n
	case ChipComputer:
		c.Computer = n
	case ChipInsurance:
		c.Insurance = n
	}
}

func (c *ChipSet) Add(kind ChipKind, delta int) {
	c.Set(kind, c.Get(kind)+delta)
}

type Loans struct {
	Long  int64 `json:"long"`
	Short int64 `json:"short"`
}

type Flags struct {
	NoProduction        bool  `json:"no_production"`
	NoSales             bool  `json:"no_sales"`
	SkipTurns           int   `json:"skip_turns"`
	AdditionalFixedCost int64 `json:"additional_fixed_cost"`
	ExtraLaborCost      int64 `json:"extra_labor_cost"`
	SpecialLoss         int64 `json:"special_loss"`
}

type Company struct {
	Name   string `json:"name"`
	Cash   int64  `json:"cash"`
	Equity int64  `json:"equity"`

	Inventory            Inventory `json:"inventory"`
	PeriodStartInventory Inventory `json:"period_start_inventory"`
	Personnel            Personnel `json:"personnel"`
	Machines             []Machine `json:"machines"`

	Chips            ChipSet `json:"chips"`
	CarriedOverChips ChipSet `json:"carried_over_chips"`
	NextPeriodChips  ChipSet `json:"next_period_chips"`

	Loans Loans `json:"loans"`
	Flags Flags `json:"flags"`

	HasExceededEquityThreshold bool  `json:"has_exceeded_equity_threshold"`
	PendingTax                 int64 `json:"pending_tax"`
	PendingDividend            int64 `json:"pending_dividend"`

	// Period ledgers, reset at period start.
	SalesTotal          int64 `json:"sales_total"`
	MaterialCostTotal   int64 `json:"material_cost_total"`
	ProductionCostTotal int64 `json:"production_cost_total"`
	MaxPersonnel        int   `json:"max_personnel"`
	UnitsSold           int   `json:"units_sold"`
}

// trackPersonnel raises the period high-water mark after a staffing change.
func (c *Company) trackPersonnel() {
	if n := c.Personnel.Active(); n > c.MaxPersonnel {
		c.MaxPersonnel = n
	}
}

func (c *Company) clone() Company {
	out := *c
	out.Machines = append([]Machine(nil), c.Machines...)
	return out
}

type Phase string

const (
	PhasePeriodStart Phase = "period_start"
	PhaseAction      Phase = "action"
	PhaseFinished    Phase = "finished"
)

type GameState struct {
	Companies          []*Company      `json:"companies"`
	CurrentPeriod      int             `json:"current_period"`
	CurrentPlayerIndex int             `json:"current_player_index"`
	Deck               []Card          `json:"deck"`
	UsedRiskCards      map[string]bool `json:"used_risk_cards"`
	TurnDirection      int             `json:"turn_direction"`
	WageMultiplier     float64         `json:"wage_multiplier"`
	Phase              Phase           `json:"phase"`
	TurnCount          int             `json:"turn_count"`
}

func (s *GameState) Company(idx int) (*Company, error) {
	if s == nil || idx < 0 || idx >= len(s.Companies) || s.Companies[idx] == nil {
		return nil, ErrCompanyNotFound
	}
	return s.Companies[idx], nil
}

func (s *GameState) company(idx int) *Company {
	c, _ := s.Company(idx)
	return c
}

type Bid struct {
	Company         int   `json:"company"`
	CallPrice       int64 `json:"call_price"`
	DisplayPrice    int64 `json:"display_price"`
	Quantity        int   `json:"quantity"`
	Competitiveness int   `json:"competitiveness"`
	IsParent        bool  `json:"is_parent"`
}

type CompanyView struct {
	Index int `json:"index"`
	Company
	Valuation          int64 `json:"valuation"`
	ProductionCapacity int   `json:"production_capacity"`
	SalesCapacity      int   `json:"sales_capacity"`
}

type GameView struct {
	ID                 string        `json:"id"`
	Seed               int64         `json:"seed"`
	Period             int           `json:"period"`
	Phase              Phase         `json:"phase"`
	CurrentPlayerIndex int           `json:"current_player_index"`
	TurnDirection      int           `json:"turn_direction"`
	WageMultiplier     float64       `json:"wage_multiplier"`
	DeckRemaining      int           `json:"deck_remaining"`
	UsedRiskCards      []string      `json:"used_risk_cards"`
	Companies          []CompanyView `json:"companies"`
}
