package game

import (
	"fmt"
)

type UnitRates struct {
	Material int64 `yaml:"material" json:"material"`
	WIP      int64 `yaml:"wip" json:"wip"`
	Product  int64 `yaml:"product" json:"product"`
}

type LoanRates struct {
	Long  float64 `yaml:"long" json:"long"`
	Short float64 `yaml:"short" json:"short"`
}

type ChipRules struct {
	Normal        int64 `yaml:"normal" json:"normal"`
	Express       int64 `yaml:"express" json:"express"`
	Computer      int64 `yaml:"computer" json:"computer"`
	Insurance     int64 `yaml:"insurance" json:"insurance"`
	CarryoverCap  int   `yaml:"carryover_cap" json:"carryover_cap"`
	Period2Return int   `yaml:"period2_return" json:"period2_return"`
}

// PeriodRate is a per-machine amount that differs between the first period and later ones.
type PeriodRate struct {
	Period2 int64 `yaml:"period2" json:"period2"`
	Later   int64 `yaml:"later" json:"later"`
}

func (r PeriodRate) For(period int) int64 {
	if period <= FirstPeriod {
		return r.Period2
	}
	return r.Later
}

type DepreciationRules struct {
	Small      PeriodRate `yaml:"small" json:"small"`
	Large      PeriodRate `yaml:"large" json:"large"`
	Attachment PeriodRate `yaml:"attachment" json:"attachment"`
}

type TaxRules struct {
	EquityThreshold      int64   `yaml:"equity_threshold" json:"equity_threshold"`
	BreakthroughTax      float64 `yaml:"breakthrough_tax" json:"breakthrough_tax"`
	BreakthroughDividend float64 `yaml:"breakthrough_dividend" json:"breakthrough_dividend"`
	SteadyTax            float64 `yaml:"steady_tax" json:"steady_tax"`
	SteadyDividend       float64 `yaml:"steady_dividend" json:"steady_dividend"`
}

type BiddingRules struct {
	ResearchBonus int `yaml:"research_bonus" json:"research_bonus"`
	ParentBonus   int `yaml:"parent_bonus" json:"parent_bonus"`
}

type DeckRules struct {
	DecisionCards int `yaml:"decision_cards" json:"decision_cards"`
	RiskCards     int `yaml:"risk_cards" json:"risk_cards"`
	BenefitCards  int `yaml:"benefit_cards" json:"benefit_cards"`
}

type StartRules struct {
	Cash          int64 `yaml:"cash" json:"cash"`
	Equity        int64 `yaml:"equity" json:"equity"`
	Workers       int   `yaml:"workers" json:"workers"`
	Salesmen      int   `yaml:"salesmen" json:"salesmen"`
	SmallMachines int   `yaml:"small_machines" json:"small_machines"`
}

type PriceRules struct {
	SmallMachine   int64 `yaml:"small_machine" json:"small_machine"`
	LargeMachine   int64 `yaml:"large_machine" json:"large_machine"`
	Attachment     int64 `yaml:"attachment" json:"attachment"`
	Hire           int64 `yaml:"hire" json:"hire"`
	ProductionUnit int64 `yaml:"production_unit" json:"production_unit"`
}

type CapacityRules struct {
	Small          int `yaml:"small" json:"small"`
	Large          int `yaml:"large" json:"large"`
	Attachment     int `yaml:"attachment" json:"attachment"`
	PerSalesman    int `yaml:"per_salesman" json:"per_salesman"`
	PerAdvertising int `yaml:"per_advertising" json:"per_advertising"`
}

// Rules carries every tunable constant of the game. The engine reads them only
// through the value it was constructed with.
type Rules struct {
	Valuation         UnitRates         `yaml:"valuation" json:"valuation"`
	BaseWage          map[int]int64     `yaml:"base_wage" json:"base_wage"`
	Interest          LoanRates         `yaml:"interest" json:"interest"`
	Repayment         LoanRates         `yaml:"repayment" json:"repayment"`
	Chips             ChipRules         `yaml:"chips" json:"chips"`
	Depreciation      DepreciationRules `yaml:"depreciation" json:"depreciation"`
	Tax               TaxRules          `yaml:"tax" json:"tax"`
	Bidding           BiddingRules      `yaml:"bidding" json:"bidding"`
	Deck              DeckRules         `yaml:"deck" json:"deck"`
	Start             StartRules        `yaml:"start" json:"start"`
	Prices            PriceRules        `yaml:"prices" json:"prices"`
	Capacity          CapacityRules     `yaml:"capacity" json:"capacity"`
	EmergencyLoanUnit int64             `yaml:"emergency_loan_unit" json:"emergency_loan_unit"`
}

func DefaultRules() Rules {
	return Rules{
		Valuation: UnitRates{Material: 13, WIP: 14, Product: 15},
		BaseWage:  map[int]int64{2: 22, 3: 24, 4: 26, 5: 28},
		Interest:  LoanRates{Long: 0.10, Short: 0.20},
		Repayment: LoanRates{Long: 0.10, Short: 0.20},
		Chips: ChipRules{
			Normal:        20,
			Express:       40,
			Computer:      20,
			Insurance:     5,
			CarryoverCap:  3,
			Period2Return: 1,
		},
		Depreciation: DepreciationRules{
			Small:      PeriodRate{Period2: 10, Later: 20},
			Large:      PeriodRate{Period2: 20, Later: 40},
			Attachment: PeriodRate{Period2: 3, Later: 6},
		},
		Tax: TaxRules{
			EquityThreshold:      300,
			BreakthroughTax:      0.5,
			BreakthroughDividend: 0.2,
			SteadyTax:            0.5,
			SteadyDividend:       0.1,
		},
		Bidding: BiddingRules{ResearchBonus: 2, ParentBonus: 2},
		Deck:    DeckRules{DecisionCards: 60, RiskCards: 15, BenefitCards: 6},
		Start: StartRules{
			Cash:          300,
			Equity:        300,
			Workers:       1,
			Salesmen:      1,
			SmallMachines: 1,
		},
		Prices: PriceRules{
			SmallMachine:   100,
			LargeMachine:   200,
			Attachment:     30,
			Hire:           5,
			ProductionUnit: 1,
		},
		Capacity: CapacityRules{
			Small:          1,
			Large:          4,
			Attachment:     1,
			PerSalesman:    2,
			PerAdvertising: 2,
		},
		EmergencyLoanUnit: 50,
	}
}

func (r Rules) Validate() error {
	for p := FirstPeriod; p <= LastPeriod; p++ {
		if r.BaseWage[p] <= 0 {
			return fmt.Errorf("base wage for period %d must be > 0", p)
		}
	}
	if r.Valuation.Material < 0 || r.Valuation.WIP < 0 || r.Valuation.Product < 0 {
		return fmt.Errorf("valuation rates must be >= 0")
	}
	if r.Chips.Express < r.Chips.Normal {
		return fmt.Errorf("express chip price must not be below normal price")
	}
	if r.Chips.CarryoverCap < 0 {
		return fmt.Errorf("chip carryover cap must be >= 0")
	}
	if r.Deck.DecisionCards <= 0 || r.Deck.RiskCards < 0 {
		return fmt.Errorf("deck needs decision cards")
	}
	if r.Deck.BenefitCards > r.Deck.DecisionCards {
		return fmt.Errorf("benefit cards exceed decision cards")
	}
	if r.Tax.EquityThreshold <= 0 {
		return fmt.Errorf("equity threshold must be > 0")
	}
	if r.EmergencyLoanUnit <= 0 {
		return fmt.Errorf("emergency loan unit must be > 0")
	}
	return nil
}

func (r Rules) baseWage(period int) int64 {
	if period < FirstPeriod {
		period = FirstPeriod
	}
	if period > LastPeriod {
		period = LastPeriod
	}
	return r.BaseWage[period]
}
