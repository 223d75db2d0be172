package game

import "fmt"

// EffectKind orders risk effects. Effects on a card are always applied in
// ascending kind order, whatever order the card lists them in.
type EffectKind int

const (
	EffectPeriod2Exempt EffectKind = iota
	EffectAdditionalFixedCost
	EffectCashLoss
	EffectReturnChip
	EffectWorkerRetires
	EffectSalesmanRetires
	EffectLoseWIP
	EffectLoseProducts
	EffectLoseMaterials
	EffectSkipTurns
	EffectNoProduction
	EffectNoSales
	EffectExtraLaborCost
	EffectWageHike
	EffectReverseTurn
)

var effectKindNames = map[EffectKind]string{
	EffectPeriod2Exempt:       "period2_exempt",
	EffectAdditionalFixedCost: "additional_fixed_cost",
	EffectCashLoss:            "cash_loss",
	EffectReturnChip:          "return_chip",
	EffectWorkerRetires:       "worker_retires",
	EffectSalesmanRetires:     "salesman_retires",
	EffectLoseWIP:             "lose_wip",
	EffectLoseProducts:        "lose_products",
	EffectLoseMaterials:       "lose_materials",
	EffectSkipTurns:           "skip_turns",
	EffectNoProduction:        "no_production",
	EffectNoSales:             "no_sales",
	EffectExtraLaborCost:      "extra_labor_cost",
	EffectWageHike:            "wage_hike",
	EffectReverseTurn:         "reverse_turn",
}

func (k EffectKind) String() string {
	if name, ok := effectKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("effect(%d)", int(k))
}

// Effect is one declared consequence of a risk card. The set of
// implementations is closed to this package.
type Effect interface {
	Kind() EffectKind
	sealed()
}

// Period2Exempt cancels the whole card when drawn in the first period.
type Period2Exempt struct{}

type AdditionalFixedCost struct {
	Amount int64 `json:"amount"`
}

// CashLoss is booked as special loss, not as fixed cost.
type CashLoss struct {
	Amount int64 `json:"amount"`
}

type ReturnChip struct {
	Chip  ChipKind `json:"chip"`
	Count int      `json:"count"`
}

type WorkerRetires struct {
	Count int `json:"count"`
}

type SalesmanRetires struct {
	Count int `json:"count"`
}

type LoseWIP struct {
	Qty            int   `json:"qty"`
	InsuranceValue int64 `json:"insurance_value"`
}

type LoseProducts struct {
	Qty            int   `json:"qty"`
	InsuranceValue int64 `json:"insurance_value"`
}

// LoseMaterials always destroys the whole material stock.
type LoseMaterials struct {
	InsuranceValue int64 `json:"insurance_value"`
}

type SkipTurns struct {
	Turns int `json:"turns"`
}

type NoProduction struct{}

type NoSales struct{}

type ExtraLaborCost struct {
	Amount int64 `json:"amount"`
}

// WageHike raises the game-wide wage multiplier; it never lowers it.
type WageHike struct {
	Multiplier float64 `json:"multiplier"`
}

type ReverseTurn struct{}

func (Period2Exempt) Kind() EffectKind       { return EffectPeriod2Exempt }
func (AdditionalFixedCost) Kind() EffectKind { return EffectAdditionalFixedCost }
func (CashLoss) Kind() EffectKind            { return EffectCashLoss }
func (ReturnChip) Kind() EffectKind          { return EffectReturnChip }
func (WorkerRetires) Kind() EffectKind       { return EffectWorkerRetires }
func (SalesmanRetires) Kind() EffectKind     { return EffectSalesmanRetires }
func (LoseWIP) Kind() EffectKind             { return EffectLoseWIP }
func (LoseProducts) Kind() EffectKind        { return EffectLoseProducts }
func (LoseMaterials) Kind() EffectKind       { return EffectLoseMaterials }
func (SkipTurns) Kind() EffectKind           { return EffectSkipTurns }
func (NoProduction) Kind() EffectKind        { return EffectNoProduction }
func (NoSales) Kind() EffectKind             { return EffectNoSales }
func (ExtraLaborCost) Kind() EffectKind      { return EffectExtraLaborCost }
func (WageHike) Kind() EffectKind            { return EffectWageHike }
func (ReverseTurn) Kind() EffectKind         { return EffectReverseTurn }

func (Period2Exempt) sealed()       {}
func (AdditionalFixedCost) sealed() {}
func (CashLoss) sealed()            {}
func (ReturnChip) sealed()          {}
func (WorkerRetires) sealed()       {}
func (SalesmanRetires) sealed()     {}
func (LoseWIP) sealed()             {}
func (LoseProducts) sealed()        {}
func (LoseMaterials) sealed()       {}
func (SkipTurns) sealed()           {}
func (NoProduction) sealed()        {}
func (NoSales) sealed()             {}
func (ExtraLaborCost) sealed()      {}
func (WageHike) sealed()            {}
func (ReverseTurn) sealed()         {}
