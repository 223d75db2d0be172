package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

type CardType string

const (
	CardDecision CardType = "decision"
	CardRisk     CardType = "risk"
)

type BenefitKind string

const (
	BenefitMaterials BenefitKind = "materials"
	BenefitResearch  BenefitKind = "research"
)

// Benefit is a special purchase offer printed on some decision cards.
type Benefit struct {
	Kind         BenefitKind `json:"kind"`
	MaxQty       int         `json:"max_qty"`
	PricePerUnit int64       `json:"price_per_unit"`
}

type BenefitEffect struct {
	MaxQty       int      `json:"max_qty"`
	PricePerUnit int64    `json:"price_per_unit"`
	Conditions   []string `json:"conditions"`
	CanPurchase  bool     `json:"can_purchase"`
}

type Card struct {
	ID      string   `json:"id"`
	Type    CardType `json:"type"`
	Name    string   `json:"name"`
	Effects []Effect `json:"-"`
	Benefit *Benefit `json:"benefit,omitempty"`
}

type effectJSON struct {
	Kind   string `json:"kind"`
	Params Effect `json:"params"`
}

func (c Card) MarshalJSON() ([]byte, error) {
	type plain Card
	effects := make([]effectJSON, 0, len(c.Effects))
	for _, eff := range c.Effects {
		effects = append(effects, effectJSON{Kind: eff.Kind().String(), Params: eff})
	}
	return json.Marshal(struct {
		plain
		Effects []effectJSON `json:"effects,omitempty"`
	}{plain: plain(c), Effects: effects})
}

var riskCatalog = []Card{
	{ID: "R01", Type: CardRisk, Name: "Worker retires", Effects: []Effect{WorkerRetires{Count: 1}}},
	{ID: "R02", Type: CardRisk, Name: "Salesman retires", Effects: []Effect{SalesmanRetires{Count: 1}}},
	{ID: "R03", Type: CardRisk, Name: "Warehouse fire", Effects: []Effect{LoseMaterials{InsuranceValue: 8}}},
	{ID: "R04", Type: CardRisk, Name: "Product theft", Effects: []Effect{LoseProducts{Qty: 2, InsuranceValue: 10}}},
	{ID: "R05", Type: CardRisk, Name: "Line accident", Effects: []Effect{LoseWIP{Qty: 2, InsuranceValue: 5}}},
	{ID: "R06", Type: CardRisk, Name: "Labor dispute", Effects: []Effect{SkipTurns{Turns: 1}}},
	{ID: "R07", Type: CardRisk, Name: "Machine breakdown", Effects: []Effect{NoProduction{}}},
	{ID: "R08", Type: CardRisk, Name: "Product recall", Effects: []Effect{NoSales{}, CashLoss{Amount: 10}}},
	{ID: "R09", Type: CardRisk, Name: "Research setback", Effects: []Effect{ReturnChip{Chip: ChipResearch, Count: 1}}},
	{ID: "R10", Type: CardRisk, Name: "Training dropout", Effects: []Effect{ReturnChip{Chip: ChipEducation, Count: 1}}},
	{ID: "R11", Type: CardRisk, Name: "Campaign flop", Effects: []Effect{ReturnChip{Chip: ChipAdvertising, Count: 1}}},
	{ID: "R12", Type: CardRisk, Name: "Overtime surge", Effects: []Effect{ExtraLaborCost{Amount: 10}}},
	{ID: "R13", Type: CardRisk, Name: "Union wage agreement", Effects: []Effect{WageHike{Multiplier: 1.2}, Period2Exempt{}}},
	{ID: "R14", Type: CardRisk, Name: "Turn of fortune", Effects: []Effect{ReverseTurn{}}},
	{ID: "R15", Type: CardRisk, Name: "Regulatory fee", Effects: []Effect{AdditionalFixedCost{Amount: 10}}},
	{ID: "R16", Type: CardRisk, Name: "Bad debt", Effects: []Effect{CashLoss{Amount: 20}, Period2Exempt{}}},
	{ID: "R17", Type: CardRisk, Name: "Flood", Effects: []Effect{LoseWIP{Qty: 3, InsuranceValue: 5}, LoseProducts{Qty: 1, InsuranceValue: 10}}},
	{ID: "R18", Type: CardRisk, Name: "Salesman headhunted", Effects: []Effect{SalesmanRetires{Count: 1}, SkipTurns{Turns: 1}, Period2Exempt{}}},
	{ID: "R19", Type: CardRisk, Name: "Maintenance overhaul", Effects: []Effect{AdditionalFixedCost{Amount: 5}, NoProduction{}}},
	{ID: "R20", Type: CardRisk, Name: "Economic downturn", Effects: []Effect{AdditionalFixedCost{Amount: 15}, Period2Exempt{}}},
}

// RiskCatalog returns the risk cards a risk draw can select from.
func RiskCatalog() []Card {
	out := make([]Card, len(riskCatalog))
	copy(out, riskCatalog)
	return out
}

func RiskCardByID(id string) (Card, bool) {
	for _, c := range riskCatalog {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// Shuffle permutes items in place and returns them.
func Shuffle[T any](rng *rand.Rand, items []T) []T {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return items
}

// InitializeDeck builds a full shuffled cycle. Risk entries are slots; the
// actual risk card is chosen when the slot is drawn.
func (e *Engine) InitializeDeck() []Card {
	d := e.rules.Deck
	deck := make([]Card, 0, d.DecisionCards+d.RiskCards)
	for i := 1; i <= d.DecisionCards; i++ {
		card := Card{ID: fmt.Sprintf("D%02d", i), Type: CardDecision, Name: "Decision"}
		if i <= d.BenefitCards {
			card.Name = "Special offer"
			if i%2 == 1 {
				card.Benefit = &Benefit{Kind: BenefitMaterials, MaxQty: 5, PricePerUnit: 10}
			} else {
				card.Benefit = &Benefit{Kind: BenefitResearch, MaxQty: 1, PricePerUnit: 15}
			}
		}
		deck = append(deck, card)
	}
	for i := 1; i <= d.RiskCards; i++ {
		deck = append(deck, Card{ID: fmt.Sprintf("RISK-%02d", i), Type: CardRisk, Name: "Risk"})
	}
	return Shuffle(e.rng, deck)
}

func (e *Engine) Shuffle(cards []Card) []Card {
	return Shuffle(e.rng, cards)
}

// AvailableRiskCards lists catalog cards not yet used, in catalog order.
func AvailableRiskCards(state *GameState) []Card {
	out := make([]Card, 0, len(riskCatalog))
	for _, c := range riskCatalog {
		if state != nil && state.UsedRiskCards[c.ID] {
			continue
		}
		out = append(out, c)
	}
	return out
}

type DrawResult struct {
	Type       CardType `json:"type"`
	Card       *Card    `json:"card,omitempty"`
	Reshuffled bool     `json:"reshuffled,omitempty"`
	Degraded   bool     `json:"degraded,omitempty"`
}

// DrawCard pops the top of the deck. An exhausted deck is rebuilt first and
// the used risk cards become available again. A risk slot with no unused risk
// card left is played as a decision draw without a card.
func (e *Engine) DrawCard(state *GameState) DrawResult {
	var out DrawResult
	if len(state.Deck) == 0 {
		state.Deck = e.InitializeDeck()
		state.UsedRiskCards = map[string]bool{}
		out.Reshuffled = true
	}
	last := len(state.Deck) - 1
	drawn := state.Deck[last]
	state.Deck = state.Deck[:last]

	if drawn.Type != CardRisk {
		out.Type = CardDecision
		out.Card = &drawn
		return out
	}

	available := AvailableRiskCards(state)
	if len(available) == 0 {
		out.Type = CardDecision
		out.Degraded = true
		return out
	}
	picked := available[e.rng.Intn(len(available))]
	if state.UsedRiskCards == nil {
		state.UsedRiskCards = map[string]bool{}
	}
	state.UsedRiskCards[picked.ID] = true
	out.Type = CardRisk
	out.Card = &picked
	return out
}

// CalculateBenefitEffect sizes the special offer of a decision card for a company.
func CalculateBenefitEffect(card Card, c *Company) BenefitEffect {
	if card.Benefit == nil || c == nil {
		return BenefitEffect{}
	}
	b := card.Benefit
	out := BenefitEffect{PricePerUnit: b.PricePerUnit, MaxQty: b.MaxQty, CanPurchase: true}
	if b.PricePerUnit > 0 {
		affordable := c.Cash / b.PricePerUnit
		if affordable < int64(out.MaxQty) {
			out.MaxQty = int(max(affordable, 0))
		}
	}
	out.Conditions = append(out.Conditions, fmt.Sprintf("pay %d per unit in cash", b.PricePerUnit))
	switch b.Kind {
	case BenefitMaterials:
		out.Conditions = append(out.Conditions, "at least one machine to receive materials")
		if len(c.Machines) == 0 {
			out.CanPurchase = false
		}
	case BenefitResearch:
		out.Conditions = append(out.Conditions, "research chip is used this period")
	}
	if out.MaxQty <= 0 {
		out.CanPurchase = false
	}
	if !out.CanPurchase {
		out.MaxQty = 0
	}
	return out
}
