package game

import (
	"fmt"
	"strings"
)

type ActionKind string

const (
	ActionBuyMaterials       ActionKind = "buy_materials"
	ActionInputProduction    ActionKind = "input_production"
	ActionCompleteProduction ActionKind = "complete_production"
	ActionHireWorker         ActionKind = "hire_worker"
	ActionHireSalesman       ActionKind = "hire_salesman"
	ActionBuyMachine         ActionKind = "buy_machine"
	ActionBuyAttachment      ActionKind = "buy_attachment"
	ActionBuyChip            ActionKind = "buy_chip"
	ActionReserveChip        ActionKind = "reserve_chip"
	ActionTakeLoan           ActionKind = "take_loan"
	ActionBuyBenefit         ActionKind = "buy_benefit"
	ActionSell               ActionKind = "sell"
	ActionPass               ActionKind = "pass"
)

type Action struct {
	Kind  ActionKind `json:"kind"`
	Label string     `json:"label"`
}

type ActionRequest struct {
	Kind      ActionKind  `json:"kind"`
	Quantity  int         `json:"quantity,omitempty"`
	UnitPrice int64       `json:"unit_price,omitempty"`
	Machine   MachineType `json:"machine,omitempty"`
	Chip      ChipKind    `json:"chip,omitempty"`
	Amount    int64       `json:"amount,omitempty"`
	LoanTerm  string      `json:"loan_term,omitempty"`
	CardID    string      `json:"card_id,omitempty"`
	Benefit   *Benefit    `json:"benefit,omitempty"`
}

type ActionResult struct {
	Kind     ActionKind `json:"kind"`
	Quantity int        `json:"quantity"`
	Cost     int64      `json:"cost"`
	Cash     int64      `json:"cash"`
	Message  string     `json:"message"`
}

func ParseActionKind(v string) (ActionKind, error) {
	kind := ActionKind(strings.ToLower(strings.TrimSpace(v)))
	switch kind {
	case ActionBuyMaterials, ActionInputProduction, ActionCompleteProduction, ActionHireWorker,
		ActionHireSalesman, ActionBuyMachine, ActionBuyAttachment, ActionBuyChip, ActionReserveChip,
		ActionTakeLoan, ActionBuyBenefit, ActionSell, ActionPass:
		return kind, nil
	}
	return "", fmt.Errorf("unknown action: %s", v)
}

// ProductionCapacity is what the staffed machines can move per production
// step. Each worker runs one machine, in purchase order.
func (e *Engine) ProductionCapacity(c *Company) int {
	if c == nil {
		return 0
	}
	caps := e.rules.Capacity
	total := 0
	for i, m := range c.Machines {
		if i >= c.Personnel.Workers {
			break
		}
		if m.Type == MachineLarge {
			total += caps.Large
		} else {
			total += caps.Small
		}
		total += m.Attachments * caps.Attachment
	}
	return total
}

func (e *Engine) SalesCapacity(c *Company) int {
	if c == nil {
		return 0
	}
	caps := e.rules.Capacity
	return c.Personnel.Salesmen*caps.PerSalesman + c.Chips.Advertising*caps.PerAdvertising
}

func (e *Engine) remainingSalesCapacity(c *Company) int {
	return clampNonNegative(e.SalesCapacity(c) - c.UnitsSold)
}

func (e *Engine) chipPrice(kind ChipKind, period int) int64 {
	r := e.rules.Chips
	switch kind {
	case ChipComputer:
		return r.Computer
	case ChipInsurance:
		return r.Insurance
	}
	if period <= FirstPeriod {
		return r.Normal
	}
	return r.Express
}

// AvailableDecisionActions lists what a decision card lets the company do now.
func (e *Engine) AvailableDecisionActions(c *Company, state *GameState) []Action {
	if c == nil || state == nil {
		return nil
	}
	p := e.rules.Prices
	out := []Action{}
	add := func(kind ActionKind, format string, args ...any) {
		out = append(out, Action{Kind: kind, Label: fmt.Sprintf(format, args...)})
	}

	if c.Cash > 0 {
		add(ActionBuyMaterials, "buy materials")
	}
	capacity := e.ProductionCapacity(c)
	if !c.Flags.NoProduction && capacity > 0 {
		if c.Inventory.Materials > 0 && c.Cash >= p.ProductionUnit {
			add(ActionInputProduction, "input up to %d materials", min(capacity, c.Inventory.Materials))
		}
		if c.Inventory.WIP > 0 && c.Cash >= p.ProductionUnit {
			add(ActionCompleteProduction, "complete up to %d products", min(capacity, c.Inventory.WIP))
		}
	}
	if !c.Flags.NoSales && c.Inventory.Products > 0 && e.remainingSalesCapacity(c) > 0 {
		add(ActionSell, "bid up to %d products", min(c.Inventory.Products, e.remainingSalesCapacity(c)))
	}
	if c.Cash >= p.Hire {
		add(ActionHireWorker, "hire a worker for %d", p.Hire)
		add(ActionHireSalesman, "hire a salesman for %d", p.Hire)
	}
	if c.Cash >= p.SmallMachine {
		add(ActionBuyMachine, "buy a machine from %d", p.SmallMachine)
	}
	if c.Cash >= p.Attachment && firstAttachable(c) >= 0 {
		add(ActionBuyAttachment, "buy an attachment for %d", p.Attachment)
	}
	if c.Cash >= e.chipPrice(ChipResearch, state.CurrentPeriod) {
		add(ActionBuyChip, "buy a chip for %d", e.chipPrice(ChipResearch, state.CurrentPeriod))
	}
	if state.CurrentPeriod > FirstPeriod && c.Cash >= e.rules.Chips.Normal && canReserve(c, e.rules.Chips.CarryoverCap) {
		add(ActionReserveChip, "reserve a next-period chip for %d", e.rules.Chips.Normal)
	}
	add(ActionTakeLoan, "take a loan")
	add(ActionPass, "pass")
	return out
}

// ApplyAction performs the numeric effect of a decision action for one company.
func (e *Engine) ApplyAction(state *GameState, companyIndex int, req ActionRequest) (ActionResult, error) {
	if state == nil {
		return ActionResult{}, ErrGameNotFound
	}
	if state.Phase != PhaseAction {
		return ActionResult{}, fmt.Errorf("%s: %w", req.Kind, ErrWrongPhase)
	}
	c, err := state.Company(companyIndex)
	if err != nil {
		return ActionResult{}, err
	}
	p := e.rules.Prices
	out := ActionResult{Kind: req.Kind}

	pay := func(cost int64) error {
		if cost > c.Cash {
			return fmt.Errorf("%s costs %d with %d cash: %w", req.Kind, cost, c.Cash, ErrInsufficientFunds)
		}
		c.Cash -= cost
		out.Cost += cost
		return nil
	}

	switch req.Kind {
	case ActionBuyMaterials:
		if req.Quantity <= 0 || req.UnitPrice <= 0 {
			return out, fmt.Errorf("buy materials needs quantity and unit price: %w", ErrActionNotAvailable)
		}
		if err := pay(int64(req.Quantity) * req.UnitPrice); err != nil {
			return out, err
		}
		c.Inventory.Materials += req.Quantity
		c.MaterialCostTotal += out.Cost
		out.Quantity = req.Quantity
		out.Message = fmt.Sprintf("bought %d materials at %d", req.Quantity, req.UnitPrice)

	case ActionInputProduction, ActionCompleteProduction:
		if c.Flags.NoProduction {
			return out, fmt.Errorf("production stopped: %w", ErrActionNotAvailable)
		}
		stock := c.Inventory.Materials
		if req.Kind == ActionCompleteProduction {
			stock = c.Inventory.WIP
		}
		want := req.Quantity
		if want <= 0 {
			want = stock
		}
		qty := min(want, e.ProductionCapacity(c), stock)
		if qty <= 0 {
			return out, fmt.Errorf("%s has nothing to move: %w", req.Kind, ErrActionNotAvailable)
		}
		if err := pay(int64(qty) * p.ProductionUnit); err != nil {
			return out, err
		}
		c.ProductionCostTotal += out.Cost
		if req.Kind == ActionInputProduction {
			c.Inventory.Materials -= qty
			c.Inventory.WIP += qty
		} else {
			c.Inventory.WIP -= qty
			c.Inventory.Products += qty
		}
		out.Quantity = qty
		out.Message = fmt.Sprintf("%s %d units", strings.ReplaceAll(string(req.Kind), "_", " "), qty)

	case ActionHireWorker, ActionHireSalesman:
		n := atLeastOne(req.Quantity)
		if err := pay(int64(n) * p.Hire); err != nil {
			return out, err
		}
		if req.Kind == ActionHireWorker {
			c.Personnel.Workers += n
		} else {
			c.Personnel.Salesmen += n
		}
		c.trackPersonnel()
		out.Quantity = n
		out.Message = fmt.Sprintf("hired %d", n)

	case ActionBuyMachine:
		machine := req.Machine
		if machine == "" {
			machine = MachineSmall
		}
		price := p.SmallMachine
		switch machine {
		case MachineSmall:
		case MachineLarge:
			price = p.LargeMachine
		default:
			return out, fmt.Errorf("unknown machine type %q: %w", machine, ErrActionNotAvailable)
		}
		if err := pay(price); err != nil {
			return out, err
		}
		c.Machines = append(c.Machines, Machine{Type: machine})
		out.Quantity = 1
		out.Message = fmt.Sprintf("bought a %s machine", machine)

	case ActionBuyAttachment:
		idx := firstAttachable(c)
		if idx < 0 {
			return out, fmt.Errorf("no small machine without attachment: %w", ErrActionNotAvailable)
		}
		if err := pay(p.Attachment); err != nil {
			return out, err
		}
		c.Machines[idx].Attachments++
		out.Quantity = 1
		out.Message = fmt.Sprintf("attachment fitted to machine %d", idx+1)

	case ActionBuyChip:
		if _, err := ParseChipKind(string(req.Chip)); err != nil {
			return out, fmt.Errorf("%v: %w", err, ErrActionNotAvailable)
		}
		n := atLeastOne(req.Quantity)
		if err := pay(int64(n) * e.chipPrice(req.Chip, state.CurrentPeriod)); err != nil {
			return out, err
		}
		c.Chips.Add(req.Chip, n)
		out.Quantity = n
		out.Message = fmt.Sprintf("bought %d %s chip(s)", n, req.Chip)

	case ActionReserveChip:
		if !req.Chip.Strategic() || state.CurrentPeriod <= FirstPeriod {
			return out, fmt.Errorf("reserve %q in period %d: %w", req.Chip, state.CurrentPeriod, ErrActionNotAvailable)
		}
		room := e.rules.Chips.CarryoverCap - c.NextPeriodChips.Get(req.Chip)
		n := min(atLeastOne(req.Quantity), room)
		if n <= 0 {
			return out, fmt.Errorf("next-period %s chips at cap: %w", req.Chip, ErrActionNotAvailable)
		}
		if err := pay(int64(n) * e.rules.Chips.Normal); err != nil {
			return out, err
		}
		c.NextPeriodChips.Add(req.Chip, n)
		out.Quantity = n
		out.Message = fmt.Sprintf("reserved %d %s chip(s) for next period", n, req.Chip)

	case ActionTakeLoan:
		if req.Amount <= 0 {
			return out, fmt.Errorf("loan amount must be > 0: %w", ErrActionNotAvailable)
		}
		switch strings.ToLower(strings.TrimSpace(req.LoanTerm)) {
		case "long":
			c.Loans.Long += req.Amount
		case "", "short":
			c.Loans.Short += req.Amount
		default:
			return out, fmt.Errorf("unknown loan term %q: %w", req.LoanTerm, ErrActionNotAvailable)
		}
		c.Cash += req.Amount
		out.Message = fmt.Sprintf("borrowed %d", req.Amount)

	case ActionBuyBenefit:
		if req.Benefit == nil {
			return out, fmt.Errorf("no special offer on card %q: %w", req.CardID, ErrActionNotAvailable)
		}
		eff := CalculateBenefitEffect(Card{ID: req.CardID, Type: CardDecision, Benefit: req.Benefit}, c)
		qty := min(atLeastOne(req.Quantity), eff.MaxQty)
		if !eff.CanPurchase || qty <= 0 {
			return out, fmt.Errorf("special offer not purchasable: %w", ErrActionNotAvailable)
		}
		if err := pay(int64(qty) * eff.PricePerUnit); err != nil {
			return out, err
		}
		switch req.Benefit.Kind {
		case BenefitMaterials:
			c.Inventory.Materials += qty
			c.MaterialCostTotal += out.Cost
		case BenefitResearch:
			c.Chips.Research += qty
		}
		out.Quantity = qty
		out.Message = fmt.Sprintf("special offer: %d %s at %d", qty, req.Benefit.Kind, eff.PricePerUnit)

	case ActionSell:
		return out, fmt.Errorf("sales go through an auction: %w", ErrActionNotAvailable)

	case ActionPass:
		out.Message = "passed"

	default:
		return out, fmt.Errorf("unknown action %q: %w", req.Kind, ErrActionNotAvailable)
	}

	out.Cash = c.Cash
	e.log.Debug("action applied", "company", c.Name, "action", req.Kind, "quantity", out.Quantity, "cost", out.Cost)
	return out, nil
}

func firstAttachable(c *Company) int {
	for i, m := range c.Machines {
		if m.Type == MachineSmall && m.Attachments == 0 {
			return i
		}
	}
	return -1
}

func canReserve(c *Company, capacity int) bool {
	for _, kind := range StrategicChips {
		if c.NextPeriodChips.Get(kind) < capacity {
			return true
		}
	}
	return false
}
