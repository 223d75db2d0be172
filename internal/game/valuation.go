package game

// Valuation prices an inventory at the fixed per-unit rates.
func (e *Engine) Valuation(inv Inventory) int64 {
	r := e.rules.Valuation
	return int64(inv.Materials)*r.Material + int64(inv.WIP)*r.WIP + int64(inv.Products)*r.Product
}

// CalculateVQ returns the variable cost of the period: purchases and production
// plus the drop in inventory value. Card losses are already reflected in the
// end inventory, so they are not added again.
func (e *Engine) CalculateVQ(c *Company) int64 {
	if c == nil {
		return 0
	}
	return c.MaterialCostTotal + c.ProductionCostTotal + e.Valuation(c.PeriodStartInventory) - e.Valuation(c.Inventory)
}
