package finance

// CostSummary is the per-unit cost roll-up derived from a state snapshot.
// It is recomputed in full on every render and never stored.
type CostSummary struct {
	TotalDevCost           float64 `json:"total_dev_cost"`
	AmortPerUnit           float64 `json:"amort_per_unit"`
	TotalBatchMaterialCost float64 `json:"total_batch_material_cost"`
	EffectiveUnits         int     `json:"effective_units"`
	MaterialCostPerUnit    float64 `json:"material_cost_per_unit"`
	COGS                   float64 `json:"cogs"`
}

// EffectiveUnits is the sellable output of a batch after waste, never
// negative.
func EffectiveUnits(batchSize, wasteCount int) int {
	n := batchSize - wasteCount
	if n < 0 {
		return 0
	}
	return n
}

// DeriveCostSummary folds the state into a single per-unit cost figure:
// materials per effective unit plus development cost amortized over the
// expected volume. Degenerate inputs (zero batch, zero amortization volume)
// contribute 0 instead of dividing by zero, so an empty calculator renders
// all zeros rather than failing.
func DeriveCostSummary(s State) CostSummary {
	sum := CostSummary{EffectiveUnits: EffectiveUnits(s.BatchSize, s.WasteCount)}

	for _, c := range s.DevCosts {
		sum.TotalDevCost += c.Amount
	}
	if s.AmortizationQty > 0 {
		sum.AmortPerUnit = sum.TotalDevCost / float64(s.AmortizationQty)
	}

	for _, m := range s.Materials {
		sum.TotalBatchMaterialCost += m.Cost
	}
	if sum.EffectiveUnits > 0 {
		sum.MaterialCostPerUnit = sum.TotalBatchMaterialCost / float64(sum.EffectiveUnits)
	}

	sum.COGS = sum.MaterialCostPerUnit + sum.AmortPerUnit
	return sum
}
