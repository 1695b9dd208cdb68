package finance

import (
	"math"
	"strconv"
)

// BreakEven is the monthly unit volume needed to cover fixed expenses. When
// the per-unit margin is zero or negative no volume ever covers them; that
// case is a tagged Unreachable value, never an infinity float or a magic
// number.
type BreakEven struct {
	Unreachable bool `json:"unreachable"`
	Units       int  `json:"units"`
}

// UnreachableBreakEven marks a channel that can never cover fixed expenses.
func UnreachableBreakEven() BreakEven {
	return BreakEven{Unreachable: true}
}

func (b BreakEven) String() string {
	if b.Unreachable {
		return "unreachable"
	}
	return strconv.Itoa(b.Units)
}

// ScenarioResult is the realized economics of one channel at the current
// COGS. Derived on every recomputation, never stored. DiscountPercent holds
// the effective (possibly overridden) discount.
type ScenarioResult struct {
	Scenario
	NetRevenue       float64   `json:"net_revenue"`
	RoyaltyAmount    float64   `json:"royalty_amount"`
	CommissionAmount float64   `json:"commission_amount"`
	GrossMargin      float64   `json:"gross_margin"`
	Profit           float64   `json:"profit"`
	BreakEven        BreakEven `json:"break_even"`
	IsProfitable     bool      `json:"is_profitable"`
	ROI              float64   `json:"roi"`
}

// DeriveScenarios computes the result for every channel in catalog order.
// The discount comes from the state's override table when an entry for the
// channel exists, else from the catalog default; commissions are never
// overridable. Gross margin and per-unit profit are the same figure here:
// there is no per-unit overhead allocation beyond COGS.
func DeriveScenarios(s State, cogs float64) []ScenarioResult {
	overrides := make(map[string]float64, len(s.Overrides))
	for _, o := range s.Overrides {
		overrides[o.ID] = o.DiscountPercent
	}

	results := make([]ScenarioResult, 0, len(defaultScenarios))
	for _, sc := range defaultScenarios {
		discount := sc.DiscountPercent
		if d, ok := overrides[sc.ID]; ok {
			discount = d
		}

		r := ScenarioResult{Scenario: sc}
		r.DiscountPercent = discount
		r.NetRevenue = s.PublicPrice * (1 - discount)
		r.RoyaltyAmount = r.NetRevenue * s.DesignerRoyaltyPercent
		r.CommissionAmount = r.NetRevenue * sc.CommissionPercent
		r.GrossMargin = r.NetRevenue - cogs - r.RoyaltyAmount - r.CommissionAmount
		r.Profit = r.GrossMargin
		r.IsProfitable = r.Profit > 0

		if r.GrossMargin > 0 {
			r.BreakEven = BreakEven{Units: int(math.Ceil(s.FixedMonthlyExpenses / r.GrossMargin))}
		} else {
			r.BreakEven = UnreachableBreakEven()
		}

		if cogs > 0 {
			r.ROI = r.Profit / cogs * 100
		}

		results = append(results, r)
	}
	return results
}

// SetScenarioDiscount stores a channel discount override from raw percent
// text. Non-numeric text coerces to 0, so bad input reads as "no discount"
// rather than a rejected edit; the stored value is a fraction. Unknown
// channel ids are ignored. Returns a new state.
func (s State) SetScenarioDiscount(id, percentText string) State {
	if _, ok := ScenarioByID(id); !ok {
		return s
	}

	frac := FractionFromPercentText(percentText)

	out := s.Clone()
	for i, o := range out.Overrides {
		if o.ID == id {
			out.Overrides[i].DiscountPercent = frac
			return out
		}
	}
	out.Overrides = append(out.Overrides, ScenarioConfig{ID: id, DiscountPercent: frac})
	return out
}
