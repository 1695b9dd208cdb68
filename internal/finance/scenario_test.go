package finance

import "testing"

// exampleState mirrors the worked example: COGS 19.075, public price 85,
// royalty 5%, fixed expenses 2500.
func exampleState() State {
	return State{
		DevCosts: []CostItem{
			{ID: "d1", Amount: 4500},
			{ID: "d2", Amount: 3200},
			{ID: "d3", Amount: 2000},
		},
		AmortizationQty: 1000,
		BatchSize:       50,
		WasteCount:      2,
		Materials: []MaterialItem{
			{ID: "m1", Cost: 250},
			{ID: "m2", Cost: 120},
			{ID: "m3", Cost: 80},
		},
		PublicPrice:            85,
		FixedMonthlyExpenses:   2500,
		DesignerRoyaltyPercent: 0.05,
		Overrides:              defaultOverrides(),
	}
}

func resultByID(t *testing.T, results []ScenarioResult, id string) ScenarioResult {
	t.Helper()
	for _, r := range results {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("no scenario result with id %q", id)
	return ScenarioResult{}
}

func TestDeriveScenarios_RetailExample(t *testing.T) {
	s := exampleState()
	sum := DeriveCostSummary(s)
	results := DeriveScenarios(s, sum.COGS)

	retail := resultByID(t, results, "retail")

	nearlyEqual(t, "netRevenue", retail.NetRevenue, 42.5)
	nearlyEqual(t, "royaltyAmount", retail.RoyaltyAmount, 2.125)
	nearlyEqual(t, "commissionAmount", retail.CommissionAmount, 0)
	nearlyEqual(t, "grossMargin", retail.GrossMargin, 21.3)
	nearlyEqual(t, "profit", retail.Profit, 21.3)
	if !retail.IsProfitable {
		t.Fatalf("expected retail to be profitable")
	}
	if retail.BreakEven.Unreachable || retail.BreakEven.Units != 118 {
		t.Fatalf("breakEven = %s, want 118", retail.BreakEven)
	}
}

func TestDeriveScenarios_UnreachableBreakEven(t *testing.T) {
	s := exampleState()
	s.PublicPrice = 10 // net revenue below COGS in every channel

	sum := DeriveCostSummary(s)
	for _, r := range DeriveScenarios(s, sum.COGS) {
		if r.GrossMargin > 0 {
			continue
		}
		if !r.BreakEven.Unreachable {
			t.Fatalf("channel %s: margin %.2f but break-even %s", r.ID, r.GrossMargin, r.BreakEven)
		}
		if r.IsProfitable {
			t.Fatalf("channel %s: unprofitable margin flagged profitable", r.ID)
		}
	}
}

func TestDeriveScenarios_ROIZeroWhenCOGSZero(t *testing.T) {
	s := EmptyState()
	s.PublicPrice = 50

	results := DeriveScenarios(s, 0)

	direct := resultByID(t, results, "direct")
	nearlyEqual(t, "roi with zero COGS", direct.ROI, 0)
	if !direct.IsProfitable {
		t.Fatalf("positive margin at zero COGS should be profitable")
	}
}

func TestDeriveScenarios_CatalogOrderPreserved(t *testing.T) {
	s := exampleState()
	// Touch overrides in reverse order; output must still follow the catalog.
	for i := len(defaultScenarios) - 1; i >= 0; i-- {
		s = s.SetScenarioDiscount(defaultScenarios[i].ID, "10")
	}

	results := DeriveScenarios(s, 19.075)

	if len(results) != len(defaultScenarios) {
		t.Fatalf("expected %d results, got %d", len(defaultScenarios), len(results))
	}
	for i, r := range results {
		if r.ID != defaultScenarios[i].ID {
			t.Fatalf("result %d has id %s, want %s", i, r.ID, defaultScenarios[i].ID)
		}
	}
}

func TestDeriveScenarios_MissingOverrideFallsBackToDefault(t *testing.T) {
	s := exampleState()
	s.Overrides = nil

	results := DeriveScenarios(s, 19.075)

	retail := resultByID(t, results, "retail")
	nearlyEqual(t, "retail default discount", retail.DiscountPercent, 0.50)
}

func TestSetScenarioDiscount_StoresFraction(t *testing.T) {
	s := exampleState().SetScenarioDiscount("retail", "35")

	results := DeriveScenarios(s, 19.075)
	retail := resultByID(t, results, "retail")

	nearlyEqual(t, "overridden discount", retail.DiscountPercent, 0.35)
}

func TestSetScenarioDiscount_InvalidTextBecomesZeroNotDefault(t *testing.T) {
	s := exampleState().SetScenarioDiscount("retail", "abc")

	results := DeriveScenarios(s, 19.075)
	retail := resultByID(t, results, "retail")

	// Garbage resets the override to 0%, it does not fall back to the 50%
	// channel default.
	nearlyEqual(t, "discount after garbage input", retail.DiscountPercent, 0)
}

func TestSetScenarioDiscount_UnknownChannelIgnored(t *testing.T) {
	s := exampleState()
	got := s.SetScenarioDiscount("ghost", "25")

	if len(got.Overrides) != len(s.Overrides) {
		t.Fatalf("unknown channel added an override: %+v", got.Overrides)
	}
}

func TestSetScenarioDiscount_DoesNotMutateOriginal(t *testing.T) {
	s := exampleState()
	_ = s.SetScenarioDiscount("retail", "10")

	results := DeriveScenarios(s, 19.075)
	retail := resultByID(t, results, "retail")
	nearlyEqual(t, "original state untouched", retail.DiscountPercent, 0.50)
}

func TestSetScenarioDiscount_ClampsAboveHundred(t *testing.T) {
	s := exampleState().SetScenarioDiscount("retail", "150")

	results := DeriveScenarios(s, 19.075)
	retail := resultByID(t, results, "retail")
	nearlyEqual(t, "discount clamped to 100%", retail.DiscountPercent, 1)
}

func TestBreakEvenString(t *testing.T) {
	if got := (BreakEven{Units: 118}).String(); got != "118" {
		t.Fatalf("String() = %q, want 118", got)
	}
	if got := UnreachableBreakEven().String(); got != "unreachable" {
		t.Fatalf("String() = %q, want unreachable", got)
	}
}
