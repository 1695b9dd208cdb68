package finance

import "github.com/google/uuid"

// CostItem is a named one-time development expense (design, tooling, molds).
type CostItem struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// MaterialItem is one raw-material line of a production batch.
//
// The item is in one of two entry modes, inferred from its fields (see Mode):
// in calculated mode Cost is derived from QtyPerUnit/BufferUnits/UnitCost and
// the batch size; in manual mode Cost is a user-entered lump sum.
type MaterialItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Cost        float64 `json:"cost"`
	QtyPerUnit  float64 `json:"qty_per_unit"`
	BufferUnits float64 `json:"buffer_units"`
	UnitCost    float64 `json:"unit_cost"`
	Notes       string  `json:"notes"`
}

// Scenario is one sales channel definition. The catalog of channels is fixed;
// only the discount is user-overridable, through ScenarioConfig.
type Scenario struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	DiscountPercent   float64 `json:"discount_percent"`
	CommissionPercent float64 `json:"commission_percent"`
	Description       string  `json:"description"`
}

// ScenarioConfig is the user override for one channel's discount.
type ScenarioConfig struct {
	ID              string  `json:"id"`
	DiscountPercent float64 `json:"discount_percent"`
}

// State is the full calculator input state. It is treated as an immutable
// snapshot: every edit clones it, changes the clone, and swaps it wholesale.
// Percent-like fields hold fractions in [0,1]; the UI converts to and from
// 0-100 at the edge.
type State struct {
	DevCosts               []CostItem       `json:"dev_costs"`
	AmortizationQty        int              `json:"amortization_qty"`
	BatchSize              int              `json:"batch_size"`
	WasteCount             int              `json:"waste_count"`
	Materials              []MaterialItem   `json:"materials"`
	PublicPrice            float64          `json:"public_price"`
	FixedMonthlyExpenses   float64          `json:"fixed_monthly_expenses"`
	DesignerRoyaltyPercent float64          `json:"designer_royalty_percent"`
	Overrides              []ScenarioConfig `json:"scenario_overrides"`
}

// Clone returns a deep copy of the state. Callers mutate the copy and swap it
// in as the new current snapshot; the original is never touched.
func (s State) Clone() State {
	out := s
	out.DevCosts = append([]CostItem(nil), s.DevCosts...)
	out.Materials = append([]MaterialItem(nil), s.Materials...)
	out.Overrides = append([]ScenarioConfig(nil), s.Overrides...)
	return out
}

// defaultScenarios is the fixed channel catalog. Output ordering everywhere
// follows this declaration order.
var defaultScenarios = []Scenario{
	{
		ID:          "direct",
		Name:        "Venta directa",
		Description: "Venta al cliente final sin intermediarios, a precio público.",
	},
	{
		ID:                "online",
		Name:              "Tienda online propia",
		CommissionPercent: 0.03,
		Description:       "Tienda propia; la pasarela de pago cobra comisión.",
	},
	{
		ID:                "marketplace",
		Name:              "Marketplace",
		DiscountPercent:   0.15,
		CommissionPercent: 0.12,
		Description:       "Plataformas tipo marketplace: descuento promocional más comisión de la plataforma.",
	},
	{
		ID:              "retail",
		Name:            "Retail (tienda física)",
		DiscountPercent: 0.50,
		Description:     "La tienda compra al 50% del precio público.",
	},
	{
		ID:              "distributor",
		Name:            "Distribuidor",
		DiscountPercent: 0.60,
		Description:     "El distribuidor compra por volumen con el mayor descuento.",
	},
	{
		ID:                "consignment",
		Name:              "Consignación",
		DiscountPercent:   0.40,
		CommissionPercent: 0.10,
		Description:       "Producto en consignación: descuento más comisión por venta efectiva.",
	},
}

// DefaultScenarios returns a copy of the fixed channel catalog.
func DefaultScenarios() []Scenario {
	return append([]Scenario(nil), defaultScenarios...)
}

// ScenarioByID looks up a channel in the fixed catalog.
func ScenarioByID(id string) (Scenario, bool) {
	for _, sc := range defaultScenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scenario{}, false
}

// DefaultState returns the example snapshot shown on first load and on reset:
// a small product with three development expenses, three manually priced
// materials and sensible pricing defaults.
func DefaultState() State {
	return State{
		DevCosts: []CostItem{
			{ID: uuid.NewString(), Name: "Diseño industrial", Amount: 4500},
			{ID: uuid.NewString(), Name: "Prototipado", Amount: 3200},
			{ID: uuid.NewString(), Name: "Moldes y herramentales", Amount: 2000},
		},
		AmortizationQty: 1000,
		BatchSize:       50,
		WasteCount:      2,
		Materials: []MaterialItem{
			{ID: uuid.NewString(), Name: "Cuerpo inyectado", Cost: 250},
			{ID: uuid.NewString(), Name: "Empaque", Cost: 120},
			{ID: uuid.NewString(), Name: "Herrajes", Cost: 80},
		},
		PublicPrice:            85,
		FixedMonthlyExpenses:   2500,
		DesignerRoyaltyPercent: 0.05,
		Overrides:              defaultOverrides(),
	}
}

// EmptyState returns the all-zero snapshot used by the clear action: no
// items, zero scalars, and every channel override reset to 0%.
func EmptyState() State {
	overrides := make([]ScenarioConfig, 0, len(defaultScenarios))
	for _, sc := range defaultScenarios {
		overrides = append(overrides, ScenarioConfig{ID: sc.ID})
	}
	return State{
		DevCosts:  []CostItem{},
		Materials: []MaterialItem{},
		Overrides: overrides,
	}
}

func defaultOverrides() []ScenarioConfig {
	overrides := make([]ScenarioConfig, 0, len(defaultScenarios))
	for _, sc := range defaultScenarios {
		overrides = append(overrides, ScenarioConfig{ID: sc.ID, DiscountPercent: sc.DiscountPercent})
	}
	return overrides
}

// NewCostItem creates a development expense with a fresh id.
func NewCostItem(name string, amount float64) CostItem {
	return CostItem{ID: uuid.NewString(), Name: name, Amount: amount}
}

// NewMaterialItem creates a material line with a fresh id, applying the mode
// policy once: if the detail fields put it in calculated mode, cost is derived
// from them and the given batch size, ignoring any entered lump sum.
func NewMaterialItem(name, notes string, cost, qtyPerUnit, bufferUnits, unitCost float64, batchSize int) MaterialItem {
	item := MaterialItem{
		ID:          uuid.NewString(),
		Name:        name,
		Notes:       notes,
		Cost:        cost,
		QtyPerUnit:  qtyPerUnit,
		BufferUnits: bufferUnits,
		UnitCost:    unitCost,
	}
	if item.Mode() == ModeCalculated {
		item.Cost = calculatedCost(item, batchSize)
	}
	return item
}
