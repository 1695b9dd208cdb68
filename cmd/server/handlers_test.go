package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Brauhaus05/designfin/internal/finance"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	return &server{db: newTestDB(t), state: finance.DefaultState()}
}

func postForm(t *testing.T, srv *server, handler http.HandlerFunc, path, id string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Form = form
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestHandleScenarioDiscount_GarbageStoresZeroOverride(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{}
	form.Set("discount", "abc")
	rr := postForm(t, srv, srv.handleScenarioDiscount, "/scenarios/retail", "retail", form)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rr.Code)
	}

	results := finance.DeriveScenarios(srv.current(), 0)
	for _, r := range results {
		if r.ID == "retail" && r.DiscountPercent != 0 {
			t.Fatalf("retail discount = %v, want 0 after garbage input", r.DiscountPercent)
		}
	}
}

func TestHandleProductionUpdate_RecalculatesMaterials(t *testing.T) {
	srv := newTestServer(t)

	st := srv.current().Clone()
	st.Materials = append(st.Materials, finance.NewMaterialItem("Resina", "", 0, 2, 10, 5, st.BatchSize))
	srv.swap(st)

	form := url.Values{}
	form.Set("batch_size", "40")
	form.Set("waste_count", "2")
	form.Set("amortization_qty", "1000")
	postForm(t, srv, srv.handleProductionUpdate, "/production", "", form)

	got := srv.current()
	if got.BatchSize != 40 {
		t.Fatalf("batch size = %d, want 40", got.BatchSize)
	}
	last := got.Materials[len(got.Materials)-1]
	// (2*40 + 10) * 5
	if last.Cost != 450 {
		t.Fatalf("calculated material cost = %v, want 450", last.Cost)
	}
	// Manual items stay frozen.
	if got.Materials[0].Cost != 250 {
		t.Fatalf("manual material cost = %v, want 250", got.Materials[0].Cost)
	}
}

func TestHandleProductionUpdate_GarbageCountsBecomeZero(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{}
	form.Set("batch_size", "sin datos")
	form.Set("waste_count", "-4")
	form.Set("amortization_qty", "99")
	postForm(t, srv, srv.handleProductionUpdate, "/production", "", form)

	got := srv.current()
	if got.BatchSize != 0 || got.WasteCount != 0 || got.AmortizationQty != 99 {
		t.Fatalf("unexpected production values: %+v", got)
	}
}

func TestHandlePricingUpdate_NonFiniteInputStoresZero(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{}
	form.Set("public_price", "inf")
	form.Set("fixed_monthly_expenses", "nan")
	form.Set("royalty_percent", "5")
	postForm(t, srv, srv.handlePricingUpdate, "/pricing", "", form)

	got := srv.current()
	if got.PublicPrice != 0 || got.FixedMonthlyExpenses != 0 {
		t.Fatalf("non-finite input leaked into state: %+v", got)
	}
	if got.DesignerRoyaltyPercent != 0.05 {
		t.Fatalf("royalty = %v, want 0.05", got.DesignerRoyaltyPercent)
	}
}

func TestHandleMaterialUpdate_CostWriteIgnoredOnCalculatedItem(t *testing.T) {
	srv := newTestServer(t)

	st := srv.current().Clone()
	item := finance.NewMaterialItem("Resina", "", 0, 2, 0, 5, 50)
	st.Materials = append(st.Materials, item)
	srv.swap(st)

	form := url.Values{}
	form.Set("name", "Resina epóxica")
	form.Set("notes", "nuevo proveedor")
	form.Set("cost", "9999")
	postForm(t, srv, srv.handleMaterialUpdate, "/materials/"+item.ID, item.ID, form)

	got := srv.current()
	last := got.Materials[len(got.Materials)-1]
	if last.Name != "Resina epóxica" || last.Notes != "nuevo proveedor" {
		t.Fatalf("name/notes edit not applied: %+v", last)
	}
	// (2*50 + 0) * 5, not the smuggled 9999.
	if last.Cost != 500 {
		t.Fatalf("calculated cost = %v, want 500", last.Cost)
	}
}

func TestHandleMaterialDetailUpdate_UsesEditorBatchSize(t *testing.T) {
	srv := newTestServer(t)

	st := srv.current().Clone()
	item := finance.NewMaterialItem("Resina", "", 0, 1, 0, 4, st.BatchSize)
	st.Materials = append(st.Materials, item)
	srv.swap(st)

	form := url.Values{}
	form.Set("field", "qty_per_unit")
	form.Set("value", "3")
	form.Set("batch_size", "20") // editor batch, not the live 50
	postForm(t, srv, srv.handleMaterialDetailUpdate, "/materials/"+item.ID+"/detail", item.ID, form)

	got := srv.current()
	last := got.Materials[len(got.Materials)-1]
	// (3*20 + 0) * 4
	if last.Cost != 240 {
		t.Fatalf("detail-edited cost = %v, want 240", last.Cost)
	}
}

func TestHandleResetAndClear(t *testing.T) {
	srv := newTestServer(t)

	postForm(t, srv, srv.handleClear, "/clear", "", url.Values{})
	cleared := srv.current()
	if len(cleared.DevCosts) != 0 || cleared.PublicPrice != 0 {
		t.Fatalf("clear did not empty the state: %+v", cleared)
	}

	postForm(t, srv, srv.handleReset, "/reset", "", url.Values{})
	sum := finance.DeriveCostSummary(srv.current())
	if sum.TotalDevCost != 9700 {
		t.Fatalf("reset did not restore defaults, dev cost %v", sum.TotalDevCost)
	}
}

func TestHandleDevCostCreateAndDelete(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{}
	form.Set("name", "Certificaciones")
	form.Set("amount", "800")
	postForm(t, srv, srv.handleDevCostCreate, "/dev-costs", "", form)

	st := srv.current()
	if len(st.DevCosts) != 4 {
		t.Fatalf("expected 4 dev costs, got %d", len(st.DevCosts))
	}
	added := st.DevCosts[3]
	if added.Name != "Certificaciones" || added.Amount != 800 {
		t.Fatalf("unexpected dev cost: %+v", added)
	}

	postForm(t, srv, srv.handleDevCostDelete, "/dev-costs/"+added.ID+"/delete", added.ID, url.Values{})
	if got := len(srv.current().DevCosts); got != 3 {
		t.Fatalf("expected 3 dev costs after delete, got %d", got)
	}
}
