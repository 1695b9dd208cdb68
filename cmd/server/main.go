package main

import (
	"database/sql"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Brauhaus05/designfin/internal/config"
	"github.com/Brauhaus05/designfin/internal/db"
	"github.com/Brauhaus05/designfin/internal/finance"
	"github.com/Brauhaus05/designfin/internal/migrations"
	"github.com/Brauhaus05/designfin/internal/money"
	"github.com/Brauhaus05/designfin/internal/seed"
)

// server holds the single live calculator state. Every edit clones the
// current snapshot, derives the next one through the finance package, and
// swaps it wholesale; derived values are recomputed from scratch on render.
type server struct {
	db *sql.DB

	mu    sync.Mutex
	state finance.State
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type calculatorViewData struct {
	baseViewData
	State     finance.State
	Summary   finance.CostSummary
	Scenarios []finance.ScenarioResult
	ChartJSON template.JS
}

type snapshotsViewData struct {
	baseViewData
	Query     string
	Snapshots []snapshotListItem
}

func main() {
	cfg := config.Load()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database, "migrations"); err != nil {
			log.Fatalf("failed to run database migrations: %v", err)
		}
	}

	stats, err := seed.Run(database)
	if err != nil {
		log.Fatalf("failed to run startup seed: %v", err)
	}
	if stats.Inserts > 0 {
		log.Printf("seeded default calculator state")
	}

	srv := &server{db: database}
	srv.state, err = srv.loadCurrentState()
	if err != nil {
		log.Fatalf("failed to load current state: %v", err)
	}

	r := chi.NewRouter()
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))
	r.Get("/", srv.handleCalculator)
	r.Post("/dev-costs", srv.handleDevCostCreate)
	r.Post("/dev-costs/{id}", srv.handleDevCostUpdate)
	r.Post("/dev-costs/{id}/delete", srv.handleDevCostDelete)
	r.Post("/materials", srv.handleMaterialCreate)
	r.Post("/materials/{id}", srv.handleMaterialUpdate)
	r.Post("/materials/{id}/detail", srv.handleMaterialDetailUpdate)
	r.Post("/materials/{id}/delete", srv.handleMaterialDelete)
	r.Post("/production", srv.handleProductionUpdate)
	r.Post("/pricing", srv.handlePricingUpdate)
	r.Post("/scenarios/{id}", srv.handleScenarioDiscount)
	r.Post("/reset", srv.handleReset)
	r.Post("/clear", srv.handleClear)
	r.Get("/snapshots", srv.handleSnapshotsList)
	r.Post("/snapshots", srv.handleSnapshotCreate)
	r.Post("/snapshots/{id}/load", srv.handleSnapshotLoad)

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// current returns the live snapshot. The value is safe to read after the
// lock is released: mutation paths never touch a published snapshot.
func (s *server) current() finance.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// swap publishes a new snapshot and persists it so a restart resumes where
// the user left off. Persistence failure is logged, not surfaced: the live
// calculator keeps working.
func (s *server) swap(st finance.State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	if err := s.persistCurrentState(st); err != nil {
		log.Printf("warning: failed to persist current state: %v", err)
	}
}

func (s *server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	st := s.current()
	sum := finance.DeriveCostSummary(st)
	scenarios := finance.DeriveScenarios(st, sum.COGS)

	s.renderTemplate(w, "calculator.html", calculatorViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		State:     st,
		Summary:   sum,
		Scenarios: scenarios,
		ChartJSON: profitChartJSON(scenarios),
	})
}

// profitChartJSON embeds per-channel profit for the client-side bar chart.
func profitChartJSON(scenarios []finance.ScenarioResult) template.JS {
	type bar struct {
		Name   string  `json:"name"`
		Profit float64 `json:"profit"`
	}
	bars := make([]bar, 0, len(scenarios))
	for _, sc := range scenarios {
		bars = append(bars, bar{Name: sc.Name, Profit: money.Round2(sc.Profit)})
	}
	payload, err := json.Marshal(bars)
	if err != nil {
		return template.JS("[]")
	}
	return template.JS(payload)
}

func (s *server) handleDevCostCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		redirectWithError(w, r, "/", "el nombre del costo es requerido")
		return
	}
	amount := finance.ParseNumberOrZero(r.FormValue("amount"))

	st := s.current().Clone()
	st.DevCosts = append(st.DevCosts, finance.NewCostItem(name, amount))
	s.swap(st)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleDevCostUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	amount := finance.ParseNumberOrZero(r.FormValue("amount"))

	st := s.current().Clone()
	for i, c := range st.DevCosts {
		if c.ID == id {
			if name != "" {
				st.DevCosts[i].Name = name
			}
			st.DevCosts[i].Amount = amount
			break
		}
	}
	s.swap(st)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleDevCostDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st := s.current().Clone()
	kept := make([]finance.CostItem, 0, len(st.DevCosts))
	for _, c := range st.DevCosts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	st.DevCosts = kept
	s.swap(st)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleMaterialCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		redirectWithError(w, r, "/", "el nombre del material es requerido")
		return
	}

	st := s.current().Clone()
	item := finance.NewMaterialItem(
		name,
		strings.TrimSpace(r.FormValue("notes")),
		finance.ParseNumberOrZero(r.FormValue("cost")),
		finance.ParseNumberOrZero(r.FormValue("qty_per_unit")),
		finance.ParseNumberOrZero(r.FormValue("buffer_units")),
		finance.ParseNumberOrZero(r.FormValue("unit_cost")),
		st.BatchSize,
	)
	st.Materials = append(st.Materials, item)
	s.swap(st)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleMaterialUpdate serves the simple editor: name/notes always apply;
// the lump-sum cost applies only to manual-mode items (the field renders
// read-only for calculated items, and a smuggled write is dropped).
func (s *server) handleMaterialUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	st := s.current().Clone()
	st.Materials = finance.RenameMaterial(st.Materials,
		id,
		strings.TrimSpace(r.FormValue("name")),
		strings.TrimSpace(r.FormValue("notes")),
	)
	if raw := r.FormValue("cost"); raw != "" {
		st.Materials = finance.SetManualCost(st.Materials, id, finance.ParseNumberOrZero(raw))
	}
	s.swap(st)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleMaterialDetailUpdate serves the detailed editor, which posts one
// field at a time and carries its own batch size.
func (s *server) handleMaterialDetailUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	field := finance.MaterialField(r.FormValue("field"))
	value := r.FormValue("value")
	batchSize := finance.ParseCountOrZero(r.FormValue("batch_size"))

	st := s.current().Clone()
	st.Materials = finance.UpdateMaterialDetail(st.Materials, id, field, value, batchSize)
	s.swap(st)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleMaterialDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st := s.current().Clone()
	st.Materials = finance.RemoveMaterial(st.Materials, id)
	s.swap(st)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleProductionUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	st := s.current().Clone()
	st.BatchSize = finance.ParseCountOrZero(r.FormValue("batch_size"))
	st.WasteCount = finance.ParseCountOrZero(r.FormValue("waste_count"))
	st.AmortizationQty = finance.ParseCountOrZero(r.FormValue("amortization_qty"))

	// A batch-size change re-derives every calculated material cost.
	st.Materials = finance.RecalcMaterials(st.Materials, st.BatchSize)
	s.swap(st)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handlePricingUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	st := s.current().Clone()
	st.PublicPrice = finance.ParseNumberOrZero(r.FormValue("public_price"))
	st.FixedMonthlyExpenses = finance.ParseNumberOrZero(r.FormValue("fixed_monthly_expenses"))
	st.DesignerRoyaltyPercent = finance.FractionFromPercentText(r.FormValue("royalty_percent"))
	s.swap(st)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleScenarioDiscount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	s.swap(s.current().SetScenarioDiscount(id, r.FormValue("discount")))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.swap(finance.DefaultState())
	redirectWithSuccess(w, r, "/", "Valores de ejemplo restaurados")
}

func (s *server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.swap(finance.EmptyState())
	redirectWithSuccess(w, r, "/", "Calculadora vaciada")
}

func (s *server) handleSnapshotsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	snapshots, err := s.listSnapshots(query)
	if err != nil {
		http.Error(w, "failed to load snapshots", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "snapshots.html", snapshotsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Query:     query,
		Snapshots: snapshots,
	})
}

func (s *server) handleSnapshotCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		redirectWithError(w, r, "/", "el título del escenario guardado es requerido")
		return
	}

	st := s.current()
	if err := s.saveSnapshot(title, strings.TrimSpace(r.FormValue("notes")), st); err != nil {
		http.Error(w, "failed to save snapshot", http.StatusInternalServerError)
		return
	}

	redirectWithSuccess(w, r, "/", "Escenario guardado correctamente")
}

func (s *server) handleSnapshotLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	st, err := s.loadSnapshot(id)
	if err != nil {
		redirectWithError(w, r, "/snapshots", "no se pudo cargar el escenario guardado")
		return
	}
	s.swap(st)

	redirectWithSuccess(w, r, "/", "Escenario cargado correctamente")
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(message), http.StatusSeeOther)
}

func redirectWithSuccess(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?success="+url.QueryEscape(message), http.StatusSeeOther)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": money.Format,
		"pct":   money.FormatPercent,
		"pctInput": func(frac float64) float64 {
			return frac * 100
		},
		"calculated": func(m finance.MaterialItem) bool {
			return m.Mode() == finance.ModeCalculated
		},
	}
}

func (s *server) renderTemplate(w http.ResponseWriter, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs()).ParseFiles(
		"web/templates/layout.html",
		"web/templates/"+page,
	)
	if err != nil {
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
}
