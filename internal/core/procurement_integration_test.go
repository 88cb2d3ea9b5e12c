package core_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"tooling-procurement/internal/core"
	"tooling-procurement/internal/db"
	"tooling-procurement/internal/logger"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database; every run truncates it.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if _, err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE spares_requests, inventory_movements, inventory_items, tool_handovers,
			quotation_items, quotations, pr_critical_spares, pr_suppliers, pr_items,
			purchase_requisitions, projects, document_sequences, suppliers, users
			RESTART IDENTITY CASCADE;

		INSERT INTO suppliers (code, name) VALUES
		('SUP-A', 'Precision Tools Pvt Ltd'),
		('SUP-B', 'Bharat Die Works');
	`)
	if err != nil {
		pool.Close()
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return pool
}

func TestProcurement_EndToEnd(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	log := logger.Nop()

	projects := core.NewProjectService(pool)
	prs := core.NewPurchaseRequisitionService(pool, log)
	handovers := core.NewToolHandoverService(pool, log, core.DefaultMinStockRatio)
	inventory := core.NewInventoryService(pool)
	spares := core.NewSparesRequestService(pool, log)

	project, err := projects.CreateProject(ctx, core.ProjectInput{
		CustomerPO: "CPO-778", PartNumber: "PN-4410", ToolNumber: "TN-9001",
		Price: decimal.NewFromInt(50000), CreatedBy: "npd1",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}

	pr, err := prs.CreatePR(ctx, core.PRDraft{
		ProjectID:      project.ID,
		PRType:         core.PRTypeNewSet,
		Items:          core.BuildNewSetItems(core.ResolveBOM(project.ToolNumber)),
		Suppliers:      []string{"SUP-A", "SUP-B"},
		CriticalSpares: []core.CriticalSpare{{ItemID: "BOM-9001-02", Quantity: 2}},
		CreatedBy:      "npd1",
	})
	if err != nil {
		t.Fatalf("CreatePR: %v", err)
	}
	if want := core.FormatNumber(core.SequencePR, time.Now().Year(), 1); pr.PRNumber != want {
		t.Errorf("expected PR number %s, got %s", want, pr.PRNumber)
	}
	if len(pr.Items) != 6 || len(pr.CriticalSpares) != 1 {
		t.Fatalf("PR lines not stored: %d items, %d spares", len(pr.Items), len(pr.CriticalSpares))
	}

	if _, err := prs.CreatePR(ctx, core.PRDraft{
		ProjectID: project.ID, PRType: core.PRTypeNewSet,
		Items:     core.BuildNewSetItems(core.ResolveBOM(project.ToolNumber)),
		Suppliers: []string{"SUP-Z"}, CreatedBy: "npd1",
	}); !core.IsValidation(err) {
		t.Errorf("unknown supplier: expected validation error, got %v", err)
	}

	if pr, err = prs.Apply(ctx, pr.ID, core.ActionSendToSuppliers, core.ActionInput{Actor: "npd1"}); err != nil {
		t.Fatalf("send: %v", err)
	}

	for _, sup := range []struct{ code, delta string }{{"SUP-A", "0"}, {"SUP-B", "-5"}} {
		prices := fullPrices(*pr, sup.delta)
		if pr, err = prs.RecordQuotation(ctx, pr.ID, core.QuotationInput{
			Supplier: sup.code, UnitPrices: prices, DeliveryTerms: "Ex-works", DeliveryDate: "2024-04-15", Actor: "npd1",
		}); err != nil {
			t.Fatalf("RecordQuotation %s: %v", sup.code, err)
		}
	}
	// Re-recording replaces rather than duplicates.
	if pr, err = prs.RecordQuotation(ctx, pr.ID, core.QuotationInput{
		Supplier: "SUP-A", UnitPrices: fullPrices(*pr, "1"), DeliveryTerms: "Ex-works", DeliveryDate: "2024-04-20", Actor: "npd1",
	}); err != nil {
		t.Fatalf("RecordQuotation again: %v", err)
	}
	if len(pr.Quotations) != 2 {
		t.Fatalf("expected 2 quotations, got %d", len(pr.Quotations))
	}

	steps := []struct {
		action core.PRAction
		in     core.ActionInput
		want   core.PRStatus
	}{
		{core.ActionSubmitForApproval, core.ActionInput{Actor: "npd1"}, core.PRStatusSubmittedForApproval},
		{core.ActionApprove, core.ActionInput{Actor: "appr1"}, core.PRStatusEvaluationPending},
		{core.ActionAward, core.ActionInput{Actor: "appr1", Supplier: "SUP-B"}, core.PRStatusAwarded},
		{core.ActionMarkItemsReceived, core.ActionInput{Actor: "npd1", Confirm: true}, core.PRStatusItemsReceived},
	}
	for _, st := range steps {
		if pr, err = prs.Apply(ctx, pr.ID, st.action, st.in); err != nil {
			t.Fatalf("%s: %v", st.action, err)
		}
		if pr.Status != st.want {
			t.Fatalf("%s: expected %s, got %s", st.action, st.want, pr.Status)
		}
	}
	selected := 0
	for _, q := range pr.Quotations {
		if q.Status == core.QuotationSelected {
			selected++
			if q.Supplier != "SUP-B" {
				t.Errorf("wrong supplier selected: %s", q.Supplier)
			}
		}
	}
	if selected != 1 {
		t.Errorf("expected exactly one Selected quotation, got %d", selected)
	}

	synced, err := handovers.SyncHandovers(ctx)
	if err != nil {
		t.Fatalf("SyncHandovers: %v", err)
	}
	if len(synced) != 0 {
		t.Errorf("handover should already exist, sync created %d", len(synced))
	}
	list, err := handovers.GetHandovers(ctx, core.HandoverPendingInspection)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one pending handover, got %d (%v)", len(list), err)
	}
	h := list[0]
	if h.HandoverNumber != core.FormatNumber(core.SequenceHandover, time.Now().Year(), 1) {
		t.Errorf("unexpected handover number %s", h.HandoverNumber)
	}

	if _, err := handovers.Inspect(ctx, h.ID, core.InspectionApprove, "maint1", "Dimensions checked"); err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if _, err := handovers.Inspect(ctx, h.ID, core.InspectionApprove, "maint1", "again"); !core.IsPrecondition(err) {
		t.Errorf("second inspection: expected precondition error, got %v", err)
	}

	pin := core.InventoryKey{PartNumber: "PN-4410", ToolNumber: "TN-9001", Name: "Guide Pin"}
	stock, err := inventory.GetItem(ctx, pin)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if stock.StockLevel != 6 || stock.MinStockLevel != 2 || len(stock.AdditionHistory) != 2 {
		t.Fatalf("Guide Pin after fold: level %d min %d additions %d", stock.StockLevel, stock.MinStockLevel, len(stock.AdditionHistory))
	}

	req, err := spares.CreateRequest(ctx, core.SparesRequestInput{
		RequestedBy: "ind1", ItemName: "Guide Pin", PartNumber: "PN-4410", ToolNumber: "TN-9001", QuantityRequested: 5,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if _, err := spares.Fulfill(ctx, req.ID, core.SparesPartiallyFulfilled, 2, "spares1"); err != nil {
		t.Fatalf("partial fulfill: %v", err)
	}
	if _, err := spares.Fulfill(ctx, req.ID, core.SparesFulfilled, 5, "spares1"); err != nil {
		t.Fatalf("complete fulfill: %v", err)
	}

	stock, err = inventory.GetItem(ctx, pin)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if stock.StockLevel != 1 || stock.Status != core.StockLow {
		t.Errorf("expected level 1 Low Stock, got %d %s", stock.StockLevel, stock.Status)
	}
	if len(stock.RemovalHistory) != 2 || stock.RemovalHistory[1].Quantity != 3 {
		t.Errorf("expected removals 2 then 3, got %+v", stock.RemovalHistory)
	}
	if stock.RemovalHistory[0].Reference != fmt.Sprintf("spares request %d", req.ID) {
		t.Errorf("unexpected removal reference %q", stock.RemovalHistory[0].Reference)
	}

	if _, err := spares.CreateRequest(ctx, core.SparesRequestInput{
		RequestedBy: "ind1", ItemName: "Unknown", PartNumber: "PN-4410", ToolNumber: "TN-9001", QuantityRequested: 1,
	}); !core.IsValidation(err) {
		t.Errorf("unstocked item: expected validation error, got %v", err)
	}
}

func TestProcurement_DeleteOnlyEarly(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	projects := core.NewProjectService(pool)
	prs := core.NewPurchaseRequisitionService(pool, logger.Nop())

	project, err := projects.CreateProject(ctx, core.ProjectInput{
		CustomerPO: "CPO-900", PartNumber: "PN-77", ToolNumber: "TN-9002", CreatedBy: "npd1",
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	draft := core.PRDraft{
		ProjectID:    project.ID,
		PRType:       core.PRTypeModification,
		ModRefReason: "cavity wear",
		Items:        []core.PRItem{core.ManualItem(nil, "Cavity Insert", "P20", 1, "")},
		Suppliers:    []string{"SUP-A"},
		CreatedBy:    "npd1",
	}
	pr, err := prs.CreatePR(ctx, draft)
	if err != nil {
		t.Fatalf("CreatePR: %v", err)
	}
	if _, err := prs.Apply(ctx, pr.ID, core.ActionSendToSuppliers, core.ActionInput{Actor: "npd1"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := prs.DeletePR(ctx, pr.ID); !core.IsPrecondition(err) {
		t.Errorf("delete after sending: expected precondition error, got %v", err)
	}

	second, err := prs.CreatePR(ctx, draft)
	if err != nil {
		t.Fatalf("CreatePR: %v", err)
	}
	if err := prs.DeletePR(ctx, second.ID); err != nil {
		t.Fatalf("DeletePR: %v", err)
	}
	if _, err := prs.GetPR(ctx, second.ID); err == nil {
		t.Error("deleted PR still readable")
	}
}
