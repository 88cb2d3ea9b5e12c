package app_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tooling-procurement/internal/app"
	"tooling-procurement/internal/core"
	"tooling-procurement/internal/logger"
)

type fakeProjects struct {
	core.ProjectService
}

func (fakeProjects) GetProject(_ context.Context, id int) (*core.Project, error) {
	if id != 1 {
		return nil, fmt.Errorf("project %d: %w", id, core.ErrNotFound)
	}
	return &core.Project{ID: 1, PartNumber: "PN-4410", ToolNumber: "TN-9001", Status: core.ProjectStatusActive}, nil
}

// fakePRs stores drafts in memory through the pure constructors.
type fakePRs struct {
	core.PurchaseRequisitionService
	stored map[int]core.PurchaseRequisition
}

func (f *fakePRs) CreatePR(_ context.Context, d core.PRDraft) (*core.PurchaseRequisition, error) {
	pr, err := core.NewPurchaseRequisition(d, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, err
	}
	pr.ID = len(f.stored) + 1
	f.stored[pr.ID] = pr
	return &pr, nil
}

func (f *fakePRs) GetPR(_ context.Context, id int) (*core.PurchaseRequisition, error) {
	pr, ok := f.stored[id]
	if !ok {
		return nil, fmt.Errorf("purchase requisition %d: %w", id, core.ErrNotFound)
	}
	return &pr, nil
}

func newTestService() (app.ApplicationService, *fakePRs) {
	prs := &fakePRs{stored: map[int]core.PurchaseRequisition{}}
	svc := app.NewAppService(nil, logger.Nop(), app.Services{
		Projects: fakeProjects{},
		PRs:      prs,
		Rates:    core.FixedRate(decimal.RequireFromString("0.18")),
	})
	return svc, prs
}

func newSetRequest() app.PRRequest {
	return app.PRRequest{
		ProjectID:      1,
		PRType:         string(core.PRTypeNewSet),
		Suppliers:      []string{" SUP-A ", "SUP-B"},
		CriticalSpares: []app.CriticalSpareInput{{ItemID: "BOM-9001-01", Quantity: 2}},
	}
}

func TestPreviewPR_NewSet(t *testing.T) {
	svc, _ := newTestService()
	res, err := svc.PreviewPR(context.Background(), newSetRequest())
	if err != nil {
		t.Fatalf("PreviewPR: %v", err)
	}
	if len(res.Items) != 6 {
		t.Errorf("expected the 6 TN-9001 BOM lines, got %d", len(res.Items))
	}
	if len(res.Problems) != 0 {
		t.Errorf("expected a submittable draft, got %v", res.Problems)
	}
	checks := map[string]struct {
		got  decimal.Decimal
		want string
	}{
		"bom subtotal":    {res.Cost.BOMSubtotal, "3020"},
		"spares subtotal": {res.Cost.CriticalSparesSubtotal, "500"},
		"overall":         {res.Cost.OverallSubtotal, "3520"},
		"tax":             {res.Cost.Tax, "633.6"},
		"grand total":     {res.Cost.GrandTotal, "4153.6"},
	}
	for name, c := range checks {
		if !c.got.Equal(decimal.RequireFromString(c.want)) {
			t.Errorf("%s: expected %s, got %s", name, c.want, c.got)
		}
	}
}

func TestPreviewPR_NewSetQuantityOverride(t *testing.T) {
	svc, _ := newTestService()
	req := newSetRequest()
	req.BOMSelections = []app.BOMSelectionInput{{LineID: "BOM-9001-02", Quantity: 10}}

	res, err := svc.PreviewPR(context.Background(), req)
	if err != nil {
		t.Fatalf("PreviewPR: %v", err)
	}
	if len(res.Items) != 6 {
		t.Fatalf("override must keep all 6 BOM lines, got %d", len(res.Items))
	}
	for _, it := range res.Items {
		if it.ID == "BOM-9001-02" && it.Quantity != 10 {
			t.Errorf("Guide Pin quantity = %d, want 10", it.Quantity)
		}
	}
	// Guide Pin 45 x 10 instead of 45 x 4.
	if !res.Cost.BOMSubtotal.Equal(decimal.NewFromInt(3290)) {
		t.Errorf("bom subtotal = %s, want 3290", res.Cost.BOMSubtotal)
	}
	if !res.Cost.OverallSubtotal.Equal(decimal.NewFromInt(3790)) {
		t.Errorf("overall subtotal = %s, want 3790", res.Cost.OverallSubtotal)
	}

	req.BOMSelections = []app.BOMSelectionInput{{LineID: "BOM-9002-01", Quantity: 3}}
	if _, err := svc.PreviewPR(context.Background(), req); !core.IsValidation(err) {
		t.Errorf("override of a line outside the BOM: expected validation error, got %v", err)
	}
}

func TestPreviewPR_ModificationReportsProblems(t *testing.T) {
	svc, _ := newTestService()
	res, err := svc.PreviewPR(context.Background(), app.PRRequest{
		ProjectID:     1,
		PRType:        string(core.PRTypeModification),
		BOMSelections: []app.BOMSelectionInput{{LineID: "BOM-9001-04"}, {LineID: "BOM-9001-06", Quantity: 1}},
		ManualItems:   []app.ManualItemInput{{Name: "Spring set", Quantity: 3}},
		Suppliers:     []string{"SUP-A"},
	})
	if err != nil {
		t.Fatalf("PreviewPR: %v", err)
	}
	if len(res.Items) != 3 || res.Items[2].ID != "ITEM-1" || res.Items[2].Price != nil {
		t.Fatalf("unexpected items %+v", res.Items)
	}
	// Die Block 1200 x 1 + Punch 450 x 1; the manual line is unpriced.
	if !res.Cost.ModRefSubtotal.Equal(decimal.NewFromInt(1650)) {
		t.Errorf("expected mod/ref subtotal 1650, got %s", res.Cost.ModRefSubtotal)
	}
	if len(res.Problems) != 1 || !strings.Contains(res.Problems[0], "reason") {
		t.Errorf("expected only the missing reason, got %v", res.Problems)
	}
}

func TestPreviewPR_UnknownProjectOrLine(t *testing.T) {
	svc, _ := newTestService()
	req := newSetRequest()
	req.ProjectID = 99
	if _, err := svc.PreviewPR(context.Background(), req); !core.IsValidation(err) {
		t.Errorf("unknown project: expected validation error, got %v", err)
	}

	req = app.PRRequest{ProjectID: 1, PRType: string(core.PRTypeRefurbished), BOMSelections: []app.BOMSelectionInput{{LineID: "BOM-0000-01"}}}
	if _, err := svc.PreviewPR(context.Background(), req); !core.IsValidation(err) {
		t.Errorf("unknown BOM line: expected validation error, got %v", err)
	}
}

func TestCreatePR_StampsActorAndActions(t *testing.T) {
	svc, prs := newTestService()
	res, err := svc.CreatePR(context.Background(), newSetRequest(), "npd1")
	if err != nil {
		t.Fatalf("CreatePR: %v", err)
	}
	stored := prs.stored[res.PR.ID]
	if stored.CreatedBy != "npd1" {
		t.Errorf("expected creator npd1, got %q", stored.CreatedBy)
	}
	if stored.Suppliers[0] != "SUP-A" {
		t.Errorf("supplier codes not trimmed: %q", stored.Suppliers[0])
	}
	want := []core.PRAction{core.ActionApprove, core.ActionReject, core.ActionSendToSuppliers}
	if fmt.Sprint(res.AllowedActions) != fmt.Sprint(want) {
		t.Errorf("expected actions %v, got %v", want, res.AllowedActions)
	}
	if !res.Cost.GrandTotal.Equal(decimal.RequireFromString("4153.6")) {
		t.Errorf("unexpected grand total %s", res.Cost.GrandTotal)
	}
}

func TestComparePR_UsesResolvedRate(t *testing.T) {
	svc, _ := newTestService()
	res, err := svc.CreatePR(context.Background(), newSetRequest(), "npd1")
	if err != nil {
		t.Fatalf("CreatePR: %v", err)
	}
	cmp, err := svc.ComparePR(context.Background(), res.PR.ID)
	if err != nil {
		t.Fatalf("ComparePR: %v", err)
	}
	if cmp.CanAward || cmp.LowestTotal != nil {
		t.Errorf("no quotations yet, nothing should be awardable: %+v", cmp)
	}
	if !cmp.BOMTotal.Equal(decimal.NewFromInt(3520)) {
		t.Errorf("expected quantity-inclusive BOM total 3520, got %s", cmp.BOMTotal)
	}

	if _, err := svc.ComparePR(context.Background(), 42); err == nil {
		t.Error("expected not found for unknown PR")
	}
}

func TestResolveBOM(t *testing.T) {
	svc, _ := newTestService()
	res, err := svc.ResolveBOM(context.Background(), "TN-9001")
	if err != nil {
		t.Fatalf("ResolveBOM: %v", err)
	}
	if len(res.Lines) != 6 || !res.Total.Equal(decimal.NewFromInt(3020)) {
		t.Errorf("expected 6 lines totalling 3020, got %d / %s", len(res.Lines), res.Total)
	}
	empty, _ := svc.ResolveBOM(context.Background(), "TN-0000")
	if len(empty.Lines) != 0 {
		t.Errorf("unknown tool should have no lines, got %d", len(empty.Lines))
	}
}
