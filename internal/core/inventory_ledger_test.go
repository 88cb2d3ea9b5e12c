package core_test

import (
	"math/rand"
	"testing"
	"testing/quick"

	"tooling-procurement/internal/core"
)

func TestDeriveStockStatus(t *testing.T) {
	cases := []struct {
		level, min int
		want       core.StockStatus
	}{
		{0, 1, core.StockOutOfStock},
		{-1, 1, core.StockOutOfStock},
		{1, 1, core.StockLow},
		{3, 3, core.StockLow},
		{4, 3, core.StockInStock},
	}
	for _, tc := range cases {
		if got := core.DeriveStockStatus(tc.level, tc.min); got != tc.want {
			t.Errorf("DeriveStockStatus(%d, %d): expected %s, got %s", tc.level, tc.min, tc.want, got)
		}
	}
}

func TestDeriveStockStatus_Property(t *testing.T) {
	prop := func(l, m uint16) bool {
		level, min := int(l%500), int(m%500)
		got := core.DeriveStockStatus(level, min)
		switch {
		case level == 0:
			return got == core.StockOutOfStock
		case level <= min:
			return got == core.StockLow
		default:
			return got == core.StockInStock
		}
	}
	if err := quick.Check(prop, &quick.Config{MaxCount: 500, Rand: rand.New(rand.NewSource(7))}); err != nil {
		t.Error(err)
	}
}

func TestMinStockLevelFor(t *testing.T) {
	cases := map[int]int{1: 1, 2: 1, 3: 1, 4: 2, 10: 3, 11: 4}
	for qty, want := range cases {
		if got := core.MinStockLevelFor(qty, core.DefaultMinStockRatio); got != want {
			t.Errorf("MinStockLevelFor(%d): expected %d, got %d", qty, want, got)
		}
	}
}

func approvedHandover(t *testing.T) core.ToolHandoverRecord {
	t.Helper()
	h, err := core.NewHandover(receivedPR(t), project1, day1)
	if err != nil {
		t.Fatalf("NewHandover: %v", err)
	}
	h.ID = 5
	h.HandoverNumber = "TH-2024-00001"
	h, err = core.Inspect(h, core.InspectionApprove, "maint1", "OK", day1)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	return h
}

func TestFoldHandover_NewItems(t *testing.T) {
	h := approvedHandover(t)
	inv, adds := core.FoldHandover(nil, h, core.DefaultMinStockRatio, day1)

	// Six PR items plus the Base Plate spare, which folds into the same item.
	if len(inv) != 6 {
		t.Fatalf("expected 6 inventory items, got %d", len(inv))
	}
	if len(adds) != 7 {
		t.Errorf("expected 7 additions (6 items + 1 spare), got %d", len(adds))
	}

	byName := map[string]core.InventoryItem{}
	for _, it := range inv {
		byName[it.Name] = it
	}
	base := byName["Base Plate"]
	if base.Quantity != 3 || base.StockLevel != 3 {
		t.Errorf("Base Plate: expected 1 item + 2 spares = 3, got qty %d level %d", base.Quantity, base.StockLevel)
	}
	if base.MinStockLevel != 1 {
		t.Errorf("Base Plate min level: expected 1 from first receipt, got %d", base.MinStockLevel)
	}
	if len(base.AdditionHistory) != 2 {
		t.Errorf("Base Plate: expected 2 addition entries, got %d", len(base.AdditionHistory))
	}
	pin := byName["Guide Pin"]
	if pin.MinStockLevel != 2 || pin.DerivedStatus() != core.StockInStock {
		t.Errorf("Guide Pin: expected min 2 and In Stock, got %d %s", pin.MinStockLevel, pin.DerivedStatus())
	}
	if pin.PartNumber != "PN-4410" || pin.ToolNumber != "TN-9001" {
		t.Errorf("Guide Pin keyed wrongly: %+v", pin.InventoryKey)
	}
	if adds[0].Reference != "TH-2024-00001" {
		t.Errorf("expected handover number as reference, got %q", adds[0].Reference)
	}
}

func TestFoldHandover_Additive(t *testing.T) {
	h := approvedHandover(t)
	existing := []core.InventoryItem{{
		ID:            11,
		InventoryKey:  core.InventoryKey{PartNumber: "PN-4410", ToolNumber: "TN-9001", Name: "Punch"},
		Quantity:      5,
		StockLevel:    1,
		MinStockLevel: 2,
	}}

	once, _ := core.FoldHandover(existing, h, core.DefaultMinStockRatio, day1)
	twice, _ := core.FoldHandover(once, h, core.DefaultMinStockRatio, day1)

	if existing[0].StockLevel != 1 {
		t.Error("FoldHandover modified its input")
	}
	punch := once[0]
	if punch.ID != 11 || punch.Quantity != 7 || punch.StockLevel != 3 || punch.MinStockLevel != 2 {
		t.Errorf("Punch after one fold: %+v", punch)
	}
	if twice[0].StockLevel != 5 || twice[0].Quantity != 9 {
		t.Errorf("each fold must add again: %+v", twice[0])
	}
	if len(twice) != len(once) {
		t.Errorf("second fold created items: %d vs %d", len(twice), len(once))
	}
}

func TestApplyFulfillment_Delta(t *testing.T) {
	item := core.InventoryItem{
		ID:            3,
		InventoryKey:  core.InventoryKey{PartNumber: "PN-4410", ToolNumber: "TN-9001", Name: "Guide Pin"},
		Quantity:      20,
		StockLevel:    20,
		MinStockLevel: 6,
	}

	item, mv, err := core.ApplyFulfillment(item, 0, 4, "spares request 1", "spares1", day1)
	if err != nil {
		t.Fatalf("first fulfillment: %v", err)
	}
	if item.StockLevel != 16 || mv == nil || mv.Quantity != 4 {
		t.Fatalf("after 4: level %d movement %+v", item.StockLevel, mv)
	}

	item, mv, err = core.ApplyFulfillment(item, 4, 10, "spares request 1", "spares1", day1)
	if err != nil {
		t.Fatalf("second fulfillment: %v", err)
	}
	if item.StockLevel != 10 || mv == nil || mv.Quantity != 6 {
		t.Fatalf("after 10: level %d movement %+v", item.StockLevel, mv)
	}
	if len(item.RemovalHistory) != 2 {
		t.Errorf("expected 2 removal entries, got %d", len(item.RemovalHistory))
	}
	if item.Quantity != 20 {
		t.Errorf("cumulative quantity must not change on removal, got %d", item.Quantity)
	}

	same, mv, err := core.ApplyFulfillment(item, 10, 10, "r", "a", day1)
	if err != nil || mv != nil || same.StockLevel != 10 {
		t.Errorf("no delta should be a no-op: %v %+v", err, mv)
	}
}

func TestDerivedStatus_FollowsStockLevelAfterIssue(t *testing.T) {
	item := core.InventoryItem{ID: 4, Quantity: 5, StockLevel: 5, MinStockLevel: 2}

	item, _, err := core.ApplyFulfillment(item, 0, 3, "spares request 2", "spares1", day1)
	if err != nil {
		t.Fatalf("fulfillment: %v", err)
	}
	if item.Quantity != 5 || item.DerivedStatus() != core.StockLow {
		t.Errorf("after 3: quantity %d status %s", item.Quantity, item.DerivedStatus())
	}

	item, _, err = core.ApplyFulfillment(item, 3, 5, "spares request 2", "spares1", day1)
	if err != nil {
		t.Fatalf("fulfillment: %v", err)
	}
	if item.Quantity != 5 || item.DerivedStatus() != core.StockOutOfStock {
		t.Errorf("after 5: quantity %d status %s", item.Quantity, item.DerivedStatus())
	}
}

func TestApplyFulfillment_Guards(t *testing.T) {
	item := core.InventoryItem{ID: 3, StockLevel: 2, MinStockLevel: 1}
	if _, _, err := core.ApplyFulfillment(item, 0, 3, "r", "a", day1); !core.IsValidation(err) {
		t.Errorf("over-issue: expected validation error, got %v", err)
	}
	if _, _, err := core.ApplyFulfillment(item, 3, 1, "r", "a", day1); !core.IsPrecondition(err) {
		t.Errorf("decrease: expected precondition error, got %v", err)
	}
}
