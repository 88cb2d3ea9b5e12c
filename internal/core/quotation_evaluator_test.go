package core_test

import (
	"math/rand"
	"testing"
	"testing/quick"

	"github.com/shopspring/decimal"

	"tooling-procurement/internal/core"
)

func TestEffectiveQuantity_IncludesSpare(t *testing.T) {
	pr := tn9001PR(t)
	if got := core.EffectiveQuantity(pr, "BOM-9001-01"); got != 3 {
		t.Errorf("Base Plate: expected 1+2=3, got %d", got)
	}
	if got := core.EffectiveQuantity(pr, "BOM-9001-02"); got != 4 {
		t.Errorf("Guide Pin: expected 4, got %d", got)
	}
	if got := core.EffectiveQuantity(pr, "missing"); got != 0 {
		t.Errorf("unknown item: expected 0, got %d", got)
	}
}

// Supplier totals always price the spare quantity on top of the base quantity.
func TestSupplierTotal_QuantityInclusiveProperty(t *testing.T) {
	prop := func(base, spare uint8, unitCents uint16) bool {
		qty := int(base%50) + 1
		spareQty := int(spare % 10)
		unit := decimal.New(int64(unitCents)+1, -2)

		pr := core.PurchaseRequisition{
			ID:        9,
			Status:    core.PRStatusSentToSupplier,
			Items:     []core.PRItem{{ID: "X", Name: "X", Quantity: qty}},
			Suppliers: []string{"S"},
		}
		if spareQty > 0 {
			pr.CriticalSpares = []core.CriticalSpare{{ItemID: "X", Quantity: spareQty}}
		}
		q, err := core.BuildQuotation(pr, core.QuotationInput{Supplier: "S", UnitPrices: map[string]decimal.Decimal{"X": unit}})
		if err != nil {
			return false
		}
		want := unit.Mul(decimal.NewFromInt(int64(qty + spareQty)))
		return q.Price.Equal(want) &&
			core.SupplierTotal(pr, q).Equal(want) &&
			q.Items[0].Quantity == qty+spareQty &&
			q.Items[0].TotalPrice.Equal(want)
	}
	cfg := &quick.Config{MaxCount: 300, Rand: rand.New(rand.NewSource(42))}
	if err := quick.Check(prop, cfg); err != nil {
		t.Error(err)
	}
}

func TestBuildQuotation_Rules(t *testing.T) {
	pr := mustTransition(t, tn9001PR(t), core.ActionSendToSuppliers, core.ActionInput{})

	if _, err := core.BuildQuotation(pr, core.QuotationInput{Supplier: "SUP-Z"}); !core.IsValidation(err) {
		t.Errorf("supplier not on PR: expected validation error, got %v", err)
	}
	bad := map[string]decimal.Decimal{"BOM-9001-01": dec("-1"), "NOPE": dec("5")}
	if _, err := core.BuildQuotation(pr, core.QuotationInput{Supplier: "SUP-A", UnitPrices: bad}); !core.IsValidation(err) {
		t.Errorf("negative and unknown prices: expected validation error, got %v", err)
	}
	if _, err := core.BuildQuotation(pr, core.QuotationInput{Supplier: "SUP-A", DeliveryDate: "15/04/2024"}); !core.IsValidation(err) {
		t.Errorf("bad date: expected validation error, got %v", err)
	}

	submitted := tn9001PR(t)
	if _, err := core.BuildQuotation(submitted, core.QuotationInput{Supplier: "SUP-A"}); !core.IsPrecondition(err) {
		t.Errorf("Submitted PR: expected precondition error, got %v", err)
	}
}

func TestBuildQuotation_TN9001Total(t *testing.T) {
	pr := quoted(t)
	a, _, _ := pr.Quotation("SUP-A")
	b, _, _ := pr.Quotation("SUP-B")

	// BOM prices at effective quantities: 3020 + 250x2 spare.
	assertDecimal(t, "SUP-A total", a.Price, "3520")
	// 5 cheaper on each of 3+4+2+1+1+2 = 13 units.
	assertDecimal(t, "SUP-B total", b.Price, "3455")
}

func TestUpsertQuotation_ReplacesPerSupplier(t *testing.T) {
	pr := quoted(t)
	q, err := core.BuildQuotation(pr, core.QuotationInput{
		Supplier:      "SUP-A",
		UnitPrices:    fullPrices(pr, "-10"),
		DeliveryTerms: "Door delivery",
		DeliveryDate:  "2024-04-20",
	})
	if err != nil {
		t.Fatalf("BuildQuotation: %v", err)
	}
	updated := core.UpsertQuotation(pr, q)

	if len(updated.Quotations) != 2 {
		t.Fatalf("expected 2 quotations after upsert, got %d", len(updated.Quotations))
	}
	got, _, _ := updated.Quotation("SUP-A")
	if got.ID != 100 {
		t.Errorf("upsert should keep quotation ID 100, got %d", got.ID)
	}
	if got.DeliveryTerms != "Door delivery" {
		t.Errorf("upsert did not replace terms: %s", got.DeliveryTerms)
	}
}

func TestLowestUnitPrice(t *testing.T) {
	pr := quoted(t)
	price, who := core.LowestUnitPrice(pr, "BOM-9001-04")
	if price == nil || who != "SUP-B" {
		t.Fatalf("expected SUP-B lowest, got %v %s", price, who)
	}
	assertDecimal(t, "Die Block lowest", *price, "1195")

	empty := tn9001PR(t)
	if p, s := core.LowestUnitPrice(empty, "BOM-9001-04"); p != nil || s != "" {
		t.Errorf("no quotes should give N/A, got %v %s", p, s)
	}
}

func TestLowestUnitPrice_TieKeepsSupplierOrder(t *testing.T) {
	pr := mustTransition(t, tn9001PR(t), core.ActionSendToSuppliers, core.ActionInput{})
	// SUP-B quotes first, but SUP-A is listed first on the PR.
	for _, s := range []string{"SUP-B", "SUP-A"} {
		q, err := core.BuildQuotation(pr, core.QuotationInput{Supplier: s, UnitPrices: fullPrices(pr, "0")})
		if err != nil {
			t.Fatalf("BuildQuotation: %v", err)
		}
		pr = core.UpsertQuotation(pr, q)
	}
	if _, who := core.LowestUnitPrice(pr, "BOM-9001-01"); who != "SUP-A" {
		t.Errorf("tie should go to SUP-A, got %s", who)
	}
}

func TestLowestSupplierTotal(t *testing.T) {
	sent := func(t *testing.T) core.PurchaseRequisition {
		return mustTransition(t, tn9001PR(t), core.ActionSendToSuppliers, core.ActionInput{})
	}
	quote := func(t *testing.T, pr core.PurchaseRequisition, supplier string, prices map[string]decimal.Decimal) core.PurchaseRequisition {
		q, err := core.BuildQuotation(pr, core.QuotationInput{
			Supplier:      supplier,
			UnitPrices:    prices,
			DeliveryTerms: "Ex-works Pune",
			DeliveryDate:  "2024-04-15",
		})
		if err != nil {
			t.Fatalf("BuildQuotation %s: %v", supplier, err)
		}
		return core.UpsertQuotation(pr, q)
	}

	tests := []struct {
		name         string
		build        func(t *testing.T) core.PurchaseRequisition
		wantTotal    string
		wantSupplier string
	}{
		{
			name:         "both complete",
			build:        quoted,
			wantTotal:    "3455",
			wantSupplier: "SUP-B",
		},
		{
			name: "cheaper partial quotation competes",
			build: func(t *testing.T) core.PurchaseRequisition {
				pr := sent(t)
				pr = quote(t, pr, "SUP-A", fullPrices(pr, "0"))
				// Base Plate only: 10 x (1 + 2 spare).
				return quote(t, pr, "SUP-B", map[string]decimal.Decimal{"BOM-9001-01": dec("10")})
			},
			wantTotal:    "30",
			wantSupplier: "SUP-B",
		},
		{
			name: "zero totals are ignored",
			build: func(t *testing.T) core.PurchaseRequisition {
				pr := sent(t)
				pr = quote(t, pr, "SUP-A", fullPrices(pr, "0"))
				return quote(t, pr, "SUP-B", map[string]decimal.Decimal{})
			},
			wantTotal:    "3520",
			wantSupplier: "SUP-A",
		},
		{
			name:  "no quotations",
			build: sent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, who := core.LowestSupplierTotal(tt.build(t))
			if tt.wantSupplier == "" {
				if total != nil || who != "" {
					t.Errorf("expected no lowest total, got %v %s", total, who)
				}
				return
			}
			if total == nil || who != tt.wantSupplier {
				t.Fatalf("expected %s lowest, got %v %s", tt.wantSupplier, total, who)
			}
			assertDecimal(t, "lowest total", *total, tt.wantTotal)
		})
	}
}

func TestCompare(t *testing.T) {
	c := core.Compare(quoted(t), taxRate)

	assertDecimal(t, "BOM total", c.BOMTotal, "3520")
	if c.LowestTotal == nil {
		t.Fatal("expected a lowest total")
	}
	assertDecimal(t, "lowest total", *c.LowestTotal, "3455")
	if c.CanAward {
		t.Error("Sent To Supplier PR should not be awardable")
	}
	if len(c.Items) != 6 || len(c.Suppliers) != 2 {
		t.Fatalf("expected 6 item rows and 2 suppliers, got %d/%d", len(c.Items), len(c.Suppliers))
	}

	base := c.Items[0]
	if base.BaseQuantity != 1 || base.SpareQuantity != 2 || base.Quantity != 3 {
		t.Errorf("Base Plate quantities: %+v", base)
	}
	assertDecimal(t, "Base Plate SUP-B savings", base.Savings["SUP-B"], "5")

	for _, s := range c.Suppliers {
		switch s.Supplier {
		case "SUP-A":
			assertDecimal(t, "SUP-A tax", s.Tax, "633.6")
			assertDecimal(t, "SUP-A grand total", s.GrandTotal, "4153.6")
			if s.IsLowest {
				t.Error("SUP-A is not the lowest")
			}
		case "SUP-B":
			assertDecimal(t, "SUP-B savings vs BOM", s.SavingsVsBOM, "65")
			if !s.IsLowest || !s.Complete {
				t.Errorf("SUP-B should be lowest and complete: %+v", s)
			}
		}
	}
}

func TestAward_Exclusive(t *testing.T) {
	pr := mustTransition(t, quoted(t), core.ActionSubmitForApproval, core.ActionInput{})
	pr = mustTransition(t, pr, core.ActionApprove, core.ActionInput{})

	if !core.Compare(pr, taxRate).CanAward {
		t.Error("Evaluation Pending PR with complete quotations should be awardable")
	}

	awarded, err := core.Award(pr, "SUP-A", day1)
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	selected := 0
	for _, q := range awarded.Quotations {
		switch q.Status {
		case core.QuotationSelected:
			selected++
			if q.Supplier != "SUP-A" {
				t.Errorf("wrong supplier selected: %s", q.Supplier)
			}
		case core.QuotationRejected:
		default:
			t.Errorf("sibling %s left in %s", q.Supplier, q.Status)
		}
	}
	if selected != 1 {
		t.Errorf("expected exactly one Selected quotation, got %d", selected)
	}

	if _, err := core.Award(pr, "SUP-C", day1); !core.IsValidation(err) {
		t.Errorf("supplier without quotation: expected validation error, got %v", err)
	}
	if _, err := core.Award(awarded, "SUP-B", day1); !core.IsPrecondition(err) {
		t.Errorf("re-award: expected precondition error, got %v", err)
	}
}
